package command

import "errors"

// Command core errors.
var (
	// ErrUnknownInputKind is returned when parsing an unrecognised input kind.
	ErrUnknownInputKind = errors.New("unknown input kind")

	// ErrUnknownOutputKind is returned when parsing an unrecognised output kind.
	ErrUnknownOutputKind = errors.New("unknown output kind")

	// ErrNoTextSurface is returned when an output needs a text surface and
	// the active surface is not one.
	ErrNoTextSurface = errors.New("active surface is not a text surface")

	// ErrNoWorkspace is returned when an output needs a workspace and none was given.
	ErrNoWorkspace = errors.New("no workspace")

	// ErrCommandNotFound is returned when no command is published under a name.
	ErrCommandNotFound = errors.New("command not found")

	// ErrCommandNameEmpty is returned when publishing a nameless command.
	ErrCommandNameEmpty = errors.New("command name cannot be empty")

	// ErrNilCommand is returned when publishing or executing a nil command.
	ErrNilCommand = errors.New("command cannot be nil")

	// ErrNoShellRunner is returned when a shell command has no runner attached.
	ErrNoShellRunner = errors.New("shell command has no runner")

	// ErrShellKilled is returned when a shell command was killed before finishing.
	ErrShellKilled = errors.New("shell command killed")

	// ErrShellFailed is returned when a shell command could not be run.
	ErrShellFailed = errors.New("shell command failed")
)
