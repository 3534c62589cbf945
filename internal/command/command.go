// Package command implements editor commands: named units of work that read
// a piece of editor state (the input), do something with it in process or by
// running a script, and apply the produced string back to the editor (the
// output). It also holds the command registry, the dispatcher and the
// executed-command history.
package command

import (
	"context"
	"strings"

	"editcmd/internal/logging"
	"editcmd/internal/surface"
)

// Command is a published, invocable unit of work.
type Command interface {
	// Meta returns the command's descriptive fields.
	Meta() *Base

	// Execute runs the command against ws. Returned errors are contained by
	// the Dispatcher; they never abort the invoking context.
	Execute(ctx context.Context, ws surface.Workspace) error
}

// Base holds the fields every command shares and implements the input and
// output protocols. Concrete commands embed it.
type Base struct {
	// Name is unique, conventionally "<scope>/<method>".
	Name string

	// Scope is a free-form context tag; may be empty.
	Scope string

	// Key is the key combination bound to the command, if any.
	Key string

	// Inputs are tried in order: the first is primary, the second the fallback.
	Inputs []InputKind

	Output OutputKind

	// Sensitive commands need exclusive, careful execution.
	Sensitive bool
}

// Meta implements Command.
func (b *Base) Meta() *Base { return b }

// Execute is the default behavior: log the invocation.
func (b *Base) Execute(ctx context.Context, ws surface.Workspace) error {
	logging.Commands("executing: %s", b.Name)
	return nil
}

// PrimaryInput resolves Inputs[0]. An empty result counts as no value.
func (b *Base) PrimaryInput(ws surface.Workspace) (string, bool) {
	if len(b.Inputs) == 0 {
		return "", false
	}
	v, ok := ResolveInput(ws, b.Inputs[0])
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SecondaryInput resolves the fallback kind, Inputs[1], unconditionally.
func (b *Base) SecondaryInput(ws surface.Workspace) (string, bool) {
	return ResolveInput(ws, b.FallbackInput())
}

// FallbackInput returns Inputs[1], or InputNone without a fallback.
func (b *Base) FallbackInput() InputKind {
	if len(b.Inputs) < 2 {
		return InputNone
	}
	return b.Inputs[1]
}

// ValidInputKind returns the kind whose value Input would use.
func (b *Base) ValidInputKind(ws surface.Workspace) InputKind {
	if _, ok := b.PrimaryInput(ws); ok {
		return b.Inputs[0]
	}
	return b.FallbackInput()
}

// Input returns the primary input when it has a value, else the fallback.
func (b *Base) Input(ws surface.Workspace) string {
	if v, ok := b.PrimaryInput(ws); ok {
		return v
	}
	v, _ := b.SecondaryInput(ws)
	return v
}

// JoinName builds "<scope>/<method>" with doubled slashes collapsed.
func JoinName(scope, method string) string {
	return CleanName(scope + "/" + method)
}

// CleanName collapses doubled slashes in a command name.
func CleanName(name string) string {
	for strings.Contains(name, "//") {
		name = strings.ReplaceAll(name, "//", "/")
	}
	return name
}
