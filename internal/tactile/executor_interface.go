package tactile

import (
	"context"
)

// Executor is the interface for process execution.
type Executor interface {
	// Execute runs a command and returns its result. The context can be
	// used for cancellation; the process is killed when it is done.
	Execute(ctx context.Context, cmd Command) (*ExecutionResult, error)

	// Capabilities returns what this executor supports.
	Capabilities() ExecutorCapabilities

	// Validate checks if a command can be executed by this executor.
	// Returns nil if valid, or an error explaining why not.
	Validate(cmd Command) error
}
