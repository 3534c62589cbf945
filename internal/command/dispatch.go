package command

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"editcmd/internal/logging"
	"editcmd/internal/surface"
)

// Result describes one dispatched invocation. Err is for inspection only;
// the dispatcher never returns it as a failure.
type Result struct {
	Name     string
	Found    bool
	Err      error
	Duration time.Duration
}

// OK reports whether the command was found and ran without error.
func (r Result) OK() bool { return r.Found && r.Err == nil }

// Dispatcher resolves commands by name and executes them fail-soft.
type Dispatcher struct {
	registry  *Registry
	history   *History
	workspace surface.Workspace
}

// NewDispatcher creates a dispatcher over reg. A nil history gets a fresh
// default one.
func NewDispatcher(reg *Registry, hist *History, ws surface.Workspace) *Dispatcher {
	if hist == nil {
		hist = NewHistory(DefaultHistoryMax)
	}
	return &Dispatcher{registry: reg, history: hist, workspace: ws}
}

// History returns the dispatcher's history.
func (d *Dispatcher) History() *History { return d.history }

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// ExecuteByName looks name up in the registry and executes it.
func (d *Dispatcher) ExecuteByName(ctx context.Context, name string) Result {
	cmd, ok := d.registry.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrCommandNotFound, Path(name))
		logging.CommandsWarn("%v", err)
		return Result{Name: name, Err: err}
	}
	return d.Execute(ctx, cmd)
}

// Execute runs cmd as a top-level invocation: it is recorded in History and
// nested commands it triggers are not. Errors are logged with the command
// name, message and stack, and contained.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) Result {
	if cmd == nil {
		logging.CommandsWarn("dispatch of nil command")
		return Result{Err: ErrNilCommand}
	}
	name := cmd.Meta().Name
	res := Result{Name: name, Found: true}

	hist := HistoryFromContext(ctx)
	if hist == nil {
		hist = d.history
		ctx = WithHistory(ctx, hist)
	}

	start := time.Now()
	err := run(ctx, hist, cmd, d.workspace)
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = err
		logging.Get(logging.CategoryCommands).Zap().Error("Error in command",
			zap.String("command", name),
			zap.Error(err),
			zap.Stack("stack"))
	}
	return res
}

func run(ctx context.Context, hist *History, cmd Command, ws surface.Workspace) error {
	hist.Record(ctx, cmd)
	restore := hist.Suppress()
	defer restore()
	return cmd.Execute(ctx, ws)
}
