package command

import (
	"context"

	"editcmd/internal/surface"
)

type historyKey struct{}

type executionKey struct{}

type execution struct {
	cmd Command
	ws  surface.Workspace
}

// WithHistory returns a context carrying h.
func WithHistory(ctx context.Context, h *History) context.Context {
	return context.WithValue(ctx, historyKey{}, h)
}

// HistoryFromContext returns the history carried by ctx, or nil.
func HistoryFromContext(ctx context.Context) *History {
	h, _ := ctx.Value(historyKey{}).(*History)
	return h
}

// withExecution records the running command and its workspace on ctx.
func withExecution(ctx context.Context, cmd Command, ws surface.Workspace) context.Context {
	return context.WithValue(ctx, executionKey{}, execution{cmd: cmd, ws: ws})
}

func executionFrom(ctx context.Context) (execution, bool) {
	e, ok := ctx.Value(executionKey{}).(execution)
	return e, ok
}

// Workspace returns the workspace of the command running on ctx.
func Workspace(ctx context.Context) surface.Workspace {
	e, _ := executionFrom(ctx)
	return e.ws
}

// Text returns the active text surface of the command running on ctx.
func Text(ctx context.Context) (surface.Text, bool) {
	return ActiveText(Workspace(ctx))
}

// Input resolves the declared input of the command running on ctx. It lets
// zero-argument handlers read the same value an input-taking block receives.
func Input(ctx context.Context) string {
	e, ok := executionFrom(ctx)
	if !ok || e.cmd == nil {
		return ""
	}
	return e.cmd.Meta().Input(e.ws)
}

// Running returns the command running on ctx.
func Running(ctx context.Context) (Command, bool) {
	e, ok := executionFrom(ctx)
	return e.cmd, ok && e.cmd != nil
}
