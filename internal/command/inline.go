package command

import (
	"context"

	"go.uber.org/zap"

	"editcmd/internal/logging"
	"editcmd/internal/surface"
)

// Func is a block that takes no input. The running command, its workspace
// and its declared input are reachable from ctx (see Text and Input).
type Func func(ctx context.Context) (string, error)

// InputFunc is a block that receives the command's resolved input.
type InputFunc func(ctx context.Context, input string) (string, error)

// InlineCommand is a command whose body is an in-process closure.
type InlineCommand struct {
	Base

	block InputFunc
	arity int
}

// NewInline creates a command whose block takes no input.
func NewInline(base Base, fn Func) *InlineCommand {
	return &InlineCommand{
		Base:  base,
		block: func(ctx context.Context, _ string) (string, error) { return fn(ctx) },
		arity: 0,
	}
}

// NewInlineWithInput creates a command whose block receives Input(ws).
func NewInlineWithInput(base Base, fn InputFunc) *InlineCommand {
	return &InlineCommand{Base: base, block: fn, arity: 1}
}

// Arity returns the number of input arguments the block takes (0 or 1).
func (c *InlineCommand) Arity() int { return c.arity }

// Execute calls the block and forwards a non-empty result to the output.
// An error from the block is logged and contained; output errors are returned.
func (c *InlineCommand) Execute(ctx context.Context, ws surface.Workspace) error {
	_ = c.Base.Execute(ctx, ws)

	var input string
	if c.arity == 1 {
		input = c.Input(ws)
	}

	out, err := c.block(withExecution(ctx, c, ws), input)
	if err != nil {
		logging.Get(logging.CategoryCommands).Zap().Error("command block failed",
			zap.String("command", c.Name),
			zap.Error(err),
			zap.Stack("stack"))
		return nil
	}
	if out == "" {
		return nil
	}
	return c.DirectOutput(ws, c.Output, out)
}
