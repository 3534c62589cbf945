package registrar

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editcmd/internal/bindings"
	"editcmd/internal/command"
	"editcmd/internal/surface"
)

type fixture struct {
	reg  *command.Registry
	keys *bindings.Keymap
	menu *bindings.MenuBar
	hist *command.History
	r    *Registrar
	buf  *surface.Buffer
	disp *command.Dispatcher
}

func newFixture(text string) *fixture {
	f := &fixture{
		reg:  command.NewRegistry(),
		keys: bindings.NewKeymap(),
		menu: bindings.NewMenuBar(),
		hist: command.NewHistory(10),
		buf:  surface.NewBuffer(text),
	}
	f.r = New(f.reg, f.keys, f.menu, WithHistory(f.hist))
	f.disp = command.NewDispatcher(f.reg, f.hist, surface.NewPane(f.buf))
	return f
}

func upcase(ctx context.Context) (string, error) {
	return strings.ToUpper(command.Input(ctx)), nil
}

func TestUserCommandsPublishesAnnotatedCommand(t *testing.T) {
	f := newFixture("hello world")
	b := f.r.For("Text")

	err := b.UserCommands("Edit", func() {
		b.Key("Global/Ctrl+U")
		b.Menu("Text/Case")
		b.Scope("Text")
		b.Inputs(command.InputWord, command.InputLine)
		b.Output(command.OutputReplaceInput)
		b.Def("upcase", upcase)
	})
	require.NoError(t, err)
	assert.False(t, b.Defining())

	cmd, ok := f.reg.Lookup("Text/Edit/upcase")
	require.True(t, ok)
	meta := cmd.Meta()
	assert.Equal(t, "Ctrl+U", meta.Key)
	assert.Equal(t, "Text", meta.Scope)
	assert.Equal(t, []command.InputKind{command.InputWord, command.InputLine}, meta.Inputs)
	assert.Equal(t, command.OutputReplaceInput, meta.Output)

	bound, ok := f.keys.Lookup("Ctrl+U")
	require.True(t, ok)
	assert.Same(t, cmd, bound)
	assert.Equal(t, []string{"Text/Edit/upcase"}, f.menu.Commands("menubar/Text/Case"))

	stored, ok := f.r.Metadata("Text/Edit/upcase")
	require.True(t, ok)
	assert.Equal(t, "Global/Ctrl+U", stored.Key)

	res := f.disp.ExecuteByName(context.Background(), "Text/Edit/upcase")
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "HELLO world", f.buf.Text())
	assert.Equal(t, []string{"Text/Edit/upcase"}, f.hist.Names())
}

func TestAnnotationsApplyToNextDefOnly(t *testing.T) {
	f := newFixture("")
	b := f.r.For("T")

	require.NoError(t, b.UserCommands("S", func() {
		b.Output(command.OutputShowAsToolTip)
		b.Def("first", func(context.Context) (string, error) { return "1", nil })
		b.Def("second", func(context.Context) (string, error) { return "2", nil })
	}))

	first, _ := f.reg.Lookup("T/S/first")
	second, _ := f.reg.Lookup("T/S/second")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, command.OutputShowAsToolTip, first.Meta().Output)
	assert.Equal(t, command.OutputDiscard, second.Meta().Output)
}

func TestAnnotationOutsideBlockPanics(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	annotations := map[string]func(){
		"key":       func() { b.Key("Ctrl+K") },
		"menu":      func() { b.Menu("Text") },
		"icon":      func() { b.Icon("x.png") },
		"scope":     func() { b.Scope("Text") },
		"sensitive": func() { b.Sensitive(true) },
		"primitive": func() { b.Primitive(true) },
		"inputs":    func() { b.Inputs(command.InputLine) },
		"input":     func() { b.Input(command.InputLine) },
		"output":    func() { b.Output(command.OutputDiscard) },
	}
	for name, annotate := range annotations {
		t.Run(name, func(t *testing.T) {
			defer func() {
				rec := recover()
				require.NotNil(t, rec, "expected panic")
				err, ok := rec.(error)
				require.True(t, ok)
				assert.True(t, errors.Is(err, ErrAnnotationOutsideBlock))
				var misuse *MisuseError
				require.ErrorAs(t, err, &misuse)
				assert.Equal(t, name, misuse.Annotation)
			}()
			annotate()
		})
	}
	assert.Equal(t, 0, f.reg.Count())
}

func TestDefOutsideBlockIsUndecorated(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	b.Def("helper", func(context.Context) (string, error) { return "help", nil })
	assert.Equal(t, 0, f.reg.Count())

	out, err := b.Call(context.Background(), "helper")
	require.NoError(t, err)
	assert.Equal(t, "help", out)
	assert.Equal(t, 0, f.hist.Len(), "undecorated methods are not recorded")
}

func TestCallUnknownMethod(t *testing.T) {
	f := newFixture("")
	_, err := f.r.For("Text").Call(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMethodNotDefined)
}

func TestNestedCallRecordsOuterOnly(t *testing.T) {
	f := newFixture("abc")
	b := f.r.For("Text")

	require.NoError(t, b.UserCommands("Edit", func() {
		b.Def("inner", func(context.Context) (string, error) { return "inner", nil })
		b.Output(command.OutputInsertAsText)
		b.Def("outer", func(ctx context.Context) (string, error) {
			s, err := b.Call(ctx, "inner")
			return "<" + s + ">", err
		})
	}))

	res := f.disp.ExecuteByName(context.Background(), "Text/Edit/outer")
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "<inner>abc", f.buf.Text())
	assert.Equal(t, []string{"Text/Edit/outer"}, f.hist.Names())
	assert.True(t, f.hist.Recording())

	// called directly, the wrapper records on its own
	_, err := b.Call(context.Background(), "outer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Text/Edit/outer", "Text/Edit/outer"}, f.hist.Names())
}

func TestGateRestoredOnErrorAndPanic(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	require.NoError(t, b.UserCommands("Edit", func() {
		b.Def("fails", func(context.Context) (string, error) { return "", errors.New("nope") })
		b.Def("panics", func(context.Context) (string, error) { panic("boom") })
	}))

	_, err := b.Call(context.Background(), "fails")
	assert.EqualError(t, err, "nope")
	assert.True(t, f.hist.Recording())

	assert.Panics(t, func() { _, _ = b.Call(context.Background(), "panics") })
	assert.True(t, f.hist.Recording())
	assert.Equal(t, []string{"Text/Edit/fails", "Text/Edit/panics"}, f.hist.Names())
}

func TestDefiningModeEndsOnPanic(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	assert.Panics(t, func() {
		_ = b.UserCommands("Edit", func() {
			b.Key("Ctrl+P")
			panic("block failed")
		})
	})
	assert.False(t, b.Defining())
	assert.Panics(t, func() { b.Key("Ctrl+P") })
}

func TestReregisterOverwrites(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	define := func(out string) {
		require.NoError(t, b.UserCommands("Edit", func() {
			b.Output(command.OutputShowAsToolTip)
			b.Def("say", func(context.Context) (string, error) { return out, nil })
		}))
	}
	define("one")
	define("two")

	assert.Equal(t, 1, f.reg.Count())
	res := f.disp.ExecuteByName(context.Background(), "Text/Edit/say")
	require.True(t, res.OK())
	assert.Equal(t, "two", f.buf.Tooltip())
}

func TestNilMethodReported(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	err := b.UserCommands("Edit", func() { b.Def("nothing", nil) })
	assert.ErrorIs(t, err, ErrNilMethod)
	assert.Equal(t, 0, f.reg.Count())
}

func TestKeyBindingFailureStillPublishes(t *testing.T) {
	f := newFixture("")
	b := f.r.For("Text")

	err := b.UserCommands("Edit", func() {
		b.Key("Global/")
		b.Def("unbound", func(context.Context) (string, error) { return "", nil })
	})
	assert.ErrorIs(t, err, bindings.ErrEmptyCombo)
	assert.True(t, f.reg.Has("Text/Edit/unbound"))
}

func TestRegisterCommand(t *testing.T) {
	f := newFixture("abc")

	cmd, err := f.r.RegisterCommand("Tools//stamp", func(context.Context) (string, error) {
		return "*", nil
	}, Metadata{Output: command.OutputInsertAsText, Key: "F9"})
	require.NoError(t, err)
	assert.Equal(t, "Tools/stamp", cmd.Name)
	assert.Equal(t, "F9", cmd.Key)

	res := f.disp.ExecuteByName(context.Background(), "Tools/stamp")
	require.True(t, res.OK())
	assert.Equal(t, "*abc", f.buf.Text())
	assert.Equal(t, []string{"Tools/stamp"}, f.hist.Names())

	_, err = f.r.RegisterCommand("Tools/none", nil, Metadata{})
	assert.ErrorIs(t, err, ErrNilMethod)
}

func TestForReturnsSameBuilder(t *testing.T) {
	r := New(command.NewRegistry(), nil, nil)
	assert.Same(t, r.For("a"), r.For("a"))
	assert.NotSame(t, r.For("a"), r.For("b"))
	assert.NotNil(t, r.History())
}
