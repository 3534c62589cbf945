package text

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editcmd/internal/bindings"
	"editcmd/internal/command"
	"editcmd/internal/registrar"
	"editcmd/internal/surface"
)

type env struct {
	pane *surface.Pane
	buf  *surface.Buffer
	keys *bindings.Keymap
	menu *bindings.MenuBar
	hist *command.History
	disp *command.Dispatcher
}

func setup(t *testing.T, text string, cursor int) *env {
	t.Helper()
	reg := command.NewRegistry()
	e := &env{
		buf:  surface.NewBuffer(text),
		keys: bindings.NewKeymap(),
		menu: bindings.NewMenuBar(),
		hist: command.NewHistory(10),
	}
	e.buf.SetCursor(cursor)
	e.pane = surface.NewPane(e.buf)
	require.NoError(t, Register(registrar.New(reg, e.keys, e.menu, registrar.WithHistory(e.hist))))
	e.disp = command.NewDispatcher(reg, e.hist, e.pane)
	return e
}

func (e *env) run(t *testing.T, name string) {
	t.Helper()
	res := e.disp.ExecuteByName(context.Background(), name)
	require.True(t, res.OK(), "%s: %v", name, res.Err)
}

func TestRegisteredCommands(t *testing.T) {
	e := setup(t, "", 0)
	assert.Equal(t, []string{
		"Text/Case/downcase",
		"Text/Case/toggle_case",
		"Text/Case/upcase",
		"Text/Info/copy_to_new",
		"Text/Info/preview",
		"Text/Info/word_count",
		"Text/Lines/duplicate_line",
		"Text/Lines/sort_lines",
	}, e.disp.Registry().Names())

	cmd, ok := e.keys.Lookup("Ctrl+U")
	require.True(t, ok)
	assert.Equal(t, "Text/Case/upcase", cmd.Meta().Name)
	assert.Equal(t, []string{"Case", "Info", "Lines"}, e.menu.Children("menubar/Text"))
}

func TestUpcaseWordUnderCursor(t *testing.T) {
	e := setup(t, "hello world", 7)
	e.run(t, "Text/Case/upcase")
	assert.Equal(t, "hello WORLD", e.buf.Text())
}

func TestDowncaseSelection(t *testing.T) {
	e := setup(t, "HELLO WORLD", 0)
	e.buf.Select(0, 5)
	e.run(t, "Text/Case/downcase")
	assert.Equal(t, "hello WORLD", e.buf.Text())
	assert.Equal(t, "hello", e.buf.Selection())
}

func TestToggleCaseRecordsOnlyItself(t *testing.T) {
	e := setup(t, "LOUD quiet", 1)
	e.run(t, "Text/Case/toggle_case")
	assert.Equal(t, "loud quiet", e.buf.Text())

	e.buf.SetCursor(7)
	e.run(t, "Text/Case/toggle_case")
	assert.Equal(t, "loud QUIET", e.buf.Text())

	assert.Equal(t, []string{"Text/Case/toggle_case", "Text/Case/toggle_case"}, e.hist.Names())
}

func TestSortLinesDocument(t *testing.T) {
	e := setup(t, "pear\napple\nfig\n", 0)
	e.run(t, "Text/Lines/sort_lines")
	assert.Equal(t, "apple\nfig\npear\n", e.buf.Text())
}

func TestDuplicateLine(t *testing.T) {
	t.Run("middle line", func(t *testing.T) {
		e := setup(t, "one\ntwo\nthree", 5)
		e.run(t, "Text/Lines/duplicate_line")
		assert.Equal(t, "one\ntwo\ntwo\nthree", e.buf.Text())
	})
	t.Run("last line", func(t *testing.T) {
		e := setup(t, "one\ntwo", 5)
		e.run(t, "Text/Lines/duplicate_line")
		assert.Equal(t, "one\ntwo\ntwo", e.buf.Text())
	})
}

func TestWordCountTooltip(t *testing.T) {
	e := setup(t, "a b c\nd e\n", 0)
	e.run(t, "Text/Info/word_count")
	assert.Equal(t, "2 lines, 5 words, 10 characters", e.buf.Tooltip())
	assert.Equal(t, "a b c\nd e\n", e.buf.Text())
}

func TestPreviewOpensHTML(t *testing.T) {
	e := setup(t, "<b>x</b>", 0)
	e.run(t, "Text/Info/preview")

	view, ok := e.pane.Active().(surface.HTML)
	require.True(t, ok)
	assert.Equal(t, "<pre>&lt;b&gt;x&lt;/b&gt;</pre>", view.Content())
	assert.Equal(t, command.OutputPrefix+"Text/Info/preview", view.Name())
}

func TestCopyToNewDocument(t *testing.T) {
	e := setup(t, "draft", 0)
	e.run(t, "Text/Info/copy_to_new")

	doc, ok := e.pane.Active().(surface.Text)
	require.True(t, ok)
	assert.Equal(t, "draft", doc.Text())
	assert.Len(t, e.pane.Tabs(), 2)
}
