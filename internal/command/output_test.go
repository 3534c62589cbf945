package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editcmd/internal/surface"
)

func TestDirectOutputBufferKinds(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		cursor     int
		selStart   int
		selEnd     int
		kind       OutputKind
		content    string
		wantText   string
		wantCursor int
	}{
		{"replace document", "old", 1, -1, -1, OutputReplaceDocument, "new text", "new text", 1},
		{"replace line", "a\nbb\nc", 3, -1, -1, OutputReplaceLine, "XYZ", "a\nXYZ\nc", 5},
		{"replace selected text", "hello world", 0, 6, 11, OutputReplaceSelectedText, "there", "hello there", 11},
		{"insert as text", "ac", 1, -1, -1, OutputInsertAsText, "b", "abc", 2},
		{"insert as snippet", "f", 1, -1, -1, OutputInsertAsSnippet, "(${1:x})", "f(x)", 2},
		{"after selected text", "abcdef", 0, 1, 3, OutputAfterSelectedText, "_", "abc_def", 3},
		{"after cursor without selection", "abcdef", 2, -1, -1, OutputAfterSelectedText, "_", "ab_cdef", 2},
		{"discard", "same", 2, -1, -1, OutputDiscard, "ignored", "same", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, buf := newWorkspace(tt.text, tt.cursor)
			if tt.selStart >= 0 {
				buf.Select(tt.selStart, tt.selEnd)
			}
			cmd := &Base{Name: "t/out"}

			require.NoError(t, cmd.DirectOutput(ws, tt.kind, tt.content))
			assert.Equal(t, tt.wantText, buf.Text())
			assert.Equal(t, tt.wantCursor, buf.CursorOffset())
		})
	}
}

func TestShowAsToolTip(t *testing.T) {
	ws, buf := newWorkspace("text", 0)
	cmd := &Base{Name: "t/tip"}

	require.NoError(t, cmd.DirectOutput(ws, OutputShowAsToolTip, "3 words"))
	assert.Equal(t, "3 words", buf.Tooltip())
	assert.Equal(t, "text", buf.Text())
}

func TestInsertAfterInputLine(t *testing.T) {
	t.Run("non-last line inserts at start of next line", func(t *testing.T) {
		ws, buf := newWorkspace("first\nsecond", 2)
		cmd := &Base{Name: "t/after", Inputs: []InputKind{InputLine}}

		require.NoError(t, cmd.DirectOutput(ws, OutputInsertAfterInput, "X"))
		assert.Equal(t, "first\nXsecond", buf.Text())
		assert.Equal(t, "first", buf.Line())
	})

	t.Run("last line appends newline and content", func(t *testing.T) {
		ws, buf := newWorkspace("first\nsecond", 8)
		cmd := &Base{Name: "t/after", Inputs: []InputKind{InputLine}}

		require.NoError(t, cmd.DirectOutput(ws, OutputInsertAfterInput, "X"))
		assert.Equal(t, "first\nsecond\nX", buf.Text())
	})
}

func TestInsertAfterInputSelection(t *testing.T) {
	ws, buf := newWorkspace("say hi now", 0)
	buf.Select(6, 4)
	cmd := &Base{Name: "t/after", Inputs: []InputKind{InputSelectedText, InputLine}}

	require.NoError(t, cmd.DirectOutput(ws, OutputInsertAfterInput, "!!"))
	assert.Equal(t, "say hi!! now", buf.Text())
	assert.Equal(t, "!!", buf.Selection())
}

func TestInsertAfterInputDocument(t *testing.T) {
	ws, buf := newWorkspace("body", 1)
	cmd := &Base{Name: "t/after", Inputs: []InputKind{InputDocument}}

	require.NoError(t, cmd.DirectOutput(ws, OutputInsertAfterInput, "\ntail"))
	assert.Equal(t, "body\ntail", buf.Text())
}

func TestReplaceInput(t *testing.T) {
	t.Run("selection", func(t *testing.T) {
		ws, buf := newWorkspace("one two", 0)
		buf.Select(4, 7)
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputSelectedText, InputLine}}
		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "TWO"))
		assert.Equal(t, "one TWO", buf.Text())
	})

	t.Run("fallback line", func(t *testing.T) {
		ws, buf := newWorkspace("one\ntwo", 5)
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputSelectedText, InputLine}}
		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "TWO"))
		assert.Equal(t, "one\nTWO", buf.Text())
	})

	t.Run("document", func(t *testing.T) {
		ws, buf := newWorkspace("all of it", 0)
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputDocument}}
		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "gone"))
		assert.Equal(t, "gone", buf.Text())
	})

	t.Run("word", func(t *testing.T) {
		ws, buf := newWorkspace("foo bar baz", 5)
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputWord}}
		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "BAR"))
		assert.Equal(t, "foo BAR baz", buf.Text())
	})

	t.Run("character", func(t *testing.T) {
		ws, buf := newWorkspace("añb", 1)
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputCharacter}}
		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "N"))
		assert.Equal(t, "aNb", buf.Text())
	})

	t.Run("scope", func(t *testing.T) {
		src := "package main\n\nvar answer = 41\n"
		scoper, ok := surface.ScoperForFile("main.go")
		require.True(t, ok)
		ws, buf := newWorkspace(src, strings.Index(src, "41"), surface.WithScoper(scoper))
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputScope}}

		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "42"))
		assert.Equal(t, "package main\n\nvar answer = 42\n", buf.Text())
	})

	t.Run("nothing leaves buffer alone", func(t *testing.T) {
		ws, buf := newWorkspace("keep", 0)
		cmd := &Base{Name: "t/r", Inputs: []InputKind{InputNothing}}
		require.NoError(t, cmd.DirectOutput(ws, OutputReplaceInput, "x"))
		assert.Equal(t, "keep", buf.Text())
	})
}

func TestCreateNewDocument(t *testing.T) {
	ws, buf := newWorkspace("source", 0)
	cmd := &Base{Name: "Text/report"}

	require.NoError(t, cmd.DirectOutput(ws, OutputCreateNewDocument, "report body"))

	active, ok := ws.Active().(surface.Text)
	require.True(t, ok)
	assert.NotSame(t, buf, active)
	assert.Equal(t, "output: Text/report", active.Name())
	assert.Equal(t, "report body", active.Text())
	assert.True(t, active.Focused())
	assert.Equal(t, "source", buf.Text())
}

func TestShowAsHTML(t *testing.T) {
	ws, _ := newWorkspace("source", 0)
	cmd := &Base{Name: "Text/preview"}

	require.NoError(t, cmd.DirectOutput(ws, OutputShowAsHTML, "<h1>hi</h1>"))

	active, ok := ws.Active().(surface.HTML)
	require.True(t, ok)
	assert.Equal(t, "output: Text/preview", active.Name())
	assert.Equal(t, "<h1>hi</h1>", active.Content())
	assert.True(t, active.Focused())
}

func TestDirectOutputWithoutTextSurface(t *testing.T) {
	pane := surface.NewPane(surface.NewHTMLView("x"))
	cmd := &Base{Name: "t/out"}

	err := cmd.DirectOutput(pane, OutputInsertAsText, "x")
	assert.True(t, errors.Is(err, ErrNoTextSurface))

	// New-surface kinds work from any active surface.
	assert.NoError(t, cmd.DirectOutput(pane, OutputCreateNewDocument, "x"))
	assert.True(t, errors.Is(cmd.DirectOutput(nil, OutputShowAsHTML, "x"), ErrNoWorkspace))
	assert.NoError(t, cmd.DirectOutput(nil, OutputDiscard, "x"))
}
