package surface

import (
	"fmt"
	"os"
	"strings"

	"editcmd/internal/logging"
)

// Buffer is an in-memory text surface. The selection runs between anchor
// and cursor; it is empty when they are equal.
type Buffer struct {
	name     string
	text     string
	cursor   int
	anchor   int
	filename string
	focused  bool
	tooltip  string
	scoper   Scoper
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithFilename marks the buffer as backed by path.
func WithFilename(path string) BufferOption {
	return func(b *Buffer) { b.filename = path }
}

// WithScoper attaches a grammar used for scope lookups.
func WithScoper(s Scoper) BufferOption {
	return func(b *Buffer) { b.scoper = s }
}

// NewBuffer creates a buffer holding text with the cursor at offset 0.
func NewBuffer(text string, opts ...BufferOption) *Buffer {
	b := &Buffer{text: text}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OpenFile loads path into a new buffer, attaching a scoper when the file
// extension has a known grammar.
func OpenFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	opts := []BufferOption{WithFilename(path)}
	if s, ok := ScoperForFile(path); ok {
		opts = append(opts, WithScoper(s))
	}
	b := NewBuffer(string(data), opts...)
	b.name = path
	logging.SurfaceDebug("opened %s (%d bytes, grammar=%v)", path, len(data), b.HasGrammar())
	return b, nil
}

func (b *Buffer) Name() string { return b.name }
func (b *Buffer) SetName(name string) { b.name = name }
func (b *Buffer) Focus() { b.focused = true }
func (b *Buffer) Focused() bool { return b.focused }
func (b *Buffer) Text() string { return b.text }
func (b *Buffer) Filename() string { return b.filename }

// Tooltip returns the last tooltip shown at the cursor.
func (b *Buffer) Tooltip() string { return b.tooltip }

// SetCursor moves the cursor and clears the selection.
func (b *Buffer) SetCursor(offset int) {
	b.cursor = b.clamp(offset)
	b.anchor = b.cursor
}

func (b *Buffer) Selected() bool { return b.anchor != b.cursor }

func (b *Buffer) SelectionBounds() (int, int) {
	if b.anchor < b.cursor {
		return b.anchor, b.cursor
	}
	return b.cursor, b.anchor
}

func (b *Buffer) Selection() string {
	s, e := b.SelectionBounds()
	return b.text[s:e]
}

func (b *Buffer) CursorOffset() int { return b.cursor }

func (b *Buffer) CursorLine() int {
	return strings.Count(b.text[:b.cursor], "\n")
}

func (b *Buffer) CursorLineOffset() int {
	return b.cursor - b.LineStart(b.CursorLine())
}

func (b *Buffer) LineCount() int {
	return strings.Count(b.text, "\n") + 1
}

func (b *Buffer) LineStart(n int) int {
	if n <= 0 {
		return 0
	}
	off := 0
	for i := 0; i < n; i++ {
		idx := strings.IndexByte(b.text[off:], '\n')
		if idx < 0 {
			return len(b.text)
		}
		off += idx + 1
	}
	return off
}

func (b *Buffer) LineEnd(n int) int {
	start := b.LineStart(n)
	idx := strings.IndexByte(b.text[start:], '\n')
	if idx < 0 {
		return len(b.text)
	}
	return start + idx
}

func (b *Buffer) Line() string {
	n := b.CursorLine()
	return b.text[b.LineStart(n):b.LineEnd(n)]
}

func (b *Buffer) Replace(text string) {
	b.text = text
	b.cursor = b.clamp(b.cursor)
	b.anchor = b.cursor
}

func (b *Buffer) ReplaceLine(text string) {
	n := b.CursorLine()
	start, end := b.LineStart(n), b.LineEnd(n)
	b.splice(start, end, text)
	b.cursor = start + len(text)
	b.anchor = b.cursor
}

// ReplaceSelection replaces the selection and leaves the new text selected.
// Without a selection it inserts at the cursor.
func (b *Buffer) ReplaceSelection(text string) {
	s, e := b.SelectionBounds()
	b.splice(s, e, text)
	b.anchor = s
	b.cursor = s + len(text)
}

func (b *Buffer) InsertAtCursor(text string) {
	at := b.cursor
	b.splice(at, at, text)
	b.cursor = at + len(text)
	b.anchor = b.cursor
}

// InsertAsSnippet expands tab stops and leaves the cursor at the final stop.
func (b *Buffer) InsertAsSnippet(text string) {
	plain, stop := ExpandSnippet(text)
	at := b.cursor
	b.splice(at, at, plain)
	b.cursor = at + stop
	b.anchor = b.cursor
}

func (b *Buffer) TooltipAtCursor(text string) { b.tooltip = text }

// Insert adds text at offset. Positions after offset shift; a cursor sitting
// exactly at offset stays in place.
func (b *Buffer) Insert(offset int, text string) {
	offset = b.clamp(offset)
	b.splice(offset, offset, text)
	if b.cursor > offset {
		b.cursor += len(text)
	}
	if b.anchor > offset {
		b.anchor += len(text)
	}
}

func (b *Buffer) Select(start, end int) {
	b.anchor = b.clamp(start)
	b.cursor = b.clamp(end)
}

func (b *Buffer) Delete(start, end int) {
	start, end = b.clamp(start), b.clamp(end)
	if end < start {
		start, end = end, start
	}
	b.splice(start, end, "")
	b.cursor = shiftForDelete(b.cursor, start, end)
	b.anchor = shiftForDelete(b.anchor, start, end)
}

func (b *Buffer) HasGrammar() bool { return b.scoper != nil }

func (b *Buffer) CurrentScope() (Scope, bool) {
	if b.scoper == nil {
		return Scope{}, false
	}
	return b.scoper.ScopeAt([]byte(b.text), b.cursor)
}

func (b *Buffer) ScopeAtCursor() string {
	s, ok := b.CurrentScope()
	if !ok {
		return ""
	}
	return s.Name
}

func (b *Buffer) splice(start, end int, text string) {
	b.text = b.text[:start] + text + b.text[end:]
}

func (b *Buffer) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(b.text) {
		return len(b.text)
	}
	return offset
}

func shiftForDelete(pos, start, end int) int {
	switch {
	case pos >= end:
		return pos - (end - start)
	case pos > start:
		return start
	default:
		return pos
	}
}
