// Package surface defines the editor-surface capability contract the command
// core reads from and writes to, plus small in-memory implementations used by
// the CLI and tests.
//
// All offsets are byte offsets into the buffer text. Lines are zero-based.
package surface

// Surface is any editor tab: a text editor, a rendered HTML view.
type Surface interface {
	Name() string
	SetName(name string)
	Focus()
	Focused() bool
}

// Text is a text-capable editor surface.
type Text interface {
	Surface

	Text() string
	Selection() string
	Selected() bool
	// SelectionBounds returns the ordered selection range; both equal
	// the cursor offset when nothing is selected.
	SelectionBounds() (start, end int)
	CursorOffset() int
	CursorLine() int
	// CursorLineOffset is the cursor column within its line.
	CursorLineOffset() int
	LineCount() int
	// Line returns the current line without its terminator.
	Line() string
	LineStart(n int) int
	LineEnd(n int) int

	Replace(text string)
	ReplaceLine(text string)
	ReplaceSelection(text string)
	InsertAtCursor(text string)
	InsertAsSnippet(text string)
	TooltipAtCursor(text string)
	Insert(offset int, text string)
	Select(start, end int)
	Delete(start, end int)

	// Filename is empty for buffers not backed by a file.
	Filename() string
}

// Scope is a syntax scope: a space separated path from the root scope to the
// innermost node at a position, and the byte span of that innermost node.
type Scope struct {
	Name  string
	Start int
	End   int
}

// Scoped is implemented by surfaces that can report the syntax scope at the cursor.
type Scoped interface {
	HasGrammar() bool
	ScopeAtCursor() string
	CurrentScope() (Scope, bool)
}

// HTML is a rendered output surface.
type HTML interface {
	Surface
	Content() string
}

// Workspace gives commands access to the active surface and lets output
// modes open new ones.
type Workspace interface {
	Active() Surface
	NewTextSurface() Text
	NewHTMLSurface(content string) HTML
}
