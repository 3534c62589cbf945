package command

import (
	"fmt"
	"strings"
)

// InputKind selects which piece of editor state a command reads.
type InputKind int

const (
	InputNone InputKind = iota
	InputSelectedText
	InputDocument
	InputLine
	// InputWord is the word touching the cursor; a cursor right after the
	// last rune of a word still counts as on it.
	InputWord
	InputCharacter
	// InputScope is the buffer text of the innermost syntax node at the cursor.
	InputScope
	InputNothing
)

var inputNames = [...]struct{ name, display string }{
	InputNone:         {"none", "None"},
	InputSelectedText: {"selected_text", "Selected Text"},
	InputDocument:     {"document", "Document"},
	InputLine:         {"line", "Line"},
	InputWord:         {"word", "Word"},
	InputCharacter:    {"character", "Character"},
	InputScope:        {"scope", "Scope"},
	InputNothing:      {"nothing", "Nothing"},
}

// Alternative spellings keyed by normalized form.
var inputAliases = map[string]InputKind{
	"selection": InputSelectedText,
}

// InputKinds returns every input kind in display order.
func InputKinds() []InputKind {
	return []InputKind{InputNone, InputDocument, InputLine, InputWord, InputCharacter, InputScope, InputNothing, InputSelectedText}
}

func (k InputKind) valid() bool { return k >= 0 && int(k) < len(inputNames) }

// String returns the snake_case name of the kind.
func (k InputKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
	return inputNames[k].name
}

// DisplayName returns the title-case name shown in menus ("Selected Text").
func (k InputKind) DisplayName() string {
	if !k.valid() {
		return k.String()
	}
	return inputNames[k].display
}

// ParseInputKind accepts snake_case, camelCase and display names as well as
// the "selection" alias. The empty string is InputNone.
func ParseInputKind(s string) (InputKind, error) {
	key := normalizeKind(s)
	if key == "" {
		return InputNone, nil
	}
	for i, n := range inputNames {
		if normalizeKind(n.name) == key {
			return InputKind(i), nil
		}
	}
	if k, ok := inputAliases[key]; ok {
		return k, nil
	}
	return InputNone, fmt.Errorf("%w: %q", ErrUnknownInputKind, s)
}

// MustParseInputKind is ParseInputKind for static tables; it panics on error.
func MustParseInputKind(s string) InputKind {
	k, err := ParseInputKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k InputKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInputKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *InputKind) UnmarshalText(text []byte) error {
	parsed, err := ParseInputKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// OutputKind selects how a command's produced string is applied to the editor.
type OutputKind int

const (
	OutputDiscard OutputKind = iota
	OutputReplaceSelectedText
	OutputReplaceDocument
	OutputReplaceLine
	OutputInsertAsText
	OutputInsertAsSnippet
	OutputShowAsHTML
	OutputShowAsToolTip
	OutputCreateNewDocument
	OutputReplaceInput
	OutputInsertAfterInput
	OutputAfterSelectedText
)

var outputNames = [...]struct{ name, display string }{
	OutputDiscard:             {"discard", "Discard"},
	OutputReplaceSelectedText: {"replace_selected_text", "Replace Selected Text"},
	OutputReplaceDocument:     {"replace_document", "Replace Document"},
	OutputReplaceLine:         {"replace_line", "Replace Line"},
	OutputInsertAsText:        {"insert_as_text", "Insert As Text"},
	OutputInsertAsSnippet:     {"insert_as_snippet", "Insert As Snippet"},
	OutputShowAsHTML:          {"show_as_html", "Show As Html"},
	OutputShowAsToolTip:       {"show_as_tool_tip", "Show As Tool Tip"},
	OutputCreateNewDocument:   {"create_new_document", "Create New Document"},
	OutputReplaceInput:        {"replace_input", "Replace Input"},
	OutputInsertAfterInput:    {"insert_after_input", "Insert After Input"},
	OutputAfterSelectedText:   {"after_selected_text", "After Selected Text"},
}

// OutputKinds returns every output kind in display order.
func OutputKinds() []OutputKind {
	out := make([]OutputKind, len(outputNames))
	for i := range outputNames {
		out[i] = OutputKind(i)
	}
	return out
}

func (k OutputKind) valid() bool { return k >= 0 && int(k) < len(outputNames) }

// String returns the snake_case name of the kind.
func (k OutputKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("OutputKind(%d)", int(k))
	}
	return outputNames[k].name
}

// DisplayName returns the title-case name shown in menus ("Show As Tool Tip").
func (k OutputKind) DisplayName() string {
	if !k.valid() {
		return k.String()
	}
	return outputNames[k].display
}

// ParseOutputKind accepts snake_case, camelCase and display names; spacing,
// case and underscores are ignored so "show_as_tooltip" and "showAsHTML"
// resolve too. The empty string is OutputDiscard.
func ParseOutputKind(s string) (OutputKind, error) {
	key := normalizeKind(s)
	if key == "" {
		return OutputDiscard, nil
	}
	for i, n := range outputNames {
		if normalizeKind(n.name) == key {
			return OutputKind(i), nil
		}
	}
	return OutputDiscard, fmt.Errorf("%w: %q", ErrUnknownOutputKind, s)
}

// MustParseOutputKind is ParseOutputKind for static tables; it panics on error.
func MustParseOutputKind(s string) OutputKind {
	k, err := ParseOutputKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k OutputKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutputKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *OutputKind) UnmarshalText(text []byte) error {
	parsed, err := ParseOutputKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func normalizeKind(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case '_', ' ', '-':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
