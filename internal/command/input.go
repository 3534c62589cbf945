package command

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"editcmd/internal/surface"
)

// ActiveText returns the active surface when it is a text surface.
func ActiveText(ws surface.Workspace) (surface.Text, bool) {
	if ws == nil {
		return nil, false
	}
	t, ok := ws.Active().(surface.Text)
	return t, ok
}

// ResolveInput reads the value selected by kind from the active surface.
// ok is false when the kind yields no value; every kind yields no value
// when the active surface is not a text surface.
func ResolveInput(ws surface.Workspace, kind InputKind) (string, bool) {
	tab, ok := ActiveText(ws)
	if !ok {
		return "", false
	}

	switch kind {
	case InputSelectedText:
		return tab.Selection(), true
	case InputDocument:
		return tab.Text(), true
	case InputLine:
		return tab.Line(), true
	case InputWord:
		s, e, ok := WordSpan(tab.Text(), tab.CursorOffset())
		if !ok {
			return "", false
		}
		return strings.TrimSpace(tab.Text()[s:e]), true
	case InputCharacter:
		return characterAt(tab.Text(), tab.CursorOffset())
	case InputScope:
		scoped, ok := tab.(surface.Scoped)
		if !ok || !scoped.HasGrammar() {
			return "", false
		}
		scope, ok := scoped.CurrentScope()
		if !ok || scope.Start >= scope.End || scope.End > len(tab.Text()) {
			return "", false
		}
		return tab.Text()[scope.Start:scope.End], true
	default:
		return "", false
	}
}

// WordSpan returns the byte span of the word touching offset. The cursor is
// inside a word when the rune at offset or the rune just before it is a word
// rune; word runes are letters, digits and underscore.
func WordSpan(text string, offset int) (start, end int, ok bool) {
	if offset < 0 || offset > len(text) {
		return 0, 0, false
	}

	after, before := false, false
	if offset < len(text) {
		r, _ := utf8.DecodeRuneInString(text[offset:])
		after = isWordRune(r)
	}
	if offset > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:offset])
		before = isWordRune(r)
	}
	if !after && !before {
		return 0, 0, false
	}

	start = offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	end = offset
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return start, end, true
}

func characterAt(text string, off int) (string, bool) {
	if off < 0 || off >= len(text) {
		return "", false
	}
	_, size := utf8.DecodeRuneInString(text[off:])
	return text[off : off+size], true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
