package surface

import (
	"strconv"
	"strings"
)

// ExpandSnippet turns TextMate style snippet text into plain text.
// Tab stops ($1, ${2}) are dropped, placeholders (${1:name}) keep their
// default, "\$" escapes a dollar. It returns the expanded text and the offset
// of the final cursor position: the $0 stop if present, else the first tab
// stop, else the end of the text.
func ExpandSnippet(snippet string) (string, int) {
	var out strings.Builder
	stops := map[int]int{}

	for i := 0; i < len(snippet); i++ {
		c := snippet[i]
		if c == '\\' && i+1 < len(snippet) && (snippet[i+1] == '$' || snippet[i+1] == '\\' || snippet[i+1] == '}') {
			out.WriteByte(snippet[i+1])
			i++
			continue
		}
		if c != '$' || i+1 >= len(snippet) {
			out.WriteByte(c)
			continue
		}

		rest := snippet[i+1:]
		if n, width := leadingInt(rest); width > 0 {
			recordStop(stops, n, out.Len())
			i += width
			continue
		}
		if rest[0] == '{' {
			closeIdx := matchingBrace(rest)
			if closeIdx < 0 {
				out.WriteByte(c)
				continue
			}
			body := rest[1:closeIdx]
			n, width := leadingInt(body)
			if width == 0 {
				out.WriteByte(c)
				continue
			}
			recordStop(stops, n, out.Len())
			if width < len(body) && body[width] == ':' {
				inner, _ := ExpandSnippet(body[width+1:])
				out.WriteString(inner)
			}
			i += closeIdx + 1
			continue
		}
		out.WriteByte(c)
	}

	text := out.String()
	if off, ok := stops[0]; ok {
		return text, off
	}
	first := -1
	for n := range stops {
		if first < 0 || n < first {
			first = n
		}
	}
	if first > 0 {
		return text, stops[first]
	}
	return text, len(text)
}

func recordStop(stops map[int]int, n, offset int) {
	if _, seen := stops[n]; !seen {
		stops[n] = offset
	}
}

func leadingInt(s string) (int, int) {
	width := 0
	for width < len(s) && s[width] >= '0' && s[width] <= '9' {
		width++
	}
	if width == 0 {
		return 0, 0
	}
	n, err := strconv.Atoi(s[:width])
	if err != nil {
		return 0, 0
	}
	return n, width
}

// matchingBrace returns the index of the brace closing s[0], honouring nesting.
func matchingBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
