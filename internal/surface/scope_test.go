package surface

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSitterScoperGo(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tx := 1\n\t_ = x\n}\n"
	s, ok := ScoperForFile("main.go")
	require.True(t, ok)

	off := strings.Index(src, "x :=")
	scope, ok := s.ScopeAt([]byte(src), off)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(scope.Name, "source.go "), scope.Name)
	assert.Contains(t, scope.Name, "function_declaration")
	assert.True(t, strings.HasSuffix(scope.Name, "identifier"), scope.Name)
	assert.Equal(t, "x", src[scope.Start:scope.End])
}

func TestTreeSitterScoperOutOfRange(t *testing.T) {
	s, ok := ScoperForFile("script.py")
	require.True(t, ok)

	_, ok = s.ScopeAt([]byte("x = 1\n"), 99)
	assert.False(t, ok)
}

func TestScoperForUnknownExtension(t *testing.T) {
	_, ok := ScoperForFile("notes.txt")
	assert.False(t, ok)
}

func TestBufferScopeAtCursor(t *testing.T) {
	src := "def f():\n    return 1\n"
	s, _ := ScoperForFile("f.py")
	b := NewBuffer(src, WithScoper(s))
	b.SetCursor(strings.Index(src, "return"))

	assert.True(t, b.HasGrammar())
	assert.True(t, strings.HasPrefix(b.ScopeAtCursor(), "source.python"))
	assert.Contains(t, b.ScopeAtCursor(), "return_statement")
}
