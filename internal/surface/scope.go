package surface

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"editcmd/internal/logging"
)

// Scoper reports the syntax scope at a byte offset of a source text.
type Scoper interface {
	ScopeAt(src []byte, offset int) (Scope, bool)
}

// TreeSitterScoper derives scopes from a tree-sitter parse. The scope name is
// the root scope followed by the named node types from the tree root down to
// the innermost node covering the offset.
type TreeSitterScoper struct {
	mu     sync.Mutex
	root   string
	lang   *sitter.Language
	parser *sitter.Parser
}

// NewTreeSitterScoper creates a scoper for lang, naming scopes under root
// (for example "source.go").
func NewTreeSitterScoper(root string, lang *sitter.Language) *TreeSitterScoper {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &TreeSitterScoper{root: root, lang: lang, parser: p}
}

var grammars = map[string]struct {
	root string
	lang func() *sitter.Language
}{
	".go": {"source.go", golang.GetLanguage},
	".py": {"source.python", python.GetLanguage},
	".js": {"source.js", javascript.GetLanguage},
}

// ScoperForFile returns a scoper for the grammar matching path's extension.
func ScoperForFile(path string) (Scoper, bool) {
	g, ok := grammars[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, false
	}
	return NewTreeSitterScoper(g.root, g.lang()), true
}

// Close releases the parser.
func (s *TreeSitterScoper) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parser.Close()
}

// ScopeAt parses src and returns the scope at offset. The span is the byte
// range of the innermost named node; offsets at the end of the text resolve
// against the last node.
func (s *TreeSitterScoper) ScopeAt(src []byte, offset int) (Scope, bool) {
	if offset < 0 || offset > len(src) {
		return Scope{}, false
	}

	s.mu.Lock()
	tree, err := s.parser.ParseCtx(context.Background(), nil, src)
	s.mu.Unlock()
	if err != nil {
		logging.SurfaceDebug("scope parse failed for %s: %v", s.root, err)
		return Scope{}, false
	}
	defer tree.Close()

	node := tree.RootNode()
	path := []string{s.root}
	target := uint32(offset)
	if offset == len(src) && offset > 0 {
		target--
	}

	for {
		child := namedChildAt(node, target)
		if child == nil {
			break
		}
		path = append(path, child.Type())
		node = child
	}

	scope := Scope{
		Name:  strings.Join(path, " "),
		Start: int(node.StartByte()),
		End:   int(node.EndByte()),
	}
	logging.SurfaceDebug("scope at %d: %s [%d,%d)", offset, scope.Name, scope.Start, scope.End)
	return scope, true
}

func (s *TreeSitterScoper) String() string {
	return fmt.Sprintf("tree-sitter(%s)", s.root)
}

func namedChildAt(n *sitter.Node, offset uint32) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if c.StartByte() <= offset && offset < c.EndByte() {
			return c
		}
	}
	return nil
}
