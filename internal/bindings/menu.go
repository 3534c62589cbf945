package bindings

import (
	"sort"
	"strings"
	"sync"
)

// MenuItem is a command placed at a menu path such as "menubar/Text/Case".
type MenuItem struct {
	Path    string
	Command string
}

// MenuBar is a tree of menu paths. A command appears at most once per path.
type MenuBar struct {
	mu    sync.RWMutex
	items map[string][]string
}

func NewMenuBar() *MenuBar {
	return &MenuBar{items: make(map[string][]string)}
}

// RegisterMenuItem adds commandName under path.
func (m *MenuBar) RegisterMenuItem(path, commandName string) error {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return ErrEmptyMenuPath
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items[path] {
		if existing == commandName {
			return nil
		}
	}
	m.items[path] = append(m.items[path], commandName)
	return nil
}

// Items returns every menu item sorted by path, keeping registration order
// within a path.
func (m *MenuBar) Items() []MenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.items))
	for p := range m.items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []MenuItem
	for _, p := range paths {
		for _, name := range m.items[p] {
			out = append(out, MenuItem{Path: p, Command: name})
		}
	}
	return out
}

// Commands returns the command names placed directly at path.
func (m *MenuBar) Commands(path string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.items[strings.Trim(path, "/")]...)
}

// Children returns the sorted submenu names directly below path.
func (m *MenuBar) Children(path string) []string {
	prefix := strings.Trim(path, "/") + "/"

	m.mu.RLock()
	seen := make(map[string]struct{})
	for p := range m.items {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		seen[rest] = struct{}{}
	}
	m.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
