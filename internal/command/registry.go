package command

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"editcmd/internal/logging"
)

// PathPrefix is the registry path under which commands are published.
const PathPrefix = "/commands/"

// Path returns the registry path of a command name.
func Path(name string) string {
	return PathPrefix + name
}

// Registry holds published commands keyed by name.
// It is thread-safe; publishing a name again replaces the prior command.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates a new empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Publish adds cmd under its name, overwriting any previous entry.
func (r *Registry) Publish(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	name := cmd.Meta().Name
	if name == "" {
		return ErrCommandNameEmpty
	}

	r.mu.Lock()
	_, replaced := r.commands[name]
	r.commands[name] = cmd
	r.mu.Unlock()

	if replaced {
		logging.CommandsDebug("Replaced command: %s", Path(name))
	} else {
		logging.CommandsDebug("Published command: %s", Path(name))
	}
	return nil
}

// MustPublish publishes cmd and panics on error.
// Use this for static registration at init time.
func (r *Registry) MustPublish(cmd Command) {
	if err := r.Publish(cmd); err != nil {
		panic(fmt.Sprintf("failed to publish command: %v", err))
	}
}

// Lookup returns the command published under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Get returns the command at a registry path ("/commands/<name>").
func (r *Registry) Get(path string) (Command, bool) {
	name, ok := strings.CutPrefix(path, PathPrefix)
	if !ok {
		return nil, false
	}
	return r.Lookup(name)
}

// Has returns true if a command with the given name is published.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Remove unpublishes name and reports whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.commands[name]
	delete(r.commands, name)
	return ok
}

// Names returns all published command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all published commands sorted by name.
func (r *Registry) All() []Command {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Command, 0, len(names))
	for _, name := range names {
		if cmd, ok := r.commands[name]; ok {
			result = append(result, cmd)
		}
	}
	return result
}

// InScope returns the published commands whose Scope equals scope.
func (r *Registry) InScope(scope string) []Command {
	var out []Command
	for _, cmd := range r.All() {
		if cmd.Meta().Scope == scope {
			out = append(out, cmd)
		}
	}
	return out
}

// Count returns the number of published commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
