// Package bindings holds the in-memory key and menu tables commands are bound to.
package bindings

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"editcmd/internal/command"
	"editcmd/internal/logging"
)

var (
	ErrEmptyCombo    = errors.New("empty key combination")
	ErrEmptyMenuPath = errors.New("empty menu path")
)

// Binding pairs a key combination with the command it runs.
type Binding struct {
	Combo   string
	Command string
}

// Keymap maps key combinations to commands. Rebinding a combination
// replaces the previous command.
type Keymap struct {
	mu    sync.RWMutex
	combo map[string]command.Command
}

func NewKeymap() *Keymap {
	return &Keymap{combo: make(map[string]command.Command)}
}

// RegisterKey binds combo to cmd.
func (k *Keymap) RegisterKey(combo string, cmd command.Command) error {
	combo = normalizeCombo(combo)
	if combo == "" {
		return ErrEmptyCombo
	}
	if cmd == nil {
		return command.ErrNilCommand
	}

	k.mu.Lock()
	prev, replaced := k.combo[combo]
	k.combo[combo] = cmd
	k.mu.Unlock()

	if replaced && prev.Meta().Name != cmd.Meta().Name {
		logging.RegistrarDebug("key %s rebound from %s to %s", combo, prev.Meta().Name, cmd.Meta().Name)
	}
	return nil
}

// Lookup returns the command bound to combo.
func (k *Keymap) Lookup(combo string) (command.Command, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	cmd, ok := k.combo[normalizeCombo(combo)]
	return cmd, ok
}

// Bindings returns every binding sorted by combination.
func (k *Keymap) Bindings() []Binding {
	k.mu.RLock()
	out := make([]Binding, 0, len(k.combo))
	for combo, cmd := range k.combo {
		out = append(out, Binding{Combo: combo, Command: cmd.Meta().Name})
	}
	k.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Combo < out[j].Combo })
	return out
}

// normalizeCombo trims and lowercases modifiers so "Ctrl+U" and "ctrl+U"
// bind the same key. The final key keeps its case.
func normalizeCombo(combo string) string {
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return ""
	}
	parts := strings.Split(combo, "+")
	for i := 0; i < len(parts)-1; i++ {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	parts[len(parts)-1] = strings.TrimSpace(parts[len(parts)-1])
	return strings.Join(parts, "+")
}
