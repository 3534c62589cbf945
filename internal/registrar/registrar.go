// Package registrar turns plain handlers into published commands.
//
// A Builder collects annotations (key, menu, scope, inputs, output...) inside
// a UserCommands block and applies them to the next method defined with Def:
//
//	b := r.For("Text")
//	err := b.UserCommands("Edit", func() {
//		b.Key("Global/Ctrl+U")
//		b.Inputs(command.InputSelectedText, command.InputLine)
//		b.Output(command.OutputReplaceInput)
//		b.Def("upcase", upcase)
//	})
//
// publishes "Text/Edit/upcase". Every defined method is replaced by a wrapper
// that records the command in History and suppresses recording of any
// command it triggers while it runs.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"editcmd/internal/command"
	"editcmd/internal/logging"
)

// Keymap binds key combinations to commands.
type Keymap interface {
	RegisterKey(combo string, cmd command.Command) error
}

// Menu binds menu paths to command names.
type Menu interface {
	RegisterMenuItem(path, commandName string) error
}

// MenuRoot prefixes every menu path.
const MenuRoot = "menubar/"

// Metadata describes a command being registered.
type Metadata struct {
	Key       string
	Menu      string
	Icon      string
	Scope     string
	Sensitive bool
	Primitive bool
	Inputs    []command.InputKind
	Output    command.OutputKind
}

// Registrar publishes commands to a registry and binds their keys and menus.
type Registrar struct {
	registry *command.Registry
	keymap   Keymap
	menu     Menu
	history  *command.History

	mu       sync.Mutex
	builders map[string]*Builder
	metadata map[string]Metadata
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithHistory sets the history wrappers record into when the invoking
// context carries none.
func WithHistory(h *command.History) Option {
	return func(r *Registrar) { r.history = h }
}

// New creates a registrar. keymap and menu may be nil.
func New(reg *command.Registry, keymap Keymap, menu Menu, opts ...Option) *Registrar {
	r := &Registrar{
		registry: reg,
		keymap:   keymap,
		menu:     menu,
		builders: make(map[string]*Builder),
		metadata: make(map[string]Metadata),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = command.NewHistory(command.DefaultHistoryMax)
	}
	return r
}

// Registry returns the registry commands are published to.
func (r *Registrar) Registry() *command.Registry { return r.registry }

// History returns the fallback history.
func (r *Registrar) History() *command.History { return r.history }

// For returns the builder for owner, creating it on first use.
func (r *Registrar) For(owner string) *Builder {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.builders[owner]; ok {
		return b
	}
	b := &Builder{
		r:       r,
		owner:   owner,
		methods: make(map[string]command.Func),
	}
	r.builders[owner] = b
	return b
}

// Metadata returns the metadata a command was registered with.
func (r *Registrar) Metadata(name string) (Metadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.metadata[name]
	return m, ok
}

// RegisterCommand publishes handler under name without a registration block.
// The returned command runs handler through the recording wrapper.
func (r *Registrar) RegisterCommand(name string, handler command.Func, meta Metadata) (*command.InlineCommand, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilMethod, name)
	}
	name = command.CleanName(name)

	var installed command.Func
	cmd, err := r.publish(name, meta, func(ctx context.Context) (string, error) {
		return installed(ctx)
	})
	installed = r.wrap(cmd, handler)
	return cmd, err
}

// publish builds the command, binds its key, publishes it and adds its menu
// item. The command is published even when key or menu binding fails.
func (r *Registrar) publish(name string, meta Metadata, block command.Func) (*command.InlineCommand, error) {
	cmd := command.NewInline(command.Base{
		Name:      name,
		Scope:     meta.Scope,
		Inputs:    append([]command.InputKind(nil), meta.Inputs...),
		Output:    meta.Output,
		Sensitive: meta.Sensitive,
	}, block)

	var errs []error
	if meta.Key != "" {
		cmd.Key = keySegment(meta.Key)
		if r.keymap != nil {
			if err := r.keymap.RegisterKey(cmd.Key, cmd); err != nil {
				errs = append(errs, fmt.Errorf("failed to bind key %q to %s: %w", cmd.Key, name, err))
			}
		}
	}

	if err := r.registry.Publish(cmd); err != nil {
		errs = append(errs, fmt.Errorf("failed to publish %s: %w", name, err))
	}

	if meta.Menu != "" && r.menu != nil {
		if err := r.menu.RegisterMenuItem(MenuRoot+meta.Menu, name); err != nil {
			errs = append(errs, fmt.Errorf("failed to add menu item %q for %s: %w", meta.Menu, name, err))
		}
	}

	r.mu.Lock()
	r.metadata[name] = meta
	r.mu.Unlock()

	logging.RegistrarDebug("registered %s (key=%q menu=%q inputs=%v output=%s)",
		name, cmd.Key, meta.Menu, meta.Inputs, meta.Output)
	return cmd, errors.Join(errs...)
}

// wrap returns method decorated with history recording and a suppression
// window that is closed on every exit path.
func (r *Registrar) wrap(cmd command.Command, method command.Func) command.Func {
	return func(ctx context.Context) (string, error) {
		hist := command.HistoryFromContext(ctx)
		if hist == nil {
			hist = r.history
			ctx = command.WithHistory(ctx, hist)
		}
		hist.Record(ctx, cmd)
		restore := hist.Suppress()
		defer restore()
		return method(ctx)
	}
}

// keySegment returns the key combination from a "Scope/Combo" annotation.
func keySegment(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
