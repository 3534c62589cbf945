package registrar

import (
	"context"
	"errors"
	"fmt"

	"editcmd/internal/command"
	"editcmd/internal/logging"
)

// Builder is the per-owner registration state: idle or defining. It is not
// safe for concurrent registration blocks.
type Builder struct {
	r     *Registrar
	owner string

	prefix   string
	defining bool
	pending  *Metadata
	errs     []error

	methods map[string]command.Func
}

// Owner returns the name commands defined by b are prefixed with.
func (b *Builder) Owner() string { return b.owner }

// Defining reports whether b is inside a UserCommands block.
func (b *Builder) Defining() bool { return b.defining }

// UserCommands sets the scope prefix "<owner>/<scope>", runs block in
// defining mode and returns any key, menu or publish failures from methods
// defined inside it. Defining mode ends even if block panics.
func (b *Builder) UserCommands(scope string, block func()) error {
	b.prefix = b.owner + "/" + scope
	b.start()
	defer b.stop()

	logging.RegistrarDebug("defining commands for %s", b.prefix)
	block()
	return errors.Join(b.errs...)
}

func (b *Builder) start() {
	b.pending = nil
	b.errs = nil
	b.defining = true
}

func (b *Builder) stop() {
	b.pending = nil
	b.defining = false
}

// Def defines method under name. Inside a UserCommands block the method is
// wrapped as a command named "<prefix>/<name>" using the pending
// annotations, which are then cleared. Outside a block the method is stored
// as is and only reachable through Call.
func (b *Builder) Def(name string, method command.Func) {
	if method == nil {
		if b.defining {
			b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrNilMethod, name))
		}
		return
	}
	if !b.defining {
		b.methods[name] = method
		return
	}

	var meta Metadata
	if b.pending != nil {
		meta = *b.pending
	}
	b.pending = nil

	cmd, err := b.r.publish(command.JoinName(b.prefix, name), meta, func(ctx context.Context) (string, error) {
		return b.Call(ctx, name)
	})
	if err != nil {
		b.errs = append(b.errs, err)
	}
	b.methods[name] = b.r.wrap(cmd, method)
}

// Call invokes the installed method, wrapped when it was defined inside a block.
func (b *Builder) Call(ctx context.Context, name string) (string, error) {
	m, ok := b.methods[name]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrMethodNotDefined, b.owner, name)
	}
	return m(ctx)
}

func (b *Builder) annotate(annotation string, apply func(*Metadata)) {
	if !b.defining {
		panic(&MisuseError{Owner: b.owner, Annotation: annotation})
	}
	if b.pending == nil {
		b.pending = &Metadata{}
	}
	apply(b.pending)
}

// Menu places the next command under "menubar/<path>".
func (b *Builder) Menu(path string) {
	b.annotate("menu", func(m *Metadata) { m.Menu = path })
}

func (b *Builder) Icon(icon string) {
	b.annotate("icon", func(m *Metadata) { m.Icon = icon })
}

// Key binds the next command; only the segment after the last "/" is the combination.
func (b *Builder) Key(key string) {
	b.annotate("key", func(m *Metadata) { m.Key = key })
}

func (b *Builder) Scope(scope string) {
	b.annotate("scope", func(m *Metadata) { m.Scope = scope })
}

func (b *Builder) Sensitive(sensitive bool) {
	b.annotate("sensitive", func(m *Metadata) { m.Sensitive = sensitive })
}

func (b *Builder) Primitive(primitive bool) {
	b.annotate("primitive", func(m *Metadata) { m.Primitive = primitive })
}

// Inputs sets the ordered input kinds: primary first, then the fallback.
func (b *Builder) Inputs(kinds ...command.InputKind) {
	b.annotate("inputs", func(m *Metadata) { m.Inputs = append([]command.InputKind(nil), kinds...) })
}

// Input sets a single input kind.
func (b *Builder) Input(kind command.InputKind) {
	b.annotate("input", func(m *Metadata) { m.Inputs = []command.InputKind{kind} })
}

func (b *Builder) Output(kind command.OutputKind) {
	b.annotate("output", func(m *Metadata) { m.Output = kind })
}
