package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"editcmd/internal/command"
	"editcmd/internal/logging"
	"editcmd/internal/registrar"
)

// Library owns the loaded bundles, publishes their commands and resolves
// bundle uuids for the shell environment.
type Library struct {
	mu       sync.RWMutex
	registry *command.Registry
	keymap   registrar.Keymap
	runner   *command.ShellRunner
	bundles  map[string]*Bundle // by dir
	byUUID   map[string]string  // bundle uuid -> dir
}

// NewLibrary creates a library publishing into reg. keymap may be nil.
// The runner may be attached later with SetRunner.
func NewLibrary(reg *command.Registry, keymap registrar.Keymap, runner *command.ShellRunner) *Library {
	return &Library{
		registry: reg,
		keymap:   keymap,
		runner:   runner,
		bundles:  make(map[string]*Bundle),
		byUUID:   make(map[string]string),
	}
}

// SetRunner sets the runner used for commands loaded after the call.
func (l *Library) SetRunner(r *command.ShellRunner) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runner = r
}

// BundleDir implements command.BundleLocator.
func (l *Library) BundleDir(bundleUUID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	dir, ok := l.byUUID[bundleUUID]
	return dir, ok
}

// Bundles returns the loaded bundles sorted by name.
func (l *Library) Bundles() []*Bundle {
	l.mu.RLock()
	out := make([]*Bundle, 0, len(l.bundles))
	for _, b := range l.bundles {
		out = append(out, b)
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Manifest.Name < out[j].Manifest.Name })
	return out
}

// Dirs returns the directories of the loaded bundles.
func (l *Library) Dirs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	dirs := make([]string, 0, len(l.bundles))
	for dir := range l.bundles {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// LoadRoots discovers and loads every bundle under roots. A bundle that
// fails to load does not stop the others; all failures are returned joined.
func (l *Library) LoadRoots(roots []string) error {
	dirs, err := Discover(roots)
	if err != nil {
		return err
	}
	var errs []error
	for _, dir := range dirs {
		if _, err := l.LoadBundle(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadBundle loads dir and publishes its commands, replacing any earlier
// load of the same directory.
func (l *Library) LoadBundle(dir string) (*Bundle, error) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	l.mu.RLock()
	runner := l.runner
	l.mu.RUnlock()

	b, err := Load(dir, runner)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	prev := l.bundles[dir]
	l.bundles[dir] = b
	l.byUUID[b.Manifest.UUID] = dir
	l.mu.Unlock()

	if prev != nil {
		l.unpublishMissing(prev, b)
	}

	var errs []error
	for _, cmd := range b.Commands {
		if err := l.publish(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return b, errors.Join(errs...)
}

// ReloadFile applies a change to one file inside a loaded bundle: a command
// file is reread and republished, overwriting the previous command; a
// removed command file unpublishes its command; a manifest change reloads
// the whole bundle.
func (l *Library) ReloadFile(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if filepath.Base(path) == ManifestFile {
		_, err := l.LoadBundle(filepath.Dir(path))
		return err
	}
	if !IsCommandFile(path) {
		return fmt.Errorf("%w: %s", ErrNotCommandFile, path)
	}

	dir := filepath.Dir(filepath.Dir(path))
	l.mu.RLock()
	b, ok := l.bundles[dir]
	runner := l.runner
	l.mu.RUnlock()
	if !ok {
		_, err := l.LoadBundle(dir)
		return err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		l.removeSource(b, path)
		return nil
	}

	s, err := ReadDefinition(path)
	if err != nil {
		return err
	}
	cmd := NewCommand(b.Manifest, s, runner)

	l.mu.Lock()
	old, had := b.sources[path]
	b.sources[path] = cmd.Name
	b.Commands = replaceCommand(b.Commands, old, cmd)
	l.mu.Unlock()

	if had && old != cmd.Name {
		l.registry.Remove(old)
	}
	logging.Bundles("reloaded %s from %s", cmd.Name, path)
	return l.publish(cmd)
}

func (l *Library) publish(cmd *command.ShellCommand) error {
	if err := l.registry.Publish(cmd); err != nil {
		return fmt.Errorf("failed to publish %s: %w", cmd.Name, err)
	}
	if cmd.Key != "" && l.keymap != nil {
		if err := l.keymap.RegisterKey(cmd.Key, cmd); err != nil {
			return fmt.Errorf("failed to bind key %q to %s: %w", cmd.Key, cmd.Name, err)
		}
	}
	return nil
}

func (l *Library) removeSource(b *Bundle, path string) {
	l.mu.Lock()
	name, ok := b.sources[path]
	delete(b.sources, path)
	if ok {
		b.Commands = replaceCommand(b.Commands, name, nil)
	}
	l.mu.Unlock()

	if ok && l.registry.Remove(name) {
		logging.Bundles("removed %s (%s deleted)", name, path)
	}
}

// unpublishMissing removes commands of prev that next no longer defines.
func (l *Library) unpublishMissing(prev, next *Bundle) {
	keep := make(map[string]struct{}, len(next.Commands))
	for _, cmd := range next.Commands {
		keep[cmd.Name] = struct{}{}
	}
	for _, cmd := range prev.Commands {
		if _, ok := keep[cmd.Name]; !ok {
			l.registry.Remove(cmd.Name)
		}
	}
}

// replaceCommand swaps the command named old for cmd, appending cmd when
// old is absent and dropping old when cmd is nil.
func replaceCommand(cmds []*command.ShellCommand, old string, cmd *command.ShellCommand) []*command.ShellCommand {
	out := cmds[:0:0]
	replaced := false
	for _, c := range cmds {
		if c.Name == old {
			if cmd != nil && !replaced {
				out = append(out, cmd)
				replaced = true
			}
			continue
		}
		out = append(out, c)
	}
	if cmd != nil && !replaced {
		out = append(out, cmd)
	}
	return out
}
