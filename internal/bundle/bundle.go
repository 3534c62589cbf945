// Package bundle loads shell commands from YAML bundles on disk.
//
// A bundle is a directory holding a bundle.yaml manifest and a commands/
// directory with one YAML file per command:
//
//	Go.bundle/
//	  bundle.yaml        name, uuid, scope
//	  commands/
//	    gofmt.yaml       name, key, input, fallback_input, output, script
//	  Support/           exported as TM_BUNDLE_SUPPORT
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"editcmd/internal/command"
	"editcmd/internal/logging"
)

const (
	// ManifestFile names the bundle manifest inside a bundle directory.
	ManifestFile = "bundle.yaml"
	// CommandsDir holds the command files of a bundle.
	CommandsDir = "commands"
)

var (
	ErrNoManifest     = errors.New("bundle manifest not found")
	ErrUnnamedBundle  = errors.New("bundle has no name")
	ErrUnnamedCommand = errors.New("command has no name")
	ErrEmptyScript    = errors.New("command has no script")
	ErrNotCommandFile = errors.New("not a bundle command file")
)

// Manifest is the decoded bundle.yaml.
type Manifest struct {
	Name  string `yaml:"name"`
	UUID  string `yaml:"uuid,omitempty"`
	Scope string `yaml:"scope,omitempty"`
}

// Definition is one decoded command file.
type Definition struct {
	Name          string             `yaml:"name"`
	UUID          string             `yaml:"uuid,omitempty"`
	Scope         string             `yaml:"scope,omitempty"`
	Key           string             `yaml:"key,omitempty"`
	Input         command.InputKind  `yaml:"input,omitempty"`
	FallbackInput command.InputKind  `yaml:"fallback_input,omitempty"`
	Output        command.OutputKind `yaml:"output,omitempty"`
	Sensitive     bool               `yaml:"sensitive,omitempty"`
	Script        string             `yaml:"script"`
}

// Bundle is a loaded bundle directory.
type Bundle struct {
	Dir      string
	Manifest Manifest
	Commands []*command.ShellCommand

	// sources maps command files to the command name they define.
	sources map[string]string
}

// UUID returns the bundle uuid, derived from its name when the manifest has none.
func (b *Bundle) UUID() string { return b.Manifest.UUID }

// Source returns the file that defined the named command.
func (b *Bundle) Source(name string) (string, bool) {
	for path, n := range b.sources {
		if n == name {
			return path, true
		}
	}
	return "", false
}

// ReadManifest decodes dir/bundle.yaml, filling a missing uuid.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse %s: %w", filepath.Join(dir, ManifestFile), err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return m, fmt.Errorf("%w: %s", ErrUnnamedBundle, dir)
	}
	if m.UUID == "" {
		m.UUID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("editcmd:bundle/"+m.Name)).String()
	}
	return m, nil
}

// ReadDefinition decodes one command file.
func ReadDefinition(path string) (Definition, error) {
	var s Definition
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read command: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if strings.TrimSpace(s.Name) == "" {
		return s, fmt.Errorf("%w: %s", ErrUnnamedCommand, path)
	}
	if strings.TrimSpace(s.Script) == "" {
		return s, fmt.Errorf("%w: %s", ErrEmptyScript, path)
	}
	return s, nil
}

// NewCommand builds the shell command described by s inside bundle m.
// The command is named "<bundle>/<name>" and inherits the bundle scope
// when it declares none. A missing uuid is derived from the bundle uuid
// and the command name so it is stable across reloads.
func NewCommand(m Manifest, s Definition, runner *command.ShellRunner) *command.ShellCommand {
	scope := s.Scope
	if scope == "" {
		scope = m.Scope
	}

	var inputs []command.InputKind
	if s.Input != command.InputNone || s.FallbackInput != command.InputNone {
		inputs = append(inputs, s.Input)
		if s.FallbackInput != command.InputNone {
			inputs = append(inputs, s.FallbackInput)
		}
	}

	cmd := command.NewShell(command.Base{
		Name:      command.JoinName(m.Name, s.Name),
		Scope:     scope,
		Key:       s.Key,
		Inputs:    inputs,
		Output:    s.Output,
		Sensitive: s.Sensitive,
	}, s.Script, runner)

	cmd.BundleUUID = m.UUID
	cmd.TMUUID = s.UUID
	if cmd.TMUUID == "" {
		ns, err := uuid.Parse(m.UUID)
		if err != nil {
			ns = uuid.NameSpaceURL
		}
		cmd.TMUUID = uuid.NewSHA1(ns, []byte(s.Name)).String()
	}
	return cmd
}

// IsCommandFile reports whether path names a command file of some bundle.
func IsCommandFile(path string) bool {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	return filepath.Base(filepath.Dir(path)) == CommandsDir
}

// Load reads the bundle in dir. Command files that fail to decode are
// logged and skipped; only a missing or invalid manifest fails the load.
func Load(dir string, runner *command.ShellRunner) (*Bundle, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Dir: dir, Manifest: m, sources: make(map[string]string)}

	paths, err := commandFiles(filepath.Join(dir, CommandsDir))
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		s, err := ReadDefinition(path)
		if err != nil {
			logging.BundlesWarn("skipping %s: %v", path, err)
			continue
		}
		cmd := NewCommand(m, s, runner)
		b.Commands = append(b.Commands, cmd)
		b.sources[path] = cmd.Name
	}

	logging.Bundles("loaded bundle %s (%d commands) from %s", m.Name, len(b.Commands), dir)
	return b, nil
}

func commandFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() || !IsCommandFile(path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// Discover returns the bundle directories under roots: a root that holds a
// manifest is itself a bundle, otherwise its immediate subdirectories with
// a manifest are. Missing roots are skipped.
func Discover(roots []string) ([]string, error) {
	var dirs []string
	for _, root := range roots {
		if hasManifest(root) {
			dirs = append(dirs, root)
			continue
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logging.BundlesDebug("bundle root %s does not exist", root)
				continue
			}
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
		for _, e := range entries {
			dir := filepath.Join(root, e.Name())
			if e.IsDir() && hasManifest(dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs, nil
}

func hasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFile))
	return err == nil && !info.IsDir()
}
