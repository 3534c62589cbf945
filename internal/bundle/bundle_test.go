package bundle

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editcmd/internal/bindings"
	"editcmd/internal/command"
	"editcmd/internal/config"
	"editcmd/internal/surface"
)

const manifest = `name: Go
uuid: 6f1a6a52-2c1e-4b5a-9d5f-0d4b7e0a1c11
scope: source.go
`

const upcaseCmd = `name: upcase
key: Ctrl+Alt+U
input: selected_text
fallback_input: word
output: replace_input
script: |
  tr a-z A-Z
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newBundleDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	writeFile(t, filepath.Join(dir, ManifestFile), manifest)
	writeFile(t, filepath.Join(dir, CommandsDir, "upcase.yaml"), upcaseCmd)
	return dir
}

func TestLoadBundle(t *testing.T) {
	dir := newBundleDir(t, t.TempDir(), "Go.bundle")
	writeFile(t, filepath.Join(dir, CommandsDir, "README.md"), "not a command")
	writeFile(t, filepath.Join(dir, CommandsDir, "broken.yaml"), "name: broken\n")

	b, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "Go", b.Manifest.Name)
	require.Len(t, b.Commands, 1, "unparseable and non-yaml files are skipped")

	cmd := b.Commands[0]
	assert.Equal(t, "Go/upcase", cmd.Name)
	assert.Equal(t, "source.go", cmd.Scope)
	assert.Equal(t, "Ctrl+Alt+U", cmd.Key)
	assert.Equal(t, []command.InputKind{command.InputSelectedText, command.InputWord}, cmd.Inputs)
	assert.Equal(t, command.OutputReplaceInput, cmd.Output)
	assert.Equal(t, "tr a-z A-Z\n", cmd.Script)
	assert.Equal(t, "6f1a6a52-2c1e-4b5a-9d5f-0d4b7e0a1c11", cmd.BundleUUID)

	src, ok := b.Source("Go/upcase")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, CommandsDir, "upcase.yaml"), src)
}

func TestDerivedUUIDsAreStable(t *testing.T) {
	m := Manifest{Name: "Go", UUID: "6f1a6a52-2c1e-4b5a-9d5f-0d4b7e0a1c11"}
	a := NewCommand(m, Definition{Name: "fmt", Script: "gofmt"}, nil)
	b := NewCommand(m, Definition{Name: "fmt", Script: "gofmt -s"}, nil)
	c := NewCommand(m, Definition{Name: "vet", Script: "go vet"}, nil)

	assert.Equal(t, a.TMUUID, b.TMUUID)
	assert.NotEqual(t, a.TMUUID, c.TMUUID)
	_, err := uuid.Parse(a.TMUUID)
	assert.NoError(t, err)

	explicit := NewCommand(m, Definition{Name: "fmt", UUID: "fixed", Script: "x"}, nil)
	assert.Equal(t, "fixed", explicit.TMUUID)
}

func TestReadManifestDerivesUUID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), "name: Text\n")

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte("editcmd:bundle/Text")).String(), m.UUID)
}

func TestReadManifestErrors(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.ErrorIs(t, err, ErrNoManifest)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), "scope: text\n")
	_, err = ReadManifest(dir)
	assert.ErrorIs(t, err, ErrUnnamedBundle)
}

func TestReadDefinitionErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]struct {
		content string
		want    error
	}{
		"no name":   {"script: echo\n", ErrUnnamedCommand},
		"no script": {"name: x\n", ErrEmptyScript},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			writeFile(t, path, tt.content)
			_, err := ReadDefinition(path)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown output kind", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		writeFile(t, path, "name: x\nscript: echo\noutput: explode\n")
		_, err := ReadDefinition(path)
		assert.ErrorIs(t, err, command.ErrUnknownOutputKind)
	})
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	a := newBundleDir(t, root, "A.bundle")
	b := newBundleDir(t, root, "B.bundle")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-bundle"), 0755))

	dirs, err := Discover([]string{root, a, filepath.Join(root, "missing")})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, a}, dirs)
}

func TestIsCommandFile(t *testing.T) {
	assert.True(t, IsCommandFile("/x/Go/commands/fmt.yaml"))
	assert.True(t, IsCommandFile("/x/Go/commands/fmt.yml"))
	assert.False(t, IsCommandFile("/x/Go/commands/fmt.json"))
	assert.False(t, IsCommandFile("/x/Go/bundle.yaml"))
}

func TestLibraryPublishesAndLocates(t *testing.T) {
	root := t.TempDir()
	dir := newBundleDir(t, root, "Go.bundle")

	reg := command.NewRegistry()
	keys := bindings.NewKeymap()
	lib := NewLibrary(reg, keys, nil)
	require.NoError(t, lib.LoadRoots([]string{root}))

	assert.Equal(t, []string{"Go/upcase"}, reg.Names())
	bound, ok := keys.Lookup("ctrl+alt+U")
	require.True(t, ok)
	assert.Equal(t, "Go/upcase", bound.Meta().Name)

	got, ok := lib.BundleDir("6f1a6a52-2c1e-4b5a-9d5f-0d4b7e0a1c11")
	require.True(t, ok)
	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, got)
	require.Len(t, lib.Bundles(), 1)
}

func TestLibraryReloadFile(t *testing.T) {
	dir := newBundleDir(t, t.TempDir(), "Go.bundle")
	reg := command.NewRegistry()
	lib := NewLibrary(reg, nil, nil)
	_, err := lib.LoadBundle(dir)
	require.NoError(t, err)

	before, _ := reg.Lookup("Go/upcase")
	path := filepath.Join(dir, CommandsDir, "upcase.yaml")

	t.Run("edit overwrites", func(t *testing.T) {
		writeFile(t, path, "name: upcase\noutput: show_as_tool_tip\nscript: echo hi\n")
		require.NoError(t, lib.ReloadFile(path))
		after, ok := reg.Lookup("Go/upcase")
		require.True(t, ok)
		assert.NotSame(t, before, after)
		assert.Equal(t, command.OutputShowAsToolTip, after.Meta().Output)
		assert.Equal(t, 1, reg.Count())
	})

	t.Run("rename replaces entry", func(t *testing.T) {
		writeFile(t, path, "name: shout\nscript: echo hi\n")
		require.NoError(t, lib.ReloadFile(path))
		assert.Equal(t, []string{"Go/shout"}, reg.Names())
	})

	t.Run("new file publishes", func(t *testing.T) {
		added := filepath.Join(dir, CommandsDir, "date.yaml")
		writeFile(t, added, "name: date\nscript: date\n")
		require.NoError(t, lib.ReloadFile(added))
		assert.Equal(t, []string{"Go/date", "Go/shout"}, reg.Names())
	})

	t.Run("delete unpublishes", func(t *testing.T) {
		require.NoError(t, os.Remove(path))
		require.NoError(t, lib.ReloadFile(path))
		assert.Equal(t, []string{"Go/date"}, reg.Names())
	})

	t.Run("other files are rejected", func(t *testing.T) {
		assert.ErrorIs(t, lib.ReloadFile(filepath.Join(dir, "notes.txt")), ErrNotCommandFile)
	})
}

func TestLibraryManifestReloadDropsRemovedCommands(t *testing.T) {
	dir := newBundleDir(t, t.TempDir(), "Go.bundle")
	reg := command.NewRegistry()
	lib := NewLibrary(reg, nil, nil)
	_, err := lib.LoadBundle(dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, ManifestFile), "name: Golang\n")
	require.NoError(t, lib.ReloadFile(filepath.Join(dir, ManifestFile)))
	assert.Equal(t, []string{"Golang/upcase"}, reg.Names())
}

func TestBundleCommandRunsWithSupportDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	root := t.TempDir()
	dir := newBundleDir(t, root, "Go.bundle")
	writeFile(t, filepath.Join(dir, CommandsDir, "support.yaml"),
		"name: support\noutput: insert_as_text\nscript: printf '%s' \"$TM_BUNDLE_SUPPORT\"\n")

	cfg := config.DefaultConfig()
	cfg.Execution.ScriptPath = filepath.Join(t.TempDir(), "tmp.command")
	cfg.Execution.DefaultTimeout = "10s"

	reg := command.NewRegistry()
	lib := NewLibrary(reg, nil, nil)
	lib.SetRunner(command.NewShellRunner(cfg, nil, lib))
	require.NoError(t, lib.LoadRoots([]string{root}))

	buf := surface.NewBuffer("")
	d := command.NewDispatcher(reg, nil, surface.NewPane(buf))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	res := d.ExecuteByName(ctx, "Go/support")
	require.True(t, res.OK(), "%v", res.Err)

	abs, _ := filepath.Abs(dir)
	assert.Equal(t, filepath.Join(abs, "Support"), buf.Text())
}
