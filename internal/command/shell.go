package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"editcmd/internal/config"
	"editcmd/internal/logging"
	"editcmd/internal/surface"
	"editcmd/internal/tactile"
)

// BundleLocator resolves a bundle uuid to the bundle's directory.
type BundleLocator interface {
	BundleDir(bundleUUID string) (string, bool)
}

// ShellCommand is a command whose body is script text run as a subprocess.
type ShellCommand struct {
	Base

	// Script is the raw script text. A leading "#!" line selects the interpreter.
	Script string

	// TMUUID and BundleUUID identify the command and its bundle; they are
	// used only for environment staging.
	TMUUID     string
	BundleUUID string

	runner *ShellRunner
}

// NewShell creates a shell command run by runner.
func NewShell(base Base, script string, runner *ShellRunner) *ShellCommand {
	return &ShellCommand{Base: base, Script: script, runner: runner}
}

// SetRunner attaches the runner that executes the script.
func (c *ShellCommand) SetRunner(r *ShellRunner) { c.runner = r }

// Execute stages the environment, runs the script with Input(ws) on stdin
// and forwards non-empty stdout to the output. Non-empty stderr is logged
// and does not stop the output.
func (c *ShellCommand) Execute(ctx context.Context, ws surface.Workspace) error {
	_ = c.Base.Execute(ctx, ws)
	if c.runner == nil {
		return fmt.Errorf("%w: %s", ErrNoShellRunner, c.Name)
	}

	input := c.Input(ws)
	logging.ShellDebug("input: %s", input)

	res, err := c.runner.Run(ctx, c, ws, input)
	if err != nil {
		return err
	}
	logging.ShellDebug("output: %s", res.Stdout)

	if strings.TrimSpace(res.Stderr) != "" {
		logging.ShellError("shell command %s failed with error:\n%s", c.Name, res.Stderr)
	}
	if res.Killed {
		return fmt.Errorf("%w: %s: %s", ErrShellKilled, c.Name, res.KillReason)
	}
	if res.Stdout == "" {
		return nil
	}
	return c.DirectOutput(ws, c.Output, res.Stdout)
}

// ShellRunner writes scripts to the shared script path and runs them.
// Runs are serialized because every script goes through the same file.
type ShellRunner struct {
	mu       sync.Mutex
	executor tactile.Executor
	execCfg  config.ExecutionConfig
	support  config.SupportConfig
	timeout  time.Duration
	locator  BundleLocator
}

// NewShellRunner creates a runner from cfg. A nil executor gets a
// DirectExecutor configured from cfg; locator may be nil.
func NewShellRunner(cfg *config.Config, executor tactile.Executor, locator BundleLocator) *ShellRunner {
	if executor == nil {
		ec := tactile.DefaultExecutorConfig()
		ec.DefaultTimeout = cfg.GetExecutionTimeout()
		ec.MaxOutputBytes = cfg.Execution.MaxOutputBytes
		ec.InheritEnvironment = cfg.Execution.InheritEnvironment
		executor = tactile.NewDirectExecutorWithConfig(ec)
	}
	return &ShellRunner{
		executor: executor,
		execCfg:  cfg.Execution,
		support:  cfg.Support,
		timeout:  cfg.GetExecutionTimeout(),
		locator:  locator,
	}
}

// ScriptPath returns the absolute path scripts are written to.
func (r *ShellRunner) ScriptPath() (string, error) {
	return filepath.Abs(r.execCfg.ScriptPath)
}

// Run writes c's script, marks it executable and runs it with input on stdin.
func (r *ShellRunner) Run(ctx context.Context, c *ShellCommand, ws surface.Workspace, input string) (*tactile.ExecutionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, err := r.ScriptPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve script path: %w", err)
	}
	if err := writeScript(path, c.Script); err != nil {
		return nil, err
	}

	cmd := tactile.Command{
		Environment:    r.Environment(c, ws),
		Stdin:          input,
		Timeout:        r.timeout,
		MaxOutputBytes: r.execCfg.MaxOutputBytes,
		Tags:           map[string]string{"command": c.Name},
	}
	if strings.HasPrefix(c.Script, "#!") {
		cmd.Binary = path
	} else {
		cmd.Binary = r.execCfg.Shell
		cmd.Arguments = []string{path}
	}

	logging.Shell("running %s via %s", c.Name, cmd.Binary)
	res, err := r.executor.Execute(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShellFailed, c.Name, err)
	}
	if res.Error != "" {
		return res, fmt.Errorf("%w: %s: %s", ErrShellFailed, c.Name, res.Error)
	}
	return res, nil
}

func writeScript(path, script string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create script directory: %w", err)
	}
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	if err := os.WriteFile(path, []byte(script), 0770); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	// WriteFile leaves the mode of an existing file untouched.
	if err := os.Chmod(path, 0770); err != nil {
		return fmt.Errorf("failed to mark script executable: %w", err)
	}
	return nil
}

// Environment returns the KEY=VALUE overlay staged for c. Context variables
// describing the buffer are set only when the active surface is a text surface.
func (r *ShellRunner) Environment(c *ShellCommand, ws surface.Workspace) []string {
	rubyLib := r.support.RubyLib
	if abs, err := filepath.Abs(rubyLib); err == nil {
		rubyLib = abs
	}
	env := []string{
		"RUBYLIB=" + os.Getenv("RUBYLIB") + ":" + rubyLib,
		"TM_RUBY=" + r.support.Ruby,
	}
	if c.BundleUUID != "" && r.locator != nil {
		if dir, ok := r.locator.BundleDir(c.BundleUUID); ok {
			env = append(env, "TM_BUNDLE_SUPPORT="+filepath.Join(dir, "Support"))
		}
	}
	if c.TMUUID != "" {
		env = append(env, "TM_COMMAND_UUID="+c.TMUUID)
	}

	tab, ok := ActiveText(ws)
	if !ok {
		return env
	}
	env = append(env,
		"TM_CURRENT_LINE="+tab.Line(),
		"TM_LINE_INDEX="+strconv.Itoa(tab.CursorLineOffset()),
		"TM_LINE_NUMBER="+strconv.Itoa(tab.CursorLine()+1),
	)
	if tab.Selected() {
		env = append(env, "TM_SELECTED_TEXT="+tab.Selection())
	}
	if name := tab.Filename(); name != "" {
		env = append(env, "TM_DIRECTORY="+filepath.Dir(name), "TM_FILEPATH="+name)
	}
	if scoped, ok := tab.(surface.Scoped); ok && scoped.HasGrammar() {
		env = append(env, "TM_SCOPE="+scoped.ScopeAtCursor())
	}
	softTabs := "NO"
	if r.support.SoftTabs {
		softTabs = "YES"
	}
	env = append(env,
		"TM_SOFT_TABS="+softTabs,
		"TM_SUPPORT_PATH="+r.support.SupportPath,
		"TM_TAB_SIZE="+strconv.Itoa(r.support.TabSize),
	)
	return env
}
