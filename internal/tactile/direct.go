package tactile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"editcmd/internal/logging"
)

// ErrEmptyBinary is returned by Validate for a command without a binary.
var ErrEmptyBinary = errors.New("binary is required")

// waitDelay bounds how long Wait holds on to I/O after the process is gone.
const waitDelay = 2 * time.Second

// DirectExecutor executes commands directly on the host using os/exec.
type DirectExecutor struct {
	config ExecutorConfig
}

// NewDirectExecutor creates a new direct executor with default config.
func NewDirectExecutor() *DirectExecutor {
	return NewDirectExecutorWithConfig(DefaultExecutorConfig())
}

// NewDirectExecutorWithConfig creates a new direct executor with custom config.
func NewDirectExecutorWithConfig(config ExecutorConfig) *DirectExecutor {
	logging.ShellDebug("Creating DirectExecutor with config: timeout=%s, maxOutput=%d bytes, inheritEnv=%v",
		config.DefaultTimeout, config.MaxOutputBytes, config.InheritEnvironment)
	return &DirectExecutor{config: config}
}

// Capabilities returns what this executor supports.
func (e *DirectExecutor) Capabilities() ExecutorCapabilities {
	return ExecutorCapabilities{
		Name:           "direct",
		Platform:       runtime.GOOS,
		SupportsStdin:  true,
		MaxTimeout:     e.config.MaxTimeout,
		DefaultTimeout: e.config.DefaultTimeout,
	}
}

// Validate checks if a command can be executed.
func (e *DirectExecutor) Validate(cmd Command) error {
	if cmd.Binary == "" {
		return ErrEmptyBinary
	}
	for _, kv := range cmd.Environment {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("environment entry %q is not KEY=VALUE", kv)
		}
	}
	return nil
}

// Execute runs a command directly on the host. Standard input is written
// while both output streams are drained, so neither side can stall on a
// full pipe buffer.
func (e *DirectExecutor) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	timer := logging.StartTimer(logging.CategoryShell, "Direct command execution")
	defer timer.Stop()

	if err := e.Validate(cmd); err != nil {
		logging.ShellWarn("Command validation failed: %s %v - %v", cmd.Binary, cmd.Arguments, err)
		return nil, err
	}

	cmd = e.config.Merge(cmd)
	logging.ShellDebug("Executing: %s (dir=%s, timeout=%s, stdin=%d bytes, overlay=%d vars)",
		cmd.CommandString(), cmd.WorkingDirectory, cmd.Timeout, len(cmd.Stdin), len(cmd.Environment))

	result := &ExecutionResult{
		ExitCode: -1,
		Command:  &cmd,
	}

	execCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = e.buildEnvironment(cmd.Environment)
	execCmd.WaitDelay = waitDelay
	setupProcessGroup(execCmd)
	execCmd.Cancel = func() error { return killProcessGroup(execCmd) }

	stdin, stdout, stderr, err := pipes(execCmd)
	if err != nil {
		result.Error = err.Error()
		logging.ShellError("Command pipe setup failed: %s - %v", cmd.Binary, err)
		return result, nil
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: cmd.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: cmd.MaxOutputBytes}

	result.StartedAt = time.Now()
	if err := execCmd.Start(); err != nil {
		result.FinishedAt = time.Now()
		result.Error = err.Error()
		logging.ShellError("Command failed to start: %s - %v", cmd.Binary, err)
		return result, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		defer stdin.Close()
		if cmd.Stdin == "" {
			return nil
		}
		if _, err := io.WriteString(stdin, cmd.Stdin); err != nil {
			// The child may exit without reading its input.
			logging.ShellDebug("stdin write stopped early: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := io.Copy(stdoutLimited, stdout); err != nil {
			return fmt.Errorf("failed to read stdout: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := io.Copy(stderrLimited, stderr); err != nil {
			return fmt.Errorf("failed to read stderr: %w", err)
		}
		return nil
	})

	drainErr := g.Wait()
	err = execCmd.Wait()

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		logging.ShellWarn("Command output truncated: %d bytes discarded", result.TruncatedBytes)
	}

	switch {
	case err != nil && errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", cmd.Timeout)
		result.Success = true
		logging.ShellWarn("Command killed (timeout): %s after %s", cmd.Binary, cmd.Timeout)
	case err != nil && ctx.Err() != nil:
		result.Killed = true
		result.KillReason = "context canceled"
		result.Success = true
		logging.ShellDebug("Command canceled: %s", cmd.Binary)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Success = true
			result.ExitCode = exitErr.ExitCode()
			logging.ShellDebug("Command exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
		} else {
			result.Error = err.Error()
			logging.ShellError("Command failed: %s - %v", cmd.Binary, err)
			return result, nil
		}
	default:
		result.Success = true
		result.ExitCode = 0
	}

	if drainErr != nil && !result.Killed {
		result.Error = drainErr.Error()
		logging.ShellWarn("Command output drain failed: %s - %v", cmd.Binary, drainErr)
	}

	logging.ShellDebug("Command completed: %s -> exit=%d, duration=%s, stdout=%d bytes, stderr=%d bytes",
		cmd.Binary, result.ExitCode, result.Duration, len(result.Stdout), len(result.Stderr))

	return result, nil
}

func pipes(c *exec.Cmd) (io.WriteCloser, io.ReadCloser, io.ReadCloser, error) {
	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open stdin: %w", err)
	}
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open stderr: %w", err)
	}
	return stdin, stdout, stderr, nil
}

// buildEnvironment creates the child environment: the ambient (or allowed)
// variables with overlay applied on top. The parent process is untouched.
func (e *DirectExecutor) buildEnvironment(overlay []string) []string {
	var base []string
	if e.config.InheritEnvironment {
		base = os.Environ()
	} else {
		for _, key := range e.config.AllowedEnvironment {
			if val, ok := os.LookupEnv(key); ok {
				base = append(base, key+"="+val)
			}
		}
	}
	return MergeEnvironment(base, overlay)
}

// MergeEnvironment returns base with every KEY=VALUE in overlay applied.
// Keys keep their first position; the last value for a key wins.
func MergeEnvironment(base, overlay []string) []string {
	index := make(map[string]int, len(base)+len(overlay))
	out := make([]string, 0, len(base)+len(overlay))
	for _, list := range [][]string{base, overlay} {
		for _, kv := range list {
			key, _, _ := strings.Cut(kv, "=")
			if i, ok := index[key]; ok {
				out[i] = kv
				continue
			}
			index[key] = len(out)
			out = append(out, kv)
		}
	}
	return out
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil // Pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // Return original length to avoid "short write" errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
