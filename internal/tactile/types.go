// Package tactile runs external processes on behalf of shell commands.
// It feeds standard input, drains standard output and standard error
// concurrently, passes a per-call environment overlay to the child and
// enforces a timeout.
package tactile

import (
	"strings"
	"time"
)

// Command represents a process to be executed.
type Command struct {
	// Binary is the executable to run (e.g., "/bin/sh" or a script path).
	Binary string `json:"binary"`

	// Arguments are the command-line arguments.
	Arguments []string `json:"arguments"`

	// WorkingDirectory is the directory to execute in.
	// If empty, uses the executor's default working directory.
	WorkingDirectory string `json:"working_directory,omitempty"`

	// Environment is an overlay in KEY=VALUE form applied on top of the
	// executor's base environment for this process only. Later entries win.
	Environment []string `json:"environment,omitempty"`

	// Stdin is written to the process's standard input, which is then closed.
	Stdin string `json:"stdin,omitempty"`

	// Timeout bounds wall time. Zero means use the executor's default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxOutputBytes caps each captured stream. Zero means use the executor's default.
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`

	// Tags are arbitrary key-value pairs carried into log lines.
	Tags map[string]string `json:"tags,omitempty"`
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// ExecutionResult is the output of a process execution.
type ExecutionResult struct {
	// Success indicates the process was started and reaped.
	// A process that exits non-zero still has Success=true.
	Success bool `json:"success"`

	// ExitCode is the process exit code (-1 if not available).
	ExitCode int `json:"exit_code"`

	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`

	// Killed indicates the process was terminated by timeout or cancellation.
	Killed     bool   `json:"killed"`
	KillReason string `json:"kill_reason,omitempty"`

	// Truncated indicates output was cut at the size limit.
	Truncated      bool  `json:"truncated"`
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	// Error contains any infrastructure-level error message.
	Error string `json:"error,omitempty"`

	// Command is a copy of the command that was executed.
	Command *Command `json:"command,omitempty"`
}

// IsError returns true if the execution failed (infrastructure error).
func (r *ExecutionResult) IsError() bool {
	return !r.Success || r.Error != ""
}

// IsNonZeroExit returns true if the command ran but returned non-zero.
func (r *ExecutionResult) IsNonZeroExit() bool {
	return r.Success && r.ExitCode != 0
}

// Output returns Stdout and Stderr joined by a newline when both are set.
func (r *ExecutionResult) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// ExecutorCapabilities describes what an executor can do.
type ExecutorCapabilities struct {
	Name           string        `json:"name"`
	Platform       string        `json:"platform"`
	SupportsStdin  bool          `json:"supports_stdin"`
	MaxTimeout     time.Duration `json:"max_timeout"`
	DefaultTimeout time.Duration `json:"default_timeout"`
}

// ExecutorConfig is the configuration for creating executors.
type ExecutorConfig struct {
	// DefaultWorkingDir is used when Command.WorkingDirectory is empty.
	DefaultWorkingDir string `json:"default_working_dir"`

	// DefaultTimeout is used when no timeout is specified.
	DefaultTimeout time.Duration `json:"default_timeout"`

	// MaxTimeout caps all timeout values (0 = uncapped).
	MaxTimeout time.Duration `json:"max_timeout"`

	// MaxOutputBytes caps capture of each stream.
	MaxOutputBytes int64 `json:"max_output_bytes"`

	// InheritEnvironment starts children from the full ambient environment.
	// When false only AllowedEnvironment is passed through.
	InheritEnvironment bool `json:"inherit_environment"`

	// AllowedEnvironment lists variables passed through when not inheriting.
	AllowedEnvironment []string `json:"allowed_environment"`
}

// DefaultExecutorConfig returns sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DefaultWorkingDir:  ".",
		DefaultTimeout:     30 * time.Second,
		MaxTimeout:         10 * time.Minute,
		MaxOutputBytes:     10 * 1024 * 1024, // 10MB
		InheritEnvironment: true,
		AllowedEnvironment: []string{"PATH", "HOME", "USER", "LANG", "LC_ALL", "SHELL", "TMPDIR"},
	}
}

// Merge combines this config with command-specific settings.
// Command settings override config defaults.
func (c ExecutorConfig) Merge(cmd Command) Command {
	result := cmd

	if result.WorkingDirectory == "" {
		result.WorkingDirectory = c.DefaultWorkingDir
	}
	if result.Timeout <= 0 {
		result.Timeout = c.DefaultTimeout
	}
	if c.MaxTimeout > 0 && result.Timeout > c.MaxTimeout {
		result.Timeout = c.MaxTimeout
	}
	if result.MaxOutputBytes <= 0 {
		result.MaxOutputBytes = c.MaxOutputBytes
	}

	return result
}
