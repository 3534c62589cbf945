package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all editcmd configuration.
type Config struct {
	// Execution settings for shell commands
	Execution ExecutionConfig `yaml:"execution" envPrefix:"EDITCMD_EXECUTION_"`

	// Support values staged into the shell command environment
	Support SupportConfig `yaml:"support" envPrefix:"EDITCMD_SUPPORT_"`

	// Command history
	History HistoryConfig `yaml:"history" envPrefix:"EDITCMD_HISTORY_"`

	// Shell command bundles
	Bundles BundlesConfig `yaml:"bundles" envPrefix:"EDITCMD_BUNDLES_"`

	// Logging
	Logging LoggingConfig `yaml:"logging" envPrefix:"EDITCMD_LOG_"`
}

// HistoryConfig configures the executed-command history.
type HistoryConfig struct {
	// Max entries kept in memory; the oldest are evicted past this.
	Max int `yaml:"max" env:"MAX"`

	// Persist recorded entries to DatabasePath.
	Persist bool `yaml:"persist" env:"PERSIST"`

	DatabasePath string `yaml:"database_path" env:"DB"`
}

// BundlesConfig locates YAML shell command bundles.
type BundlesConfig struct {
	Dirs          []string `yaml:"dirs" env:"DIRS" envSeparator:":"`
	Watch         bool     `yaml:"watch" env:"WATCH"`
	WatchDebounce string   `yaml:"watch_debounce" env:"WATCH_DEBOUNCE"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Execution: ExecutionConfig{
			ScriptPath:         filepath.Join("cache", "tmp.command"),
			Shell:              "/bin/sh",
			DefaultTimeout:     "30s",
			MaxOutputBytes:     1 << 20,
			InheritEnvironment: true,
		},
		Support: SupportConfig{
			Ruby:        "/usr/bin/ruby",
			RubyLib:     "textmate/Support/lib",
			SupportPath: "textmate/Support",
			TabSize:     2,
			SoftTabs:    true,
		},
		History: HistoryConfig{
			Max:          50,
			DatabasePath: filepath.Join("cache", "history.db"),
		},
		Bundles: BundlesConfig{
			Dirs:          []string{"bundles"},
			WatchDebounce: "500ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; env overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies EDITCMD_* environment variables on top of the file values.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Execution.ScriptPath == "" {
		return fmt.Errorf("execution.script_path must not be empty")
	}
	if c.Execution.Shell == "" {
		return fmt.Errorf("execution.shell must not be empty")
	}
	if _, err := time.ParseDuration(c.Execution.DefaultTimeout); err != nil {
		return fmt.Errorf("invalid execution.default_timeout %q: %w", c.Execution.DefaultTimeout, err)
	}
	if c.History.Max < 0 {
		return fmt.Errorf("history.max must not be negative, got %d", c.History.Max)
	}
	if c.History.Persist && c.History.DatabasePath == "" {
		return fmt.Errorf("history.database_path is required when history.persist is set")
	}
	return nil
}

// GetExecutionTimeout returns the default execution timeout as a duration.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Execution.DefaultTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWatchDebounce returns the bundle watcher debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Bundles.WatchDebounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
