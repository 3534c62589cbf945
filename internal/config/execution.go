package config

// ExecutionConfig configures how shell commands are spawned.
type ExecutionConfig struct {
	// Fixed path the command script is written to before each run.
	ScriptPath string `yaml:"script_path" json:"script_path,omitempty" env:"SCRIPT_PATH"`

	// Interpreter for scripts without a shebang line.
	Shell string `yaml:"shell" json:"shell,omitempty" env:"SHELL"`

	// Default timeout for commands
	DefaultTimeout string `yaml:"default_timeout" json:"default_timeout,omitempty" env:"TIMEOUT"`

	// Per-stream capture limit for stdout and stderr.
	MaxOutputBytes int64 `yaml:"max_output_bytes" json:"max_output_bytes,omitempty" env:"MAX_OUTPUT_BYTES"`

	// Pass the ambient process environment to children under the overlay.
	InheritEnvironment bool `yaml:"inherit_env" json:"inherit_env,omitempty" env:"INHERIT_ENV"`
}

// SupportConfig holds the fixed values staged into every shell command environment.
type SupportConfig struct {
	Ruby        string `yaml:"ruby" json:"ruby,omitempty" env:"RUBY"`
	RubyLib     string `yaml:"ruby_lib" json:"ruby_lib,omitempty" env:"RUBY_LIB"`
	SupportPath string `yaml:"support_path" json:"support_path,omitempty" env:"PATH"`
	TabSize     int    `yaml:"tab_size" json:"tab_size,omitempty" env:"TAB_SIZE"`
	SoftTabs    bool   `yaml:"soft_tabs" json:"soft_tabs,omitempty" env:"SOFT_TABS"`
}
