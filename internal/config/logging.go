package config

import "editcmd/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty" env:"LEVEL"`    // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty" env:"FORMAT"` // json, console
	File       string          `yaml:"file" json:"file,omitempty" env:"FILE"`       // empty = stderr
	Disabled   bool            `yaml:"disabled" json:"disabled,omitempty" env:"DISABLED"`
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Disabled {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Options converts the config section for logging.Initialize.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
		Disabled:   c.Disabled,
	}
}
