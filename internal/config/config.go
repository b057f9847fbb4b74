// Package config defines the runtime configuration shared by all commands.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the options resolved from flags and environment variables.
type Config struct {
	// Common flags
	KeyFile       string `mapstructure:"key-file"    validate:"required"`
	Parallel      int    `validate:"min=1"`
	EncryptSuffix string `mapstructure:"encrypt-ext" validate:"required"`
	DecryptSuffix string `mapstructure:"decrypt-ext"`
	Quiet         bool
	Delete        bool
	Stats         bool

	// Command-specific flags
	Decrypt bool

	// Positional arguments
	Files []string `validate:"min=1"`
}

// Validate validates the configuration against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}
