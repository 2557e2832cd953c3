// Package errors holds the sentinel errors shared across plugpub and helpers
// for wrapping them with context.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")

	// Config value errors.
	ErrInvalidSchemaVersion = fmt.Errorf("unsupported config schema version")
	ErrInvalidOutputFormat  = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrLogicalNameEmpty     = fmt.Errorf("plugin logical_name cannot be empty")
	ErrSourceEmpty          = fmt.Errorf("plugin source cannot be empty")
	ErrDestinationEmpty     = fmt.Errorf("plugin destination_dir cannot be empty")
	ErrDuplicateExport      = fmt.Errorf("duplicate export symbol")

	// CLI errors.
	ErrValidation = fmt.Errorf("validation failed")

	// Hook errors.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidSchemaVersionWithDetails reports a schema version outside the supported constraint.
func ErrInvalidSchemaVersionWithDetails(version, constraint string) error {
	return fmt.Errorf("%w: '%s', supported: %s", ErrInvalidSchemaVersion, version, constraint)
}

// ErrDuplicateExportWithName is a helper to create a wrapped error with the symbol name.
func ErrDuplicateExportWithName(name string) error {
	return fmt.Errorf("export '%s': %w", name, ErrDuplicateExport)
}
