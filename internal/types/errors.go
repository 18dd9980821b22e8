package types

import (
	"fmt"
)

// ConfigError reports an invalid invocation detected before traversal starts.
// It is the only error class that aborts a run.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigError constructs a ConfigError for field.
func NewConfigError(field string, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (configError *ConfigError) Error() string {
	message := fmt.Sprintf("invalid %s: %s", configError.Field, configError.Reason)
	if configError.Err != nil {
		message += ": " + configError.Err.Error()
	}
	return message
}

func (configError *ConfigError) Unwrap() error {
	return configError.Err
}

// IOWarning reports a filesystem entry that could not be read.
// Warnings are logged and never propagated past the entry they describe.
type IOWarning struct {
	Path      string
	Operation string
	Err       error
}

func (warning *IOWarning) Error() string {
	return fmt.Sprintf("%s %s: %v", warning.Operation, warning.Path, warning.Err)
}

func (warning *IOWarning) Unwrap() error {
	return warning.Err
}
