package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured matches, through errors.Is, every ConfigError of category
// CategoryNotConfigured.
var ErrNotConfigured = errors.New("not configured")

// ErrorCategory classifies a ConfigError.
type ErrorCategory string

const (
	CategoryMissing       ErrorCategory = "missing"
	CategoryInvalid       ErrorCategory = "invalid"
	CategoryNotConfigured ErrorCategory = "not_configured"
)

// ConfigError reports a problem with one config path and how to fix it.
// Every path can also be set through its environment variable (see envVarFor).
//
//nolint:revive // config.ConfigError reads better at call sites than config.Error
type ConfigError struct {
	Category ErrorCategory
	Field    string // dotted config path, e.g. "introspec.contact.name"
	Message  string
	Action   string
	Details  []string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	if e.Category != "" {
		b.WriteString("config_" + string(e.Category) + ":")
	}
	for _, part := range []string{e.Field, e.Message, e.Action, strings.Join(e.Details, "; ")} {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(part)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrNotConfigured) hold for not-configured errors.
func (e *ConfigError) Is(target error) bool {
	return target == ErrNotConfigured && e.Category == CategoryNotConfigured
}

// NewMissingFieldError reports a required path that has no value.
func NewMissingFieldError(path string) *ConfigError {
	return &ConfigError{
		Category: CategoryMissing,
		Field:    path,
		Message:  "required",
		Action:   setAction(path),
	}
}

// NewInvalidFieldError reports a value outside validOptions, or otherwise malformed.
func NewInvalidFieldError(path, message string, validOptions ...string) *ConfigError {
	err := NewValidationError(path, message)
	if len(validOptions) > 0 {
		err.Action = "must be one of: " + strings.Join(validOptions, ", ")
	}
	return err
}

func NewValidationError(path, message string) *ConfigError {
	return &ConfigError{Category: CategoryInvalid, Field: path, Message: message}
}

// NewNotConfiguredError reports that feature is switched off although
// something depends on it. The fix is feature.enabled.
func NewNotConfiguredError(feature, message string) *ConfigError {
	if message == "" {
		message = "(optional)"
	}
	return &ConfigError{
		Category: CategoryNotConfigured,
		Field:    feature,
		Message:  message,
		Action:   "to enable: " + setAction(feature+".enabled"),
	}
}

// IsNotConfigured reports whether err, or any error it wraps, is ErrNotConfigured.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

func setAction(path string) string {
	return fmt.Sprintf("set %s env var or add %s to config.yaml", envVarFor(path), path)
}

// envVarFor maps a dotted config path to the environment variable that sets it.
func envVarFor(path string) string {
	return strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}
