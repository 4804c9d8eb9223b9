package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Placeholder strategies for exported collections
const (
	PlaceholdersSequential = "sequential"
	PlaceholdersFake       = "fake"
)

// DefaultIntrospecPath is where documentation endpoints are mounted when no path is configured.
const DefaultIntrospecPath = "/_introspec"

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// configValidator reports field errors by their koanf path segment.
func configValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValidator
}

func Validate(cfg *Config) error {
	if err := validateApp(&cfg.App); err != nil {
		return fmt.Errorf("app config: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if cfg.Introspec.Enabled {
		if err := ValidateIntrospec(&cfg.Introspec); err != nil {
			return fmt.Errorf("introspec config: %w", err)
		}
	}

	return nil
}

// validateApp requires Name and Version to be non-empty and Env to be one of
// EnvDevelopment, EnvStaging, or EnvProduction.
func validateApp(cfg *AppConfig) error {
	if cfg.Name == "" {
		return NewMissingFieldError("app.name")
	}

	if cfg.Version == "" {
		return NewMissingFieldError("app.version")
	}

	validEnvs := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(validEnvs, cfg.Env) {
		return NewInvalidFieldError("app.env", fmt.Sprintf("invalid environment: %s", cfg.Env), validEnvs...)
	}

	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return NewValidationError("server.port", fmt.Sprintf("invalid port: %d (must be 1-65535)", cfg.Port))
	}

	if cfg.Timeout.Read <= 0 {
		return NewValidationError("server.timeout.read", "read timeout must be positive")
	}

	if cfg.Timeout.Write <= 0 {
		return NewValidationError("server.timeout.write", "write timeout must be positive")
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if cfg.Level == "" {
		return nil
	}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Level)) {
		return NewInvalidFieldError("log.level", fmt.Sprintf("invalid log level: %s", cfg.Level), validLogLevels...)
	}
	return nil
}

// ValidateIntrospec checks the documentation settings. The first failing field
// is reported as a *ConfigError naming its config path.
func ValidateIntrospec(cfg *IntrospecConfig) error {
	if cfg == nil {
		return NewMissingFieldError("introspec")
	}

	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("introspec", err.Error())
	}

	fe := fieldErrs[0]
	path := introspecPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(path)
	case "oneof":
		return NewInvalidFieldError(path, fmt.Sprintf("invalid value: %v", fe.Value()), strings.Fields(fe.Param())...)
	case "startswith":
		return NewValidationError(path, fmt.Sprintf("must start with %q", fe.Param()))
	default:
		return NewValidationError(path, fmt.Sprintf("must be a valid %s", fe.Tag()))
	}
}

// introspecPath turns a validator namespace such as "IntrospecConfig.contact.name"
// into the config path "introspec.contact.name".
func introspecPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return "introspec"
	}
	return "introspec." + rest
}
