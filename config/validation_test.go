package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIntrospec() *IntrospecConfig {
	return &IntrospecConfig{
		Enabled:     true,
		Path:        DefaultIntrospecPath,
		Description: "Order management",
		Contact:     ContactConfig{Name: "Platform team"},
	}
}

func TestValidateIntrospec(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*IntrospecConfig)
		field    string
		category ErrorCategory
	}{
		{name: "valid", mutate: func(*IntrospecConfig) {}},
		{
			name:     "missing description",
			mutate:   func(c *IntrospecConfig) { c.Description = "" },
			field:    "introspec.description",
			category: "missing",
		},
		{
			name:     "missing contact name",
			mutate:   func(c *IntrospecConfig) { c.Contact.Name = "" },
			field:    "introspec.contact.name",
			category: "missing",
		},
		{
			name:     "malformed contact email",
			mutate:   func(c *IntrospecConfig) { c.Contact.Email = "not-an-email" },
			field:    "introspec.contact.email",
			category: "invalid",
		},
		{
			name:     "relative path",
			mutate:   func(c *IntrospecConfig) { c.Path = "docs" },
			field:    "introspec.path",
			category: "invalid",
		},
		{
			name:     "unknown placeholder strategy",
			mutate:   func(c *IntrospecConfig) { c.Placeholders = "random" },
			field:    "introspec.placeholders",
			category: "invalid",
		},
		{
			name:     "negative cache size",
			mutate:   func(c *IntrospecConfig) { c.Cache.Size = -1 },
			field:    "introspec.cache.size",
			category: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validIntrospec()
			tt.mutate(cfg)

			err := ValidateIntrospec(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tt.category, cfgErr.Category)
		})
	}
}

func TestValidateIntrospecNil(t *testing.T) {
	err := ValidateIntrospec(nil)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, CategoryMissing, cfgErr.Category)
}

func TestValidateApp(t *testing.T) {
	err := validateApp(&AppConfig{Name: "svc", Version: "v1", Env: "qa"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of: development, staging, production")

	assert.NoError(t, validateApp(&AppConfig{Name: "svc", Version: "v1", Env: EnvProduction}))
}

func TestValidateLogLevel(t *testing.T) {
	assert.NoError(t, validateLog(&LogConfig{Level: "DEBUG"}))
	assert.Error(t, validateLog(&LogConfig{Level: "verbose"}))
}
