package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the overall application configuration structure.
// It includes sections for application settings, server parameters,
// logging preferences and the documentation feature.
// The embedded koanf.Koanf instance allows for flexible access to
// additional custom configurations not explicitly defined in the struct.
type Config struct {
	App       AppConfig       `koanf:"app" json:"app" yaml:"app" toml:"app" mapstructure:"app"`
	Server    ServerConfig    `koanf:"server" json:"server" yaml:"server" toml:"server" mapstructure:"server"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log" toml:"log" mapstructure:"log"`
	Introspec IntrospecConfig `koanf:"introspec" json:"introspec" yaml:"introspec" toml:"introspec" mapstructure:"introspec"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-" toml:"-" mapstructure:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" toml:"name" mapstructure:"name"`
	Version string `koanf:"version" json:"version" yaml:"version" toml:"version" mapstructure:"version"`
	Env     string `koanf:"env" json:"env" yaml:"env" toml:"env" mapstructure:"env"`
	Debug   bool   `koanf:"debug" json:"debug" yaml:"debug" toml:"debug" mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string         `koanf:"host" json:"host" yaml:"host" toml:"host" mapstructure:"host"`
	Port     int            `koanf:"port" json:"port" yaml:"port" toml:"port" mapstructure:"port"`
	Timeout  TimeoutConfig  `koanf:"timeout" json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout"`
	Path     PathConfig     `koanf:"path" json:"path" yaml:"path" toml:"path" mapstructure:"path"`
	Metadata MetadataConfig `koanf:"metadata" json:"metadata" yaml:"metadata" toml:"metadata" mapstructure:"metadata"`
}

// TimeoutConfig holds server timeouts.
type TimeoutConfig struct {
	Read     time.Duration `koanf:"read" json:"read" yaml:"read" toml:"read" mapstructure:"read"`
	Write    time.Duration `koanf:"write" json:"write" yaml:"write" toml:"write" mapstructure:"write"`
	Idle     time.Duration `koanf:"idle" json:"idle" yaml:"idle" toml:"idle" mapstructure:"idle"`
	Shutdown time.Duration `koanf:"shutdown" json:"shutdown" yaml:"shutdown" toml:"shutdown" mapstructure:"shutdown"`
}

// PathConfig holds the base path and the probe endpoints.
type PathConfig struct {
	Base   string `koanf:"base" json:"base" yaml:"base" toml:"base" mapstructure:"base"`
	Health string `koanf:"health" json:"health" yaml:"health" toml:"health" mapstructure:"health"`
	Ready  string `koanf:"ready" json:"ready" yaml:"ready" toml:"ready" mapstructure:"ready"`
}

// MetadataConfig controls route metadata collection. Documentation generation
// reads operations from the route registry, so it requires metadata.
type MetadataConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" toml:"level" mapstructure:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" toml:"pretty" mapstructure:"pretty"`
}

// IntrospecConfig describes the published documentation and its endpoints.
type IntrospecConfig struct {
	Enabled        bool          `koanf:"enabled" json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	Path           string        `koanf:"path" json:"path" yaml:"path" toml:"path" mapstructure:"path" validate:"required,startswith=/"`
	Title          string        `koanf:"title" json:"title" yaml:"title" toml:"title" mapstructure:"title"`
	Version        string        `koanf:"version" json:"version" yaml:"version" toml:"version" mapstructure:"version"`
	Description    string        `koanf:"description" json:"description" yaml:"description" toml:"description" mapstructure:"description" validate:"required"`
	BaseURL        string        `koanf:"baseurl" json:"baseurl" yaml:"baseurl" toml:"baseurl" mapstructure:"baseurl" validate:"omitempty,url"`
	LicenseURL     string        `koanf:"licenseurl" json:"licenseurl" yaml:"licenseurl" toml:"licenseurl" mapstructure:"licenseurl" validate:"omitempty,url"`
	Contact        ContactConfig `koanf:"contact" json:"contact" yaml:"contact" toml:"contact" mapstructure:"contact"`
	ContentTypes   []string      `koanf:"contenttypes" json:"contenttypes" yaml:"contenttypes" toml:"contenttypes" mapstructure:"contenttypes"`
	IgnorePackages []string      `koanf:"ignorepackages" json:"ignorepackages" yaml:"ignorepackages" toml:"ignorepackages" mapstructure:"ignorepackages"`
	Cache          CacheConfig   `koanf:"cache" json:"cache" yaml:"cache" toml:"cache" mapstructure:"cache"`
	Rate           RateConfig    `koanf:"rate" json:"rate" yaml:"rate" toml:"rate" mapstructure:"rate"`
	Placeholders   string        `koanf:"placeholders" json:"placeholders" yaml:"placeholders" toml:"placeholders" mapstructure:"placeholders" validate:"omitempty,oneof=sequential fake"`
}

// ContactConfig holds the documentation owner.
type ContactConfig struct {
	Name  string `koanf:"name" json:"name" yaml:"name" toml:"name" mapstructure:"name" validate:"required"`
	Email string `koanf:"email" json:"email" yaml:"email" toml:"email" mapstructure:"email" validate:"omitempty,email"`
	URL   string `koanf:"url" json:"url" yaml:"url" toml:"url" mapstructure:"url" validate:"omitempty,url"`
}

// CacheConfig bounds the filtered documentation cache.
type CacheConfig struct {
	Size int `koanf:"size" json:"size" yaml:"size" toml:"size" mapstructure:"size" validate:"gte=0"`
}

// RateConfig holds rate limiting settings. A zero limit disables limiting.
type RateConfig struct {
	Limit int `koanf:"limit" json:"limit" yaml:"limit" toml:"limit" mapstructure:"limit" validate:"gte=0"`
	Burst int `koanf:"burst" json:"burst" yaml:"burst" toml:"burst" mapstructure:"burst" validate:"gte=0"`
}
