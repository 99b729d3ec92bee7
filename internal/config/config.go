package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/akashicode/aprovados/internal/reader"
	"github.com/akashicode/aprovados/internal/textnorm"
)

var (
	// ErrNilConfig is returned when a nil Config is provided.
	ErrNilConfig = errors.New("config is nil")
	// ErrInvalid is returned when a config value is out of range.
	ErrInvalid = errors.New("invalid config")
)

// Config holds the full application configuration.
type Config struct {
	Location  string          `mapstructure:"location"`
	Workers   int             `mapstructure:"workers"`
	Dimension DimensionConfig `mapstructure:"dimension"`
	Aliases   AliasesConfig   `mapstructure:"aliases"`
	Reader    ReaderConfig    `mapstructure:"reader"`
	Store     StoreConfig     `mapstructure:"store"`
}

// DimensionConfig points at the Fuvest code table. An empty Path means the
// embedded table.
type DimensionConfig struct {
	Path string `mapstructure:"path"`
}

// AliasesConfig points at an optional YAML file of extra institution aliases.
type AliasesConfig struct {
	Path string `mapstructure:"path"`
}

// ReaderConfig controls how PDFs are turned into lines.
type ReaderConfig struct {
	Backend      string  `mapstructure:"backend"`
	RowTolerance float64 `mapstructure:"row_tolerance"`
}

// StoreConfig enables the SQLite sink when SQLitePath is set.
type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("location", textnorm.DefaultLocation)
	v.SetDefault("workers", 4)
	v.SetDefault("dimension.path", "")
	v.SetDefault("aliases.path", "")
	v.SetDefault("reader.backend", string(reader.BackendAuto))
	v.SetDefault("reader.row_tolerance", reader.DefaultRowTolerance)
	v.SetDefault("store.sqlite_path", "")
}

// Load reads the Viper-populated config into a Config struct.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals and validates the config held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Location = strings.TrimSpace(cfg.Location)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all values are usable.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if cfg.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalid)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, cfg.Workers)
	}
	if cfg.Reader.RowTolerance <= 0 {
		return fmt.Errorf("%w: reader.row_tolerance must be positive, got %g", ErrInvalid, cfg.Reader.RowTolerance)
	}
	if _, err := reader.ParseBackend(cfg.Reader.Backend); err != nil {
		return fmt.Errorf("%w: reader.backend: %w", ErrInvalid, err)
	}
	return nil
}

// ReaderOptions converts the reader section into reader.Options.
func (c *Config) ReaderOptions() reader.Options {
	backend, err := reader.ParseBackend(c.Reader.Backend)
	if err != nil {
		backend = reader.BackendAuto
	}
	return reader.Options{Backend: backend, RowTolerance: c.Reader.RowTolerance}
}
