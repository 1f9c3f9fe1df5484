// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors wrap this package's sentinels.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/gradecard/internal/domain/background"
	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/internal/domain/presenter"
)

// Preference store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Dataset is a file path or http(s) URL of the student records.
	Dataset string `koanf:"dataset"`

	// DatasetTimeoutMS bounds a remote dataset fetch.
	DatasetTimeoutMS int `koanf:"dataset_timeout_ms"`

	// IDLength is the exact number of digits in a student id.
	IDLength int `koanf:"id_length"`

	// CohortSize is the denominator shown next to a rank. Zero hides it.
	CohortSize int `koanf:"cohort_size"`

	// LookupDelayMS is the artificial latency applied to every lookup.
	LookupDelayMS int `koanf:"lookup_delay_ms"`

	// AssetsDir holds the background images.
	AssetsDir string `koanf:"assets_dir"`

	// PrefDriver is sqlite, postgres or memory.
	PrefDriver string `koanf:"pref_driver"`
	PrefDSN    string `koanf:"pref_dsn"`

	// CORSOrigins lists allowed origins for the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// DefaultLocale is used when a request names no supported language.
	DefaultLocale string `koanf:"default_locale"`

	// Backgrounds is the rotation list, in order.
	Backgrounds []background.Entry `koanf:"backgrounds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Dataset:          "data.json",
		DatasetTimeoutMS: 10_000,
		IDLength:         lookup.DefaultIDLength,
		CohortSize:       358,
		LookupDelayMS:    300,
		AssetsDir:        "./images",
		PrefDriver:       DriverSQLite,
		PrefDSN:          "file:gradecard.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)",
		CORSOrigins:      []string{"*"},
		DefaultLocale:    string(presenter.English),
		Backgrounds:      background.DefaultEntries(),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Dataset) == "":
		return fmt.Errorf("%w: dataset must not be empty", ErrInvalidConfig)
	case c.IDLength <= 0:
		return fmt.Errorf("%w: id_length must be positive, got %d", ErrInvalidConfig, c.IDLength)
	case c.CohortSize < 0:
		return fmt.Errorf("%w: cohort_size must not be negative", ErrInvalidConfig)
	case c.LookupDelayMS < 0:
		return fmt.Errorf("%w: lookup_delay_ms must not be negative", ErrInvalidConfig)
	case c.DatasetTimeoutMS <= 0:
		return fmt.Errorf("%w: dataset_timeout_ms must be positive", ErrInvalidConfig)
	}

	switch c.PrefDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unsupported pref_driver %q", ErrInvalidConfig, c.PrefDriver)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unsupported log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if _, ok := presenter.ParseLocale(c.DefaultLocale); !ok {
		return fmt.Errorf("%w: unsupported default_locale %q", ErrInvalidConfig, c.DefaultLocale)
	}

	if len(c.Backgrounds) == 0 {
		return fmt.Errorf("%w: backgrounds must not be empty", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Backgrounds))
	for i, e := range c.Backgrounds {
		if e.ID == "" || e.File == "" {
			return fmt.Errorf("%w: backgrounds[%d] needs id and file", ErrInvalidConfig, i)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate background id %q", ErrInvalidConfig, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
