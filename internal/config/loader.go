package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/gradecard/internal/domain/background"
)

const (
	envPrefix  = "GRADECARD_"
	envFileVar = "GRADECARD_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRADECARD_CONFIG is set
//  3. env (prefix GRADECARD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GRADECARD_LOOKUP_DELAY_MS -> lookup_delay_ms. Underscores are kept to
	// match the flat koanf tags.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(k, v string) (string, any) {
		key := strings.TrimPrefix(strings.ToLower(k), strings.ToLower(envPrefix))
		if key == "cors_origins" {
			return key, splitList(v)
		}
		return key, v
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Slices are decoded element-wise into existing values, so defaults that
	// are overridden must start empty.
	cfg := *base
	if k.Exists("backgrounds") {
		cfg.Backgrounds = nil
	}
	if k.Exists("cors_origins") {
		cfg.CORSOrigins = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if len(cfg.Backgrounds) == 0 {
		cfg.Backgrounds = background.DefaultEntries()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
