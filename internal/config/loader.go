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

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
)

// Environment variables read by Load.
const (
	EnvPrefix = "WICKET_"
	EnvFile   = "WICKET_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if WICKET_CONFIG is set
//  3. env (prefix WICKET_)
//
// The result is validated.
func Load(ctx context.Context) (*Config, error) {
	cfg := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// WICKET_QUEUE_SIZE -> queue_size. Keys stay flat so underscores match
	// the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a setting.
	k.Delete("config")
	if err := canonicalRoles(k); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// canonicalRoles rewrites role_min/role_max keys to canonical role names so
// "bowler" in a file overrides the default "BOWL" instead of sitting next to it.
func canonicalRoles(k *koanf.Koanf) error {
	for _, key := range []string{"role_min", "role_max"} {
		if !k.Exists(key) {
			continue
		}
		raw := k.IntMap(key)
		k.Delete(key)
		for name, n := range raw {
			r, err := model.ParseRole(name)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
			}
			if err := k.Set(key+"."+string(r), n); err != nil {
				return fmt.Errorf("%w: %w", ErrLoadConfig, err)
			}
		}
	}
	return nil
}

// PointsTable loads the configured points table, or the built-in one.
func (c *Config) PointsTable(ctx context.Context) (pointstable.Table, error) {
	if c.PointsTablePath == "" {
		return pointstable.Default(), nil
	}
	return pointstable.Load(ctx, c.PointsTablePath)
}
