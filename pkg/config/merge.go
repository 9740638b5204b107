// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🌱 Environment variables read by EnvOverrides
const (
	EnvVault       = "VAULTLINK_VAULT"
	EnvTranslation = "VAULTLINK_TABLE"
	EnvViewer      = "VAULTLINK_VIEWER"
)

// 🔀 Overrides are values supplied outside the config file. Empty fields
// leave the stored value alone.
type Overrides struct {
	VaultPath       string
	TranslationPath string
	ViewerPath      string
}

// Or fills every empty field of o from fallback
func (o Overrides) Or(fallback Overrides) Overrides {
	if o.VaultPath == "" {
		o.VaultPath = fallback.VaultPath
	}
	if o.TranslationPath == "" {
		o.TranslationPath = fallback.TranslationPath
	}
	if o.ViewerPath == "" {
		o.ViewerPath = fallback.ViewerPath
	}
	return o
}

// EnvOverrides reads overrides from the environment
func EnvOverrides(getenv func(string) string) Overrides {
	return Overrides{
		VaultPath:       getenv(EnvVault),
		TranslationPath: getenv(EnvTranslation),
		ViewerPath:      getenv(EnvViewer),
	}
}

// LoadDotEnv loads path into the process environment when it exists.
// Variables already set win over the file.
func LoadDotEnv(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Errorf("loading %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loaded environment file")
	return nil
}

// 🔀 Merge applies o to cfg and reports whether any stored value changed
func (cfg *Config) Merge(o Overrides) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&cfg.VaultPath, o.VaultPath)
	set(&cfg.TranslationPath, o.TranslationPath)
	set(&cfg.ViewerPath, o.ViewerPath)
	return changed
}

// 🎯 Resolve loads the stored config, merges o into it, validates the result
// and persists it when something changed. Invalid values are never written.
func Resolve(ctx context.Context, path string, o Overrides) (*Config, error) {
	return resolve(ctx, path, o, Config.Validate)
}

// ResolveVault is Resolve for commands that only touch the vault, so a
// missing translation table is not an error
func ResolveVault(ctx context.Context, path string, o Overrides) (*Config, error) {
	return resolve(ctx, path, o, Config.ValidateVault)
}

func resolve(ctx context.Context, path string, o Overrides, validate func(Config) error) (*Config, error) {
	stored, err := LoadOrCreate(ctx, path)
	if err != nil {
		return nil, &ConfigError{
			Field: "config",
			Path:  path,
			Hint:  "fix or delete the configuration file",
			Err:   err,
		}
	}

	viewer := stored.ViewerPath
	changed := stored.Merge(o)

	resolved := stored.WithDefaults()
	if err := validate(resolved); err != nil {
		return nil, err
	}
	if resolved.ViewerPath != viewer {
		if err := resolved.ValidateViewer(); err != nil {
			return nil, err
		}
	}

	if changed {
		if err := Save(ctx, path, stored); err != nil {
			return nil, errors.Errorf("persisting configuration: %w", err)
		}
		zerolog.Ctx(ctx).Info().Str("path", stored.Location()).Msg("configuration updated")
	}

	return &resolved, nil
}
