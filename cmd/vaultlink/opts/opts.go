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

package opts

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/walteh/vaultlink/pkg/config"
	"github.com/walteh/vaultlink/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// UseStoredViewer is the value of --open given without a path
const UseStoredViewer = "-"

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigPath  string
	EnvFile     string
	Debug       bool
	Open        string
	VaultPath   string
	Translation string
	DryRun      bool
	Workers     int

	Stdout io.Writer
	Stderr io.Writer
}

// OpenViewer reports whether --open was passed
func (o *RootOpts) OpenViewer() bool {
	return o.Open != ""
}

// Overrides returns the flag values, made absolute, layered over the
// environment
func (o *RootOpts) Overrides() (config.Overrides, error) {
	flags := config.Overrides{
		VaultPath:       o.VaultPath,
		TranslationPath: o.Translation,
	}
	if o.Open != UseStoredViewer {
		flags.ViewerPath = o.Open
	}

	env := config.EnvOverrides(os.Getenv)

	merged := flags.Or(env)
	for _, p := range []*string{&merged.VaultPath, &merged.TranslationPath, &merged.ViewerPath} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return config.Overrides{}, errors.Errorf("resolving %s: %w", *p, err)
		}
		*p = abs
	}
	return merged, nil
}

// Resolve loads the .env file and the stored configuration, applies the
// overrides and persists them when they changed anything
func (o *RootOpts) Resolve(ctx context.Context) (*config.Config, error) {
	return o.resolve(ctx, config.Resolve)
}

// ResolveVault is Resolve without requiring the translation table
func (o *RootOpts) ResolveVault(ctx context.Context) (*config.Config, error) {
	return o.resolve(ctx, config.ResolveVault)
}

func (o *RootOpts) resolve(ctx context.Context, resolve func(context.Context, string, config.Overrides) (*config.Config, error)) (*config.Config, error) {
	if err := config.LoadDotEnv(ctx, o.EnvFile); err != nil {
		return nil, err
	}

	overrides, err := o.Overrides()
	if err != nil {
		return nil, err
	}

	cfg, err := resolve(ctx, o.ConfigPath, overrides)
	if err != nil {
		return nil, err
	}

	// workers is a per-run setting and never persisted from the command line
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	return cfg, nil
}

// Options builds operation options for cfg
func (o *RootOpts) Options(cfg *config.Config) operation.Options {
	return operation.Options{
		Config:     *cfg,
		OpenViewer: o.OpenViewer(),
		DryRun:     o.DryRun,
	}
}
