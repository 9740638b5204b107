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

package commands

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"github.com/walteh/vaultlink/cmd/vaultlink/opts"
	"github.com/walteh/vaultlink/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the stored configuration",
	}
	cmd.AddCommand(newConfigShowCmd(o))
	return cmd
}

func newConfigShowCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration with flags and environment applied",
		Long: `Show prints the stored configuration in the format of the config file,
with flag and environment overrides and defaults applied. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := config.LoadDotEnv(ctx, o.EnvFile); err != nil {
				return err
			}

			cfg, err := config.Load(ctx, o.ConfigPath)
			if errors.Is(err, fs.ErrNotExist) {
				cfg, err = &config.Config{}, nil
			}
			if err != nil {
				return errors.Errorf("loading configuration: %w", err)
			}

			overrides, err := o.Overrides()
			if err != nil {
				return err
			}
			cfg.Merge(overrides)
			shown := cfg.WithDefaults()
			if o.Workers > 0 {
				shown.Workers = o.Workers
			}

			p := config.GetParser(o.ConfigPath)
			if p == nil {
				return errors.Errorf("no parser found for file: %s", o.ConfigPath)
			}

			data, err := p.Encode(ctx, &shown)
			if err != nil {
				return errors.Errorf("encoding configuration: %w", err)
			}

			fmt.Fprint(o.Stdout, string(data))
			return nil
		},
	}
}
