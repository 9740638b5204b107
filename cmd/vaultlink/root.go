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

package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/vaultlink/cmd/vaultlink/commands"
	"github.com/walteh/vaultlink/cmd/vaultlink/opts"
	"github.com/walteh/vaultlink/pkg/config"
	"github.com/walteh/vaultlink/pkg/log"
)

// newRootCmd creates the root command. Without a subcommand it links the
// vault.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &opts.RootOpts{
		Stdout: stdout,
		Stderr: stderr,
	}

	cmd := &cobra.Command{
		Use:   "vaultlink",
		Short: "Turn bare terms in a vault of notes into links",
		Long: `vaultlink rewrites terms inside a vault of notes using a key:value
translation table, turning bare words into links while leaving existing
links, headings and tags alone. Every file is backed up first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, o)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunLink(cmd, o)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewLinkCmd(o),
		commands.NewRestoreCmd(o),
		commands.NewWatchCmd(o),
		commands.NewConfigCmd(o),
		newVersionCmd(stdout),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigPath, "config", "c", config.DefaultPath, "config file path (.json, .yaml, .hcl or .toml)")
	flags.StringVar(&o.EnvFile, "env-file", ".env", "environment file read before resolving the config")
	flags.BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	flags.StringVarP(&o.Open, "open", "o", "", "open the viewer and wait for it to exit before linking, optionally at `PATH`")
	flags.Lookup("open").NoOptDefVal = opts.UseStoredViewer
	flags.StringVarP(&o.VaultPath, "vault", "v", "", "vault directory, stored in the config")
	flags.StringVarP(&o.Translation, "translation", "t", "", "translation table file, stored in the config")
	flags.BoolVar(&o.DryRun, "dry-run", false, "compute replacements without writing anything")
	flags.IntVar(&o.Workers, "workers", 0, "number of files processed in parallel")
}

// setupLogging puts a zerolog logger and a console logger on the command
// context
func setupLogging(cmd *cobra.Command, o *opts.RootOpts) {
	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: o.Stderr, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()

	ctx := logger.WithContext(cmd.Context())
	ctx = log.NewContext(ctx, log.New(o.Stdout, logger))
	cmd.SetContext(ctx)
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(stdout, FormatVersion())
			return nil
		},
	}
}
