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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/vaultlink/cmd/vaultlink/opts"
	"github.com/walteh/vaultlink/pkg/operation"
)

// NewRestoreCmd creates the restore command
func NewRestoreCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Copy the backups back over the vault",
		Long: `Restore copies every file in the backup dir back over the vault file
with the same name. Names shared by several vault files are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.ResolveVault(ctx)
			if err != nil {
				return err
			}

			runner := operation.NewRunner(zerolog.Ctx(ctx))
			return runner.Run(ctx, operation.NewRestoreOperation(o.Options(cfg)))
		},
	}
}
