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

// NewLinkCmd creates the link command
func NewLinkCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Rewrite terms in the vault using the translation table",
		Long: `Link rewrites every note in the vault through the translation table.
It will:
1. Check the vault and the translation table exist
2. Open the viewer and wait for it to close, when --open is given
3. Back up every file into the backup dir
4. Replace every bare term with its replacement`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunLink(cmd, o)
		},
	}
}

// RunLink runs the link operation. The root command runs it too.
func RunLink(cmd *cobra.Command, o *opts.RootOpts) error {
	ctx := cmd.Context()

	cfg, err := o.Resolve(ctx)
	if err != nil {
		return err
	}

	runner := operation.NewRunner(zerolog.Ctx(ctx))
	return runner.Run(ctx, operation.NewLinkOperation(o.Options(cfg)))
}
