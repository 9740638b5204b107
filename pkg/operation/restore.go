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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/vaultlink/pkg/log"
	"github.com/walteh/vaultlink/pkg/vault"
	"gitlab.com/tozd/go/errors"
)

// ♻️ NewRestoreOperation creates an operation that copies the flat backups
// back over the vault
func NewRestoreOperation(opts Options) Operation {
	return &restoreOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// ♻️ restoreOperation implements the restore operation
type restoreOperation struct {
	BaseOperation
}

// 🏃 Execute runs the restore operation
func (op *restoreOperation) Execute(ctx context.Context) error {
	ctx = op.withRun(ctx, "restore")
	console := log.FromContext(ctx)
	cfg := op.Config

	if err := cfg.ValidateVault(); err != nil {
		return err
	}

	files, err := vault.Walk(ctx, cfg.VaultPath, cfg.Ignore)
	if err != nil {
		return errors.Errorf("listing vault: %w", err)
	}

	op.StatusMgr.Reset()
	console.Header("restoring " + cfg.VaultPath)
	console.StartVaultOperation(ctx, log.VaultOperation{
		Name:  "restoring",
		Vault: cfg.VaultPath,
		Table: cfg.BackupDir,
		RunID: op.RunID,
	})
	defer console.EndVaultOperation(ctx)

	if op.DryRun {
		console.Info("dry run, nothing restored")
		return nil
	}

	report, err := vault.RestoreAll(ctx, op.StatusMgr, cfg.BackupDir, files)
	if err != nil {
		return errors.Errorf("restoring vault: %w", err)
	}

	for _, info := range op.StatusMgr.List(ctx) {
		console.LogFileOperation(ctx, log.FileOperation{Path: info.Path, Status: info.Status})
	}

	console.LogNewline()
	if err := op.StatusMgr.RenderSummary(console.Console()); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("rendering summary")
	}

	if report.Failed() > 0 {
		return errors.Join(report.Errors...)
	}

	console.Successf("restored %d notes", report.Done)
	return nil
}
