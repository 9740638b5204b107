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
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/vaultlink/pkg/log"
	"github.com/walteh/vaultlink/pkg/status"
	"github.com/walteh/vaultlink/pkg/table"
	"github.com/walteh/vaultlink/pkg/text"
	"github.com/walteh/vaultlink/pkg/vault"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔗 NewLinkOperation creates an operation that backs up every file in the
// vault and rewrites every note through the translation table
func NewLinkOperation(opts Options) Operation {
	return &linkOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 🔗 linkOperation implements the link operation
type linkOperation struct {
	BaseOperation
}

// 🏃 Execute runs the link operation
func (op *linkOperation) Execute(ctx context.Context) error {
	ctx = op.withRun(ctx, "link")
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)
	cfg := op.Config

	// nothing is touched until the paths are known to be good
	if err := cfg.Validate(); err != nil {
		return err
	}

	if op.OpenViewer {
		if err := cfg.ValidateViewer(); err != nil {
			return err
		}
		console.Infof("waiting for %s to exit", filepath.Base(cfg.ViewerPath))
		if err := op.Launcher.Launch(ctx, cfg.ViewerPath); err != nil {
			return errors.Errorf("launching viewer: %w", err)
		}
	}

	files, err := vault.Walk(ctx, cfg.VaultPath, cfg.Ignore)
	if err != nil {
		return errors.Errorf("listing vault: %w", err)
	}

	tbl, err := table.Load(ctx, cfg.TranslationPath)
	if err != nil {
		return err
	}
	linker, err := tbl.Linker()
	if err != nil {
		return errors.Errorf("compiling translation table: %w", err)
	}

	logger.Debug().Str("table", tbl.Path()).Int("files", len(files)).Int("entries", tbl.Len()).Msg("vault loaded")

	op.StatusMgr.Reset()
	console.Header(cfg.String())
	console.StartVaultOperation(ctx, log.VaultOperation{
		Name:   "linking",
		Vault:  cfg.VaultPath,
		Table:  cfg.TranslationPath,
		RunID:  op.RunID,
		DryRun: op.DryRun,
	})
	defer console.EndVaultOperation(ctx)

	if !op.DryRun {
		report, err := vault.BackupAll(ctx, op.StatusMgr, cfg.BackupDir, files, cfg.Workers)
		if err != nil {
			return errors.Errorf("backing up vault: %w", err)
		}
		if report.Failed() > 0 {
			console.Warningf("%d files could not be backed up", report.Failed())
		}
	}

	notes := op.notes(ctx, files)
	errs := op.substituteAll(ctx, linker, notes)

	console.LogNewline()
	if err := op.StatusMgr.RenderSummary(console.Console()); err != nil {
		logger.Debug().Err(err).Msg("rendering summary")
	}

	if len(errs) > 0 {
		console.Errorf("%d notes could not be rewritten", len(errs))
		return errors.Join(errs...)
	}
	if err := ctx.Err(); err != nil {
		return errors.Errorf("link interrupted: %w", err)
	}

	console.Successf("linked %d notes", op.StatusMgr.Processed())
	return nil
}

// notes filters files down to the eligible notes, leaving out the
// translation table itself
func (op *linkOperation) notes(ctx context.Context, files []string) []string {
	classifier := vault.NewClassifier(op.Config.VaultPath, op.Config.BackupDir, op.Config.NoteExtension)
	tableInfo, _ := os.Stat(op.Config.TranslationPath)

	notes := make([]string, 0, len(files))
	for _, file := range files {
		if isSameFile(file, op.Config.TranslationPath, tableInfo) {
			zerolog.Ctx(ctx).Debug().Str("path", file).Msg("skipping translation table")
			continue
		}
		if !classifier.IsEligible(ctx, file) {
			continue
		}
		notes = append(notes, file)
	}
	return notes
}

// substituteAll runs the linker over every note, bounded by the configured
// worker count. Every failure is collected; none stops the pass.
func (op *linkOperation) substituteAll(ctx context.Context, linker *text.Linker, notes []string) []error {
	var (
		mu   sync.Mutex
		errs []error
	)

	op.StatusMgr.StartOperation(ctx, "link", len(notes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(op.Config.Workers, 1))

	for _, note := range notes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer op.StatusMgr.Advance(gctx)
			if err := op.substitute(gctx, linker, note); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	op.StatusMgr.FinishOperation(ctx, "link")
	return errs
}

// substitute rewrites a single note
func (op *linkOperation) substitute(ctx context.Context, linker *text.Linker, path string) error {
	console := log.FromContext(ctx)
	rel := op.StatusMgr.Rel(path)

	data, err := os.ReadFile(path)
	if err != nil {
		serr := &SubstitutionIOError{Path: path, Op: "read", Err: err}
		op.StatusMgr.Track(ctx, path, status.FileInfo{Status: status.StatusFailed, Error: serr})
		console.LogFileOperation(ctx, log.FileOperation{Path: rel, Status: status.StatusFailed})
		return serr
	}

	if len(data) == 0 {
		op.StatusMgr.Track(ctx, path, status.FileInfo{Status: status.StatusSkipped})
		return nil
	}

	if prev, err := op.StatusMgr.Get(ctx, path); err == nil && prev.Status == status.StatusFailed {
		zerolog.Ctx(ctx).Warn().Str("path", rel).Err(prev.Error).Msg("rewriting note without a backup")
	}

	result := linker.Apply(ctx, string(data))

	if !op.DryRun {
		if err := op.StatusMgr.WriteFileAtomic(ctx, path, []byte(result.Modified)); err != nil {
			serr := &SubstitutionIOError{Path: path, Op: "write", Err: err}
			op.StatusMgr.Track(ctx, path, status.FileInfo{Status: status.StatusFailed, Error: serr})
			console.LogFileOperation(ctx, log.FileOperation{Path: rel, Status: status.StatusFailed})
			return serr
		}
	}

	info := status.FileInfo{Status: status.StatusUnchanged, Replacements: result.ReplacementCount}
	if result.WasModified {
		info.Status = status.StatusLinked
		console.LogFileOperation(ctx, log.FileOperation{Path: rel, Status: status.StatusLinked, Replacements: result.ReplacementCount})
	}
	op.StatusMgr.Track(ctx, path, info)
	return nil
}

// isSameFile reports whether path and other name the same file
func isSameFile(path, other string, otherInfo os.FileInfo) bool {
	a, errA := filepath.Abs(path)
	b, errB := filepath.Abs(other)
	if errA == nil && errB == nil && a == b {
		return true
	}
	if otherInfo == nil {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(info, otherInfo)
}
