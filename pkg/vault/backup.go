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

package vault

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/vaultlink/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📦 Report summarises a backup or restore pass
type Report struct {
	Done    int
	Skipped int
	Errors  []error
}

// Failed returns the number of files that could not be handled
func (r *Report) Failed() int {
	return len(r.Errors)
}

type reporter struct {
	mu     sync.Mutex
	report Report
}

func (r *reporter) done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Done++
}

func (r *reporter) skipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Skipped++
}

func (r *reporter) failed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Errors = append(r.report.Errors, err)
}

// BackupPath returns where the flat backup of path lives
func BackupPath(root, backupDir, path string) string {
	return filepath.Join(root, backupDir, filepath.Base(path))
}

// 💾 BackupAll copies the content of every file into <root>/<backupDir>,
// keyed by base name. Files already inside the backup dir and empty files
// are skipped. A file that cannot be backed up is recorded as a
// BackupWriteError and the pass carries on; only a failure to create the
// backup dir or a cancelled context aborts it.
func BackupAll(ctx context.Context, mgr *status.Manager, backupDir string, files []string, workers int) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	root := mgr.Root()
	classifier := NewClassifier(root, backupDir, "")

	if err := os.MkdirAll(filepath.Join(root, backupDir), 0755); err != nil {
		return nil, errors.Errorf("creating backup dir: %w", err)
	}

	rep := &reporter{}
	mgr.StartOperation(ctx, "backup", len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer mgr.Advance(gctx)

			if classifier.InBackupDir(file) {
				return nil
			}

			data, err := os.ReadFile(file)
			if err != nil {
				berr := &BackupWriteError{Path: file, Err: err}
				logger.Warn().Err(berr).Msg("backup skipped")
				mgr.Track(gctx, file, status.FileInfo{Status: status.StatusFailed, Error: berr})
				rep.failed(berr)
				return nil
			}

			if len(data) == 0 {
				mgr.Track(gctx, file, status.FileInfo{Status: status.StatusSkipped})
				rep.skipped()
				return nil
			}

			dst := BackupPath(root, backupDir, file)
			if err := mgr.WriteFileAtomic(gctx, dst, data); err != nil {
				berr := &BackupWriteError{Path: file, Err: err}
				logger.Warn().Err(berr).Msg("backup skipped")
				mgr.Track(gctx, file, status.FileInfo{Status: status.StatusFailed, Error: berr})
				rep.failed(berr)
				return nil
			}

			mgr.Track(gctx, file, status.FileInfo{Status: status.StatusBackedUp})
			rep.done()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &rep.report, err
	}
	mgr.FinishOperation(ctx, "backup")

	if err := ctx.Err(); err != nil {
		return &rep.report, errors.Errorf("backup interrupted: %w", err)
	}
	return &rep.report, nil
}

// ♻️ RestoreAll copies every flat backup back over the vault file with the
// same base name. A backup whose base name matches no file, or more than one
// file, is skipped with a warning since a flat backup cannot tell them apart.
func RestoreAll(ctx context.Context, mgr *status.Manager, backupDir string, files []string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	root := mgr.Root()
	classifier := NewClassifier(root, backupDir, "")
	dir := filepath.Join(root, backupDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading backup dir: %w", err)
	}

	byName := make(map[string][]string)
	for _, file := range files {
		if classifier.InBackupDir(file) {
			continue
		}
		name := filepath.Base(file)
		byName[name] = append(byName[name], file)
	}

	rep := &reporter{}
	mgr.StartOperation(ctx, "restore", len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return &rep.report, errors.Errorf("restore interrupted: %w", err)
		}
		mgr.Advance(ctx)

		if !entry.Type().IsRegular() {
			continue
		}

		targets := byName[entry.Name()]
		switch len(targets) {
		case 0:
			logger.Warn().Str("backup", entry.Name()).Msg("no vault file for backup, skipping")
			rep.skipped()
			continue
		case 1:
		default:
			logger.Warn().Str("backup", entry.Name()).Strs("candidates", targets).Msg("backup name is ambiguous, skipping")
			for _, target := range targets {
				mgr.Track(ctx, target, status.FileInfo{Status: status.StatusSkipped})
			}
			rep.skipped()
			continue
		}

		target := targets[0]
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err == nil {
			err = mgr.WriteFileAtomic(ctx, target, data)
		}
		if err != nil {
			err = errors.Errorf("restoring %s: %w", target, err)
			logger.Warn().Err(err).Msg("restore failed")
			mgr.Track(ctx, target, status.FileInfo{Status: status.StatusFailed, Error: err})
			rep.failed(err)
			continue
		}

		mgr.Track(ctx, target, status.FileInfo{Status: status.StatusRestored})
		rep.done()
	}

	mgr.FinishOperation(ctx, "restore")
	return &rep.report, nil
}
