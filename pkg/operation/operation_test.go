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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/vaultlink/pkg/config"
	"github.com/walteh/vaultlink/pkg/log"
	"github.com/walteh/vaultlink/pkg/status"
	"github.com/walteh/vaultlink/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockLauncher is a mock implementation of the viewer.Launcher interface
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// newTestVault writes files into a fresh vault and the table next to it
func newTestVault(t *testing.T, files map[string]string, table string) config.Config {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	tablePath := filepath.Join(t.TempDir(), "table.txt")
	require.NoError(t, os.WriteFile(tablePath, []byte(table), 0644))

	return config.Config{VaultPath: root, TranslationPath: tablePath}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLink(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		table      string
		want       map[string]string
		wantBackup map[string]string
	}{
		{
			name:       "end_to_end",
			files:      map[string]string{"note.md": "See Alpha for details"},
			table:      "Alpha: [[Alpha Page]]\n",
			want:       map[string]string{"note.md": "See [[Alpha Page]] for details"},
			wantBackup: map[string]string{"note.md": "See Alpha for details"},
		},
		{
			name: "existing_links_headings_and_tags_kept",
			files: map[string]string{
				"note.md": "# Alpha\nsee [Alpha] and #Alpha but Alpha here",
			},
			table: "Alpha:[[Alpha]]",
			want: map[string]string{
				"note.md": "# Alpha\nsee [Alpha] and #Alpha but [[Alpha]] here",
			},
		},
		{
			name: "entries_applied_in_order",
			files: map[string]string{
				"a.md": "A",
			},
			table: "A:X\nX:Y\n",
			want:  map[string]string{"a.md": "Y"},
		},
		{
			name: "only_notes_rewritten",
			files: map[string]string{
				"note.md":   "Alpha",
				"data.csv":  "Alpha",
				"README":    "# Alpha",
				"plaintext": "Alpha in prose",
			},
			table: "Alpha:[[Alpha]]",
			want: map[string]string{
				"note.md":   "[[Alpha]]",
				"data.csv":  "Alpha",
				"README":    "# Alpha",
				"plaintext": "Alpha in prose",
			},
			wantBackup: map[string]string{
				"data.csv":  "Alpha",
				"plaintext": "Alpha in prose",
			},
		},
		{
			name: "empty_note_left_alone",
			files: map[string]string{
				"empty.md": "",
				"full.md":  "Alpha",
			},
			table: "Alpha:[[Alpha]]",
			want: map[string]string{
				"empty.md": "",
				"full.md":  "[[Alpha]]",
			},
		},
		{
			name: "backup_dir_not_rewritten",
			files: map[string]string{
				"note.md":        "Alpha",
				"backup/keep.md": "Alpha",
			},
			table: "Alpha:[[Alpha]]",
			want: map[string]string{
				"note.md":        "[[Alpha]]",
				"backup/keep.md": "Alpha",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			cfg := newTestVault(t, tt.files, tt.table)

			err := NewLinkOperation(Options{Config: cfg}).Execute(ctx)
			require.NoError(t, err)

			for name, want := range tt.want {
				assert.Equal(t, want, readFile(t, filepath.Join(cfg.VaultPath, name)), "content of %s", name)
			}
			for name, want := range tt.wantBackup {
				assert.Equal(t, want, readFile(t, filepath.Join(cfg.VaultPath, "backup", name)), "backup of %s", name)
			}
		})
	}
}

func TestLink_SkipsTranslationTable(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{
		"note.md":  "Alpha",
		"links.md": "Alpha: [[Alpha Page]]\n",
	}, "")
	cfg.TranslationPath = filepath.Join(cfg.VaultPath, "links.md")

	require.NoError(t, NewLinkOperation(Options{Config: cfg}).Execute(ctx))

	assert.Equal(t, "[[Alpha Page]]", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
	assert.Equal(t, "Alpha: [[Alpha Page]]\n", readFile(t, cfg.TranslationPath), "the table must never be rewritten")
}

func TestLink_SecondRunIsStable(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{
		"note.md": "Alpha meets Beta",
	}, "Alpha:[[Alpha]]\nBeta:[Beta](beta.md)\n")

	require.NoError(t, NewLinkOperation(Options{Config: cfg}).Execute(ctx))
	first := readFile(t, filepath.Join(cfg.VaultPath, "note.md"))
	assert.Equal(t, "[[Alpha]] meets [Beta](beta.md)", first)

	require.NoError(t, NewLinkOperation(Options{Config: cfg}).Execute(ctx))
	assert.Equal(t, first, readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
}

func TestLink_DryRun(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{"note.md": "Alpha"}, "Alpha:[[Alpha]]")
	mgr := status.New(cfg.VaultPath, nil)

	require.NoError(t, NewLinkOperation(Options{Config: cfg, StatusMgr: mgr, DryRun: true}).Execute(ctx))

	assert.Equal(t, "Alpha", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
	_, err := os.Stat(filepath.Join(cfg.VaultPath, "backup"))
	assert.True(t, os.IsNotExist(err), "dry run must not create backups")

	info, err := mgr.Get(ctx, filepath.Join(cfg.VaultPath, "note.md"))
	require.NoError(t, err)
	assert.Equal(t, status.StatusLinked, info.Status)
	assert.Equal(t, 1, info.Replacements)
}

func TestLink_InvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *config.Config)
		wantField string
	}{
		{
			name:      "missing_vault",
			mutate:    func(cfg *config.Config) { cfg.VaultPath = filepath.Join(cfg.VaultPath, "nope") },
			wantField: "vault_path",
		},
		{
			name:      "missing_table",
			mutate:    func(cfg *config.Config) { cfg.TranslationPath = filepath.Join(cfg.VaultPath, "nope.txt") },
			wantField: "translation_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			cfg := newTestVault(t, map[string]string{"note.md": "Alpha"}, "Alpha:[[Alpha]]")
			root := cfg.VaultPath
			tt.mutate(&cfg)

			err := NewLinkOperation(Options{Config: cfg}).Execute(ctx)

			var cerr *config.ConfigError
			require.True(t, errors.As(err, &cerr), "error should be a ConfigError, got %v", err)
			assert.Equal(t, tt.wantField, cerr.Field)

			assert.Equal(t, "Alpha", readFile(t, filepath.Join(root, "note.md")))
			_, err = os.Stat(filepath.Join(root, "backup"))
			assert.True(t, os.IsNotExist(err), "no side effect before validation")
		})
	}
}

func TestLink_Viewer(t *testing.T) {
	t.Run("waits_for_viewer", func(t *testing.T) {
		ctx := testContext(t)
		cfg := newTestVault(t, map[string]string{"note.md": "Alpha"}, "Alpha:[[Alpha]]")
		cfg.ViewerPath = filepath.Join(t.TempDir(), "viewer")
		require.NoError(t, os.WriteFile(cfg.ViewerPath, nil, 0755))

		launcher := &MockLauncher{}
		launcher.On("Launch", mock.Anything, cfg.ViewerPath).Return(nil).Once()

		err := NewLinkOperation(Options{Config: cfg, Launcher: launcher, OpenViewer: true}).Execute(ctx)
		require.NoError(t, err)

		launcher.AssertExpectations(t)
		assert.Equal(t, "[[Alpha]]", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
	})

	t.Run("viewer_failure_stops_run", func(t *testing.T) {
		ctx := testContext(t)
		cfg := newTestVault(t, map[string]string{"note.md": "Alpha"}, "Alpha:[[Alpha]]")
		cfg.ViewerPath = filepath.Join(t.TempDir(), "viewer")
		require.NoError(t, os.WriteFile(cfg.ViewerPath, nil, 0755))

		launcher := &MockLauncher{}
		launcher.On("Launch", mock.Anything, cfg.ViewerPath).Return(errors.New("no display")).Once()

		err := NewLinkOperation(Options{Config: cfg, Launcher: launcher, OpenViewer: true}).Execute(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no display")
		assert.Equal(t, "Alpha", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
	})

	t.Run("missing_viewer", func(t *testing.T) {
		ctx := testContext(t)
		cfg := newTestVault(t, map[string]string{"note.md": "Alpha"}, "Alpha:[[Alpha]]")

		launcher := &MockLauncher{}
		err := NewLinkOperation(Options{Config: cfg, Launcher: launcher, OpenViewer: true}).Execute(ctx)

		var cerr *config.ConfigError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "viewer_path", cerr.Field)
		launcher.AssertNotCalled(t, "Launch", mock.Anything, mock.Anything)
	})
}

func TestLink_Workers(t *testing.T) {
	ctx := testContext(t)

	files := make(map[string]string)
	for i := 0; i < 40; i++ {
		files[filepath.Join("dir", string(rune('a'+i%26))+strings.Repeat("x", i/26)+".md")] = "Alpha then Beta"
	}
	cfg := newTestVault(t, files, "Alpha:[[Alpha]]\nBeta:[[Beta]]")
	cfg.Workers = 8
	mgr := status.New(cfg.VaultPath, nil)

	require.NoError(t, NewLinkOperation(Options{Config: cfg, StatusMgr: mgr}).Execute(ctx))

	for name := range files {
		assert.Equal(t, "[[Alpha]] then [[Beta]]", readFile(t, filepath.Join(cfg.VaultPath, name)))
	}
	assert.Equal(t, 40, mgr.Counts()[status.StatusLinked])
}

func TestLink_ContinuesPastFailedNote(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{"good.md": "Alpha"}, "Alpha:[[Alpha]]")
	mgr := status.New(cfg.VaultPath, nil)

	op := NewLinkOperation(Options{Config: cfg, StatusMgr: mgr}).(*linkOperation)
	linker, err := text.NewLinker([]text.Entry{{Term: "Alpha", Replacement: "[[Alpha]]"}})
	require.NoError(t, err)

	missing := filepath.Join(cfg.VaultPath, "gone.md")
	good := filepath.Join(cfg.VaultPath, "good.md")
	errs := op.substituteAll(ctx, linker, []string{missing, good})

	require.Len(t, errs, 1)
	var serr *SubstitutionIOError
	require.True(t, errors.As(errs[0], &serr))
	assert.Equal(t, missing, serr.Path)
	assert.Equal(t, "read", serr.Op)

	assert.Equal(t, "[[Alpha]]", readFile(t, good))

	info, err := mgr.Get(ctx, missing)
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, info.Status)
}

func TestLink_RewritesNoteWithFailedBackup(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{"note.md": "Alpha"}, "Alpha:[[Alpha]]")
	mgr := status.New(cfg.VaultPath, nil)
	note := filepath.Join(cfg.VaultPath, "note.md")

	mgr.Track(ctx, note, status.FileInfo{Status: status.StatusFailed, Error: errors.New("disk full")})

	op := NewLinkOperation(Options{Config: cfg, StatusMgr: mgr}).(*linkOperation)
	linker, err := text.NewLinker([]text.Entry{{Term: "Alpha", Replacement: "[[Alpha]]"}})
	require.NoError(t, err)

	require.Empty(t, op.substituteAll(ctx, linker, []string{note}))
	assert.Equal(t, "[[Alpha]]", readFile(t, note))

	info, err := mgr.Get(ctx, note)
	require.NoError(t, err)
	assert.Equal(t, status.StatusLinked, info.Status)
	assert.Equal(t, 1, mgr.Processed())
}

func TestLink_ConsoleSummary(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.NewContext(testContext(t), log.New(&buf, zerolog.Nop()))
	cfg := newTestVault(t, map[string]string{"note.md": "Alpha", "other.md": "nothing"}, "Alpha:[[Alpha]]")

	require.NoError(t, NewLinkOperation(Options{Config: cfg, RunID: "run-1"}).Execute(ctx))

	out := buf.String()
	assert.Contains(t, out, "vaultlink")
	assert.Contains(t, out, cfg.String(), "header should name the table and the vault")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "note.md")
	assert.Contains(t, out, "1 linked, 1 unchanged")
	assert.Contains(t, out, "linked 2 notes")
}

func TestRestore(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{"note.md": "See Alpha for details"}, "Alpha: [[Alpha Page]]")

	require.NoError(t, NewLinkOperation(Options{Config: cfg}).Execute(ctx))
	require.Equal(t, "See [[Alpha Page]] for details", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))

	require.NoError(t, NewRestoreOperation(Options{Config: cfg}).Execute(ctx))
	assert.Equal(t, "See Alpha for details", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
}

func TestRestore_ConsoleHeader(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.NewContext(testContext(t), log.New(&buf, zerolog.Nop()))
	cfg := newTestVault(t, map[string]string{
		"note.md":        "changed",
		"backup/note.md": "original",
	}, "")

	require.NoError(t, NewRestoreOperation(Options{Config: cfg}).Execute(ctx))

	out := buf.String()
	assert.Contains(t, out, "restoring "+cfg.VaultPath)
	assert.Contains(t, out, "restored 1 notes")
}

func TestRestore_DryRun(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{
		"note.md":        "changed",
		"backup/note.md": "original",
	}, "")

	require.NoError(t, NewRestoreOperation(Options{Config: cfg, DryRun: true}).Execute(ctx))
	assert.Equal(t, "changed", readFile(t, filepath.Join(cfg.VaultPath, "note.md")))
}

func TestRestore_NoBackups(t *testing.T) {
	ctx := testContext(t)
	cfg := newTestVault(t, map[string]string{"note.md": "x"}, "")

	assert.Error(t, NewRestoreOperation(Options{Config: cfg}).Execute(ctx))
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()

	cfg := newTestVault(t, map[string]string{"note.md": "Alpha and Beta"}, "Alpha:[[Alpha]]\n")
	note := filepath.Join(cfg.VaultPath, "note.md")

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{Config: cfg}, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		data, _ := os.ReadFile(note)
		return string(data) == "[[Alpha]] and Beta"
	}, 5*time.Second, 20*time.Millisecond, "first run should link the note")

	// the watcher may not be registered yet, so keep saving until a re-run lands
	require.Eventually(t, func() bool {
		_ = os.WriteFile(cfg.TranslationPath, []byte("Alpha:[[Alpha]]\nBeta:[[Beta]]\n"), 0644)
		data, _ := os.ReadFile(note)
		return string(data) == "[[Alpha]] and [[Beta]]"
	}, 5*time.Second, 100*time.Millisecond, "table change should trigger a re-run")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_InvalidConfig(t *testing.T) {
	cfg := newTestVault(t, nil, "")
	cfg.VaultPath = filepath.Join(cfg.VaultPath, "nope")

	err := Watch(testContext(t), Options{Config: cfg}, 0)

	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
}

type funcOperation func(ctx context.Context) error

func (f funcOperation) Execute(ctx context.Context) error { return f(ctx) }

func TestRunner(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("returns_error", func(t *testing.T) {
		r := NewRunner(&logger)
		err := r.Run(context.Background(), funcOperation(func(ctx context.Context) error {
			return errors.New("boom")
		}))
		assert.EqualError(t, err, "boom")
	})

	t.Run("waits_for_operation_after_cancel", func(t *testing.T) {
		r := NewRunner(&logger)
		ctx, cancel := context.WithCancel(context.Background())

		finished := false
		err := r.Run(ctx, funcOperation(func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			finished = true
			return ctx.Err()
		}))

		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, finished, "Run should not return before the operation does")
	})

	t.Run("link_leaves_no_temp_files_after_cancel", func(t *testing.T) {
		files := map[string]string{}
		for i := 0; i < 50; i++ {
			files[fmt.Sprintf("note%02d.md", i)] = "Alpha"
		}
		cfg := newTestVault(t, files, "Alpha:[[Alpha]]")
		cfg.Workers = 4

		ctx, cancel := context.WithCancel(testContext(t))
		go func() {
			time.Sleep(time.Millisecond)
			cancel()
		}()
		_ = NewRunner(&logger).Run(ctx, NewLinkOperation(Options{Config: cfg}))

		leftovers, err := filepath.Glob(filepath.Join(cfg.VaultPath, ".*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)
		backups, err := filepath.Glob(filepath.Join(cfg.VaultPath, "backup", ".*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, backups)
	})
}
