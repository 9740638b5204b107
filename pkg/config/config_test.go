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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// 🧪 newVault creates a vault directory and a translation table
func newVault(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	vault := filepath.Join(dir, "vault")
	require.NoError(t, os.MkdirAll(vault, 0755))
	tablePath := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(tablePath, []byte("Alpha:[[Alpha]]\n"), 0644))
	return vault, tablePath
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "json",
			filename: "conf.json",
			config:   `{"vault_path": "/v", "translation_path": "/t.txt", "viewer_path": "/bin/viewer"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/v", cfg.VaultPath, "vault path should match")
				assert.Equal(t, "/t.txt", cfg.TranslationPath, "translation path should match")
				assert.Equal(t, "/bin/viewer", cfg.ViewerPath, "viewer path should match")
			},
		},
		{
			name:     "yaml",
			filename: "conf.yaml",
			config: `
vault_path: /v
translation_path: /t.txt
ignore:
  - "templates/**"
workers: 4
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/v", cfg.VaultPath)
				assert.Equal(t, []string{"templates/**"}, cfg.Ignore)
				assert.Equal(t, 4, cfg.Workers)
			},
		},
		{
			name:     "hcl",
			filename: "conf.hcl",
			config: `
vault_path       = "/v"
translation_path = "/t.txt"
backup_dir       = "snapshots"
ignore           = ["drafts/**"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/v", cfg.VaultPath)
				assert.Equal(t, "snapshots", cfg.BackupDir)
				assert.Equal(t, []string{"drafts/**"}, cfg.Ignore)
			},
		},
		{
			name:     "toml",
			filename: "conf.toml",
			config: `
vault_path = "/v"
translation_path = "/t.txt"
note_extension = ".markdown"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/v", cfg.VaultPath)
				assert.Equal(t, ".markdown", cfg.NoteExtension)
			},
		},
		{
			name:     "empty_file",
			filename: "conf.json",
			config:   "",
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.VaultPath)
			},
		},
		{
			name:        "unknown_json_field",
			filename:    "conf.json",
			config:      `{"vault": "/v"}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "unknown_yaml_field",
			filename:    "conf.yaml",
			config:      "vault: /v\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unsupported_extension",
			filename:    "conf.ini",
			config:      "vault=/v",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing config file should succeed")

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, path, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// 🧪 TestSaveRoundTrip saves and reloads the config in every format
func TestSaveRoundTrip(t *testing.T) {
	want := &Config{
		VaultPath:       "/vault",
		TranslationPath: "/vault/links.txt",
		ViewerPath:      "/usr/bin/viewer",
		BackupDir:       "backup",
		NoteExtension:   ".md",
		Ignore:          []string{"templates/**", "*.tmp"},
		Workers:         2,
	}

	for _, name := range []string{"conf.json", "conf.yaml", "conf.hcl", "conf.toml"} {
		t.Run(name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			path := filepath.Join(t.TempDir(), "nested", name)

			require.NoError(t, Save(ctx, path, want))

			got, err := Load(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, want.VaultPath, got.VaultPath)
			assert.Equal(t, want.TranslationPath, got.TranslationPath)
			assert.Equal(t, want.ViewerPath, got.ViewerPath)
			assert.Equal(t, want.BackupDir, got.BackupDir)
			assert.Equal(t, want.NoteExtension, got.NoteExtension)
			assert.Equal(t, want.Ignore, got.Ignore)
			assert.Equal(t, want.Workers, got.Workers)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "configuration", "conf.json")

	cfg, err := LoadOrCreate(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, cfg.VaultPath)

	_, err = os.Stat(path)
	require.NoError(t, err, "config file should have been created")
}

func TestSave_KeepsNeighbourTmp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	scratch := path + ".tmp"
	require.NoError(t, os.WriteFile(scratch, []byte("scratch"), 0644))

	require.NoError(t, Save(ctx, path, &Config{VaultPath: "/vault"}))

	data, err := os.ReadFile(scratch)
	require.NoError(t, err)
	assert.Equal(t, "scratch", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp file should be left behind")
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{NoteExtension: "markdown"}.WithDefaults()
	assert.Equal(t, DefaultBackupDir, cfg.BackupDir)
	assert.Equal(t, ".markdown", cfg.NoteExtension)
	assert.Equal(t, DefaultWorkers, cfg.Workers)

	cfg = Config{}.WithDefaults()
	assert.Equal(t, DefaultNoteExtension, cfg.NoteExtension)
}

func TestValidate(t *testing.T) {
	vault, tablePath := newVault(t)

	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{
			name: "valid",
			cfg:  Config{VaultPath: vault, TranslationPath: tablePath, BackupDir: "backup"},
		},
		{
			name:      "empty_vault",
			cfg:       Config{TranslationPath: tablePath},
			wantField: "vault_path",
		},
		{
			name:      "vault_is_a_file",
			cfg:       Config{VaultPath: tablePath, TranslationPath: tablePath},
			wantField: "vault_path",
		},
		{
			name:      "missing_table",
			cfg:       Config{VaultPath: vault, TranslationPath: filepath.Join(vault, "nope.txt")},
			wantField: "translation_path",
		},
		{
			name:      "table_is_a_directory",
			cfg:       Config{VaultPath: vault, TranslationPath: vault},
			wantField: "translation_path",
		},
		{
			name:      "nested_backup_dir",
			cfg:       Config{VaultPath: vault, TranslationPath: tablePath, BackupDir: "a/b"},
			wantField: "backup_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "error should be a ConfigError")
			assert.Equal(t, tt.wantField, cerr.Field)
			assert.NotEmpty(t, cerr.Hint)
		})
	}
}

func TestValidateViewer(t *testing.T) {
	_, tablePath := newVault(t)

	require.NoError(t, Config{ViewerPath: tablePath}.ValidateViewer())

	err := Config{}.ValidateViewer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-o PATH")
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{
		Field: "vault_path",
		Path:  "/nope",
		Hint:  "try using -v PATH",
		Err:   os.ErrNotExist,
	}
	assert.Equal(t, "invalid vault_path /nope: file does not exist (try using -v PATH)", err.Error())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidateVault_IgnoresTable(t *testing.T) {
	vault, _ := newVault(t)

	cfg := Config{VaultPath: vault, TranslationPath: filepath.Join(vault, "gone.txt")}
	assert.NoError(t, cfg.ValidateVault())
	assert.Error(t, cfg.Validate())
}
