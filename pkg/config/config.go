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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📁 Defaults
const (
	DefaultPath          = "configuration/conf.json"
	DefaultBackupDir     = "backup"
	DefaultNoteExtension = ".md"
	DefaultWorkers       = 1
)

// 🔌 Parser is the interface for config file formats
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 💾 Encode serializes the config in the parser's format
	Encode(ctx context.Context, cfg *Config) ([]byte, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the persisted run configuration
type Config struct {
	VaultPath       string   `json:"vault_path" yaml:"vault_path" toml:"vault_path"`
	TranslationPath string   `json:"translation_path" yaml:"translation_path" toml:"translation_path"`
	ViewerPath      string   `json:"viewer_path" yaml:"viewer_path" toml:"viewer_path"`
	BackupDir       string   `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty" toml:"backup_dir,omitempty"`
	NoteExtension   string   `json:"note_extension,omitempty" yaml:"note_extension,omitempty" toml:"note_extension,omitempty"`
	Ignore          []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`
	Workers         int      `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`

	location string
}

// Location returns the file the config was loaded from
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔧 WithDefaults returns a copy with empty optional fields filled in
func (cfg Config) WithDefaults() Config {
	if cfg.BackupDir == "" {
		cfg.BackupDir = DefaultBackupDir
	}
	if cfg.NoteExtension == "" {
		cfg.NoteExtension = DefaultNoteExtension
	}
	if !strings.HasPrefix(cfg.NoteExtension, ".") {
		cfg.NoteExtension = "." + cfg.NoteExtension
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	return cfg
}

// 🔍 Validate checks that the vault and translation table exist
func (cfg Config) Validate() error {
	if err := cfg.ValidateVault(); err != nil {
		return err
	}

	info, err := os.Stat(cfg.TranslationPath)
	if cfg.TranslationPath == "" || err != nil || info.IsDir() {
		if err == nil && cfg.TranslationPath != "" {
			err = errors.New("is a directory")
		}
		return &ConfigError{
			Field: "translation_path",
			Path:  cfg.TranslationPath,
			Hint:  "the configuration file might be empty, try using -t PATH",
			Err:   err,
		}
	}

	return nil
}

// 🔍 ValidateVault checks that the vault exists and the backup dir is a
// plain name inside it
func (cfg Config) ValidateVault() error {
	info, err := os.Stat(cfg.VaultPath)
	if cfg.VaultPath == "" || err != nil || !info.IsDir() {
		if err == nil && cfg.VaultPath != "" {
			err = errors.New("not a directory")
		}
		return &ConfigError{
			Field: "vault_path",
			Path:  cfg.VaultPath,
			Hint:  "the configuration file might be empty, try using -v PATH",
			Err:   err,
		}
	}

	if strings.ContainsAny(cfg.BackupDir, `/\`) {
		return &ConfigError{
			Field: "backup_dir",
			Path:  cfg.BackupDir,
			Hint:  "backup_dir is a single directory name inside the vault",
		}
	}

	return nil
}

// 🔍 ValidateViewer checks the viewer executable exists
func (cfg Config) ValidateViewer() error {
	info, err := os.Stat(cfg.ViewerPath)
	if cfg.ViewerPath == "" || err != nil || info.IsDir() {
		return &ConfigError{
			Field: "viewer_path",
			Path:  cfg.ViewerPath,
			Hint:  "set viewer_path in the configuration file or pass it with -o PATH",
			Err:   err,
		}
	}
	return nil
}

// 📝 String returns a string representation of the config
func (cfg Config) String() string {
	return cfg.TranslationPath + " -> " + cfg.VaultPath
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	var cfg *Config
	if len(bytes.TrimSpace(data)) == 0 {
		cfg = &Config{}
	} else {
		cfg, err = p.Parse(ctx, data)
		if err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
	}
	cfg.location = path

	return cfg, nil
}

// 🏭 LoadOrCreate loads the config at path, writing an empty one first when
// the file does not exist yet
func LoadOrCreate(ctx context.Context, path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		zerolog.Ctx(ctx).Info().Str("path", path).Msg("no configuration file, creating one")
		if err := Save(ctx, path, &Config{}); err != nil {
			return nil, errors.Errorf("creating config file: %w", err)
		}
	} else if err != nil {
		return nil, errors.Errorf("checking config file: %w", err)
	}
	return Load(ctx, path)
}

// 💾 Save writes cfg to path in the format picked by its extension
func Save(ctx context.Context, path string, cfg *Config) error {
	p := GetParser(path)
	if p == nil {
		return errors.Errorf("no parser found for file: %s", path)
	}

	data, err := p.Encode(ctx, cfg)
	if err != nil {
		return errors.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("configuration saved")
	return nil
}
