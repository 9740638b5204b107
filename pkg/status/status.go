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

package status

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what a run did to a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusBackedUp             // Original content copied to the backup dir
	StatusLinked               // Content rewritten with at least one replacement
	StatusUnchanged            // Content rewritten, nothing replaced
	StatusSkipped              // Not eligible or empty
	StatusFailed               // An IO error occurred
	StatusRestored             // Content copied back from the backup dir
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusBackedUp:
		return "backed up"
	case StatusLinked:
		return "linked"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains the outcome for one file
type FileInfo struct {
	Path         string     // Path relative to the vault root
	Status       FileStatus // Outcome
	Replacements int        // Number of replacements made
	Error        error      // Any error associated with this file
}

// 🔧 Manager tracks file outcomes and progress for one pass over a vault,
// and owns the writes made inside it
type Manager struct {
	root      string          // Vault root
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New(root string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		root:      filepath.Clean(root),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// Root returns the vault root
func (m *Manager) Root() string {
	return m.root
}

// Rel returns path relative to the vault root, or path itself when it is
// outside of it
func (m *Manager) Rel(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// WriteFileAtomic writes content to a uniquely named temp file next to path
// and renames it over path, keeping the existing file mode
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Status tracking

// Track records the outcome for path
func (m *Manager) Track(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Path = m.Rel(path)
	m.files[info.Path] = info

	if info.Error != nil {
		m.logger.Warn().Err(info.Error).Str("path", info.Path).Msg(m.formatter.FormatError(info.Error))
		return
	}
	m.logger.Debug().
		Str("path", info.Path).
		Str("status", info.Status.String()).
		Int("replacements", info.Replacements).
		Msg(m.formatter.FormatFileOperation(info))
}

// Get returns the outcome recorded for path
func (m *Manager) Get(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[m.Rel(path)]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// List returns every recorded outcome sorted by path
func (m *Manager) List(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Counts returns the number of files per status
func (m *Manager) Counts() map[FileStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[FileStatus]int)
	for _, info := range m.files {
		counts[info.Status]++
	}
	return counts
}

// Reset forgets every recorded outcome
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]FileInfo)
	m.total = 0
	m.processed = 0
}

// Progress reporting

func (m *Manager) StartOperation(ctx context.Context, name string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Info().Str("operation", name).Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

// Advance marks one more file as processed. Safe for concurrent use.
func (m *Manager) Advance(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed++
	m.logger.Trace().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info().
		Str("operation", name).
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

// Processed returns the number of files processed by the current operation
func (m *Manager) Processed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed
}
