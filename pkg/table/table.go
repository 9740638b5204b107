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

package table

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/vaultlink/pkg/config"
	"github.com/walteh/vaultlink/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// Separator splits a line into term and replacement. Only the first one
// counts, so replacements may contain colons (e.g. URLs).
const Separator = ":"

// 📚 Table is the ordered translation table
type Table struct {
	path    string
	entries []text.Entry
	index   map[string]int
}

// 🎯 Load reads the translation table at path
func Load(ctx context.Context, path string) (*Table, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading translation table")

	f, err := os.Open(path)
	if err != nil {
		return nil, &config.ConfigError{
			Field: "translation_path",
			Path:  path,
			Hint:  "check the file exists or pass it with -t PATH",
			Err:   err,
		}
	}
	defer f.Close()

	tbl, err := Parse(ctx, f)
	if err != nil {
		return nil, errors.Errorf("parsing translation table %s: %w", path, err)
	}
	tbl.path = path
	return tbl, nil
}

// 📝 Parse reads `term:replacement` lines from r. Lines without a separator
// or with an empty term are skipped. A repeated term keeps its first position
// and takes the last replacement.
func Parse(ctx context.Context, r io.Reader) (*Table, error) {
	logger := zerolog.Ctx(ctx)

	tbl := &Table{index: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		term, replacement, ok := ParseLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				logger.Debug().Int("line", lineNo).Str("content", line).Msg("skipping translation line")
			}
			continue
		}
		tbl.put(term, replacement)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading lines: %w", err)
	}

	logger.Debug().Int("entries", len(tbl.entries)).Msg("translation table parsed")
	return tbl, nil
}

// ParseLine splits one line on the first separator and trims both halves.
func ParseLine(line string) (term, replacement string, ok bool) {
	term, replacement, found := strings.Cut(line, Separator)
	if !found {
		return "", "", false
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return "", "", false
	}
	return term, strings.TrimSpace(replacement), true
}

func (t *Table) put(term, replacement string) {
	if i, ok := t.index[term]; ok {
		t.entries[i].Replacement = replacement
		return
	}
	t.index[term] = len(t.entries)
	t.entries = append(t.entries, text.Entry{Term: term, Replacement: replacement})
}

// Path returns the file the table was loaded from, empty when parsed from a reader
func (t *Table) Path() string {
	return t.path
}

// Entries returns a copy of the entries in table order
func (t *Table) Entries() []text.Entry {
	out := make([]text.Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Linker compiles the table into a text.Linker
func (t *Table) Linker() (*text.Linker, error) {
	return text.NewLinker(t.Entries())
}
