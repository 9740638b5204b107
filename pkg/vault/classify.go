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
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// markdownHints are checked against the content of extensionless files
var markdownHints = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s+\S`),               // heading
	regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`),           // image
	regexp.MustCompile(`\[[^\]]+\]\([^)]*\)`),            // link
	regexp.MustCompile(`(?m)^[*+-]\s+\S`),                // list item
	regexp.MustCompile(`\*\*[^*\n]+\*\*`),                // bold
	regexp.MustCompile(`(^|[^*])\*[^*\s][^*\n]*\*`),      // italic
	regexp.MustCompile("(?m)^```"),                       // fenced code
	regexp.MustCompile(`\[\[[^\]]+\]\]`),                 // wiki link
	regexp.MustCompile(`(?s)\A---\r?\n.*?\r?\n---(\r?\n|\z)`), // front matter
	regexp.MustCompile(`(^|\s)#[\p{L}\p{N}_/-]+`),        // tag
}

// 🔍 Classifier decides which files in a vault are notes
type Classifier struct {
	root      string
	backupDir string
	extension string
}

// NewClassifier creates a classifier for the vault at root. Anything under
// backupDir is never a note.
func NewClassifier(root, backupDir, extension string) *Classifier {
	return &Classifier{
		root:      filepath.Clean(root),
		backupDir: backupDir,
		extension: extension,
	}
}

// IsEligible reports whether path is a note. Files carrying the note
// extension are accepted without being read; extensionless files are sniffed
// for markdown; anything else is rejected.
func (c *Classifier) IsEligible(ctx context.Context, path string) bool {
	if c.InBackupDir(path) {
		return false
	}

	name := filepath.Base(path)
	if strings.HasSuffix(name, c.extension) {
		return true
	}
	if filepath.Ext(name) != "" {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(&ClassificationReadError{Path: path, Err: err}).Msg("skipping unreadable file")
		return false
	}

	return LooksLikeMarkdown(string(data))
}

// InBackupDir reports whether any segment of path relative to the vault root
// is the backup dir
func (c *Classifier) InBackupDir(path string) bool {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		rel = path
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == c.backupDir {
			return true
		}
	}
	return false
}

// LooksLikeMarkdown reports whether content carries any common markdown
// construct
func LooksLikeMarkdown(content string) bool {
	for _, re := range markdownHints {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
