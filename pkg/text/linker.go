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

package text

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// rule is an Entry with its compiled pattern
type rule struct {
	Entry
	pattern *regexp.Regexp
}

// 🔗 Linker applies an ordered list of entries to note content
type Linker struct {
	rules []rule
}

// 🏭 NewLinker compiles the entries in order. Terms are quoted in full so
// every regex metacharacter is matched literally.
func NewLinker(entries []Entry) (*Linker, error) {
	rules := make([]rule, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Term) == "" {
			return nil, errors.Errorf("entry %d: term is required", i)
		}
		pattern, err := regexp.Compile(regexp.QuoteMeta(e.Term))
		if err != nil {
			return nil, errors.Errorf("entry %d: compiling %q: %w", i, e.Term, err)
		}
		rules = append(rules, rule{Entry: e, pattern: pattern})
	}
	return &Linker{rules: rules}, nil
}

// Len returns the number of entries
func (l *Linker) Len() int {
	return len(l.rules)
}

// 🎯 Apply folds every entry over content. Each entry sees the text produced
// by the entries before it.
func (l *Linker) Apply(ctx context.Context, content string) *Result {
	logger := zerolog.Ctx(ctx)

	result := &Result{
		Original: content,
		Modified: content,
	}
	if content == "" {
		return result
	}

	current := content
	for _, r := range l.rules {
		next, replaced, excluded := r.apply(current)
		if replaced > 0 || excluded > 0 {
			logger.Trace().
				Str("term", r.Term).
				Int("replaced", replaced).
				Int("excluded", excluded).
				Msg("applied entry")
		}
		result.ReplacementCount += replaced
		result.ExcludedCount += excluded
		current = next
	}

	result.Modified = current
	result.WasModified = current != content
	return result
}

func (r rule) apply(text string) (string, int, int) {
	if text == "" {
		return text, 0, 0
	}
	accepted, excluded := r.spans(text)
	if len(accepted) == 0 {
		return text, 0, excluded
	}
	return Splice(text, accepted, r.Replacement), len(accepted), excluded
}

// spans returns the matches of the rule that survive the exclusion filter,
// plus the count of rejected ones
func (r rule) spans(text string) ([]Span, int) {
	matches := r.pattern.FindAllStringIndex(text, -1)
	accepted := make([]Span, 0, len(matches))
	excluded := 0
	for _, m := range matches {
		if Excluded(text, m[0], m[1]) {
			excluded++
			continue
		}
		accepted = append(accepted, Span{Start: m[0], End: m[1]})
	}
	return accepted, excluded
}

// 🚫 Excluded reports whether the match text[start:end] already sits inside
// link, heading or tag syntax:
//   - the byte before it is '#' or '['
//   - the byte before it is a space that follows '#'
//   - the byte after it is ']'
func Excluded(text string, start, end int) bool {
	if start > 0 {
		switch text[start-1] {
		case '#', '[':
			return true
		}
	}
	if start > 1 && text[start-1] == ' ' && text[start-2] == '#' {
		return true
	}
	if end < len(text) && text[end] == ']' {
		return true
	}
	return false
}

// ✂️ Splice replaces every span with replacement in one pass. Spans must be
// ordered and non-overlapping, with offsets into the unmodified text.
func Splice(text string, spans []Span, replacement string) string {
	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(replacement)))

	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.Start])
		b.WriteString(replacement)
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}
