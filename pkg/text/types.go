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

// 🔄 Entry is a single translation table row: every accepted occurrence of
// Term is replaced with Replacement.
type Entry struct {
	Term        string
	Replacement string
}

// 📊 Result contains the outcome of linking one piece of content
type Result struct {
	// Original is the content before any entry was applied
	Original string

	// Modified is the content after every entry was applied in order
	Modified string

	// WasModified indicates if any replacement was made
	WasModified bool

	// ReplacementCount is the number of spans replaced across all entries
	ReplacementCount int

	// ExcludedCount is the number of matches rejected by the exclusion filter
	ExcludedCount int
}

// Span is a half-open byte range [Start, End) into a text.
type Span struct {
	Start int
	End   int
}
