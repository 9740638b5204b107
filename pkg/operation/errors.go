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

import "fmt"

// SubstitutionIOError is reported when a note cannot be read or rewritten.
// The note keeps its previous content and the run moves on to the next one.
type SubstitutionIOError struct {
	Path string
	Op   string // read or write
	Err  error
}

func (e *SubstitutionIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SubstitutionIOError) Unwrap() error { return e.Err }
