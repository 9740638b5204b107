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

import "fmt"

// ClassificationReadError is logged when a candidate note cannot be read for
// sniffing. The file is treated as ineligible.
type ClassificationReadError struct {
	Path string
	Err  error
}

func (e *ClassificationReadError) Error() string {
	return fmt.Sprintf("reading %s for classification: %v", e.Path, e.Err)
}

func (e *ClassificationReadError) Unwrap() error { return e.Err }

// BackupWriteError is recorded when a file could not be copied into the
// backup dir. The file is left as is and the pass continues.
type BackupWriteError struct {
	Path string
	Err  error
}

func (e *BackupWriteError) Error() string {
	return fmt.Sprintf("backing up %s: %v", e.Path, e.Err)
}

func (e *BackupWriteError) Unwrap() error { return e.Err }
