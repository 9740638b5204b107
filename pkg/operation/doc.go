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

/*
Package operation runs whole passes over a vault.

🎯 Purpose:
- Ties the vault layout, the translation table and the linker together
- Owns the order of the passes and what happens when a file fails

🔄 Link flow:
1. Validate the vault and table paths (nothing is touched on failure)
2. Optionally start the viewer and wait for it to exit
3. Walk the vault and load the table
4. Back up every file (flat, keyed by base name)
5. Classify, then rewrite every note except the table itself
6. Print the summary

⚡ Failure handling:
- Backup failures are warnings, the note is still rewritten
- A note that cannot be read or written is a SubstitutionIOError; the rest
  of the vault is still processed and all errors are returned joined

🔍 Example:

	op := operation.NewLinkOperation(operation.Options{Config: *cfg})
	err := operation.NewRunner(logger).Run(ctx, op)

Watch wraps the link operation and re-runs it whenever the table is saved.
*/
package operation
