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
Package status tracks what a single pass over a vault did to each file.

	┌──────────────┐    Track     ┌──────────────┐
	│  operation   │ ───────────▶ │   Manager    │
	│  (link etc)  │              │  files map   │
	└──────────────┘              └──────┬───────┘
	                                     │ RenderSummary
	                                     ▼
	                              ┌──────────────┐
	                              │ pterm table  │
	                              └──────────────┘

The Manager also owns the writes made inside the vault. Flat backups and
rewritten notes both go through WriteFileAtomic, which writes a uniquely named
temp file beside the target and renames it into place.
*/
package status
