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
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 📋 RenderSummary writes a table of every tracked file that was touched or
// failed, followed by per-status totals
func (m *Manager) RenderSummary(w io.Writer) error {
	data := pterm.TableData{{"File", "Status", "Replacements", "Error"}}
	for _, info := range m.List(context.Background()) {
		if info.Status == StatusSkipped {
			continue
		}
		errText := ""
		if info.Error != nil {
			errText = info.Error.Error()
		}
		data = append(data, []string{
			info.Path,
			info.Status.String(),
			strconv.Itoa(info.Replacements),
			errText,
		})
	}

	if len(data) > 1 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Errorf("rendering summary table: %w", err)
		}
		fmt.Fprintln(w, table)
	}

	counts := m.Counts()
	fmt.Fprintf(w, "%d linked, %d unchanged, %d backed up, %d restored, %d skipped, %d failed\n",
		counts[StatusLinked],
		counts[StatusUnchanged],
		counts[StatusBackedUp],
		counts[StatusRestored],
		counts[StatusSkipped],
		counts[StatusFailed],
	)
	return nil
}
