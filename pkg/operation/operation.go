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

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/vaultlink/pkg/config"
	"github.com/walteh/vaultlink/pkg/status"
	"github.com/walteh/vaultlink/pkg/viewer"
)

// 🎯 Operation is one pass over a vault
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains everything an operation needs
type Options struct {
	// Config is the resolved configuration
	Config config.Config
	// StatusMgr tracks per-file outcomes; created from Config when nil
	StatusMgr *status.Manager
	// Launcher starts the viewer; an ExecLauncher when nil
	Launcher viewer.Launcher
	// OpenViewer launches the viewer and waits for it before touching files
	OpenViewer bool
	// DryRun computes replacements without writing backups or notes
	DryRun bool
	// RunID tags every log line of the run; generated when empty
	RunID string
}

// 🧱 BaseOperation holds the options shared by every operation
type BaseOperation struct {
	Options
}

// 🏭 NewBaseOperation fills in defaults for opts
func NewBaseOperation(opts Options) BaseOperation {
	opts.Config = opts.Config.WithDefaults()
	if opts.StatusMgr == nil {
		opts.StatusMgr = status.New(opts.Config.VaultPath, nil)
	}
	if opts.Launcher == nil {
		opts.Launcher = viewer.NewExecLauncher()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return BaseOperation{Options: opts}
}

// withRun returns ctx carrying a logger tagged with the run id
func (op *BaseOperation) withRun(ctx context.Context, name string) context.Context {
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", op.RunID).
		Str("operation", name).
		Logger()
	return logger.WithContext(ctx)
}
