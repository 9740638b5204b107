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

// Package viewer starts the companion note viewer and waits for it to exit.
package viewer

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🚀 Launcher starts a viewer executable and blocks until it exits
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// ExecLauncher runs the viewer as a child process
type ExecLauncher struct {
	Args []string // Extra arguments passed to the viewer
}

var _ Launcher = (*ExecLauncher)(nil)

// NewExecLauncher creates a launcher passing args to the viewer
func NewExecLauncher(args ...string) *ExecLauncher {
	return &ExecLauncher{Args: args}
}

// Launch starts the viewer at path and waits for it. A viewer that cannot be
// started is an error; a viewer that exits non-zero is only logged, the user
// closed it one way or another.
func (l *ExecLauncher) Launch(ctx context.Context, path string) error {
	logger := zerolog.Ctx(ctx)

	cmdPath, err := exec.LookPath(path)
	if err != nil {
		return errors.Errorf("finding viewer %s: %w", path, err)
	}

	cmd := exec.CommandContext(ctx, cmdPath, l.Args...)
	if err := cmd.Start(); err != nil {
		return errors.Errorf("starting viewer: %w", err)
	}

	logger.Info().Str("viewer", cmdPath).Int("pid", cmd.Process.Pid).Msg("viewer started, waiting for it to exit")

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.Errorf("waiting for viewer: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Warn().Int("exit_code", exitErr.ExitCode()).Msg("viewer exited with an error")
			return nil
		}
		return errors.Errorf("waiting for viewer: %w", err)
	}

	logger.Info().Str("viewer", cmdPath).Msg("viewer closed")
	return nil
}
