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
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/walteh/vaultlink/pkg/config"
	"github.com/walteh/vaultlink/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// DefaultDebounce is how long the translation table has to stay quiet before
// a re-run starts
const DefaultDebounce = 250 * time.Millisecond

// 👀 Watch runs the link operation once, then again every time the
// translation table is saved, until ctx is done. Only the first run opens the
// viewer. A failing re-run is logged and watching continues; a configuration
// error on the first run is returned.
func Watch(ctx context.Context, opts Options, debounce time.Duration) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	run := func(first bool) error {
		o := opts
		o.RunID = ""
		o.OpenViewer = first && opts.OpenViewer
		return NewLinkOperation(o).Execute(ctx)
	}

	if err := run(true); err != nil {
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			return err
		}
		logger.Warn().Err(err).Msg("link run failed")
	}

	tablePath, err := filepath.Abs(opts.Config.TranslationPath)
	if err != nil {
		return errors.Errorf("resolving translation table path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// editors often save by renaming over the file, so watch the directory
	if err := watcher.Add(filepath.Dir(tablePath)); err != nil {
		return errors.Errorf("watching %s: %w", filepath.Dir(tablePath), err)
	}

	console.Infof("watching %s for changes", tablePath)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != tablePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug().Str("event", event.Op.String()).Msg("translation table changed")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := run(false); err != nil {
				logger.Warn().Err(err).Msg("link run failed")
				console.Errorf("link run failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}
