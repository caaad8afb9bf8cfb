/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package authz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
)

var errEmptyPath = errors.New("authorization file path is empty")

// StaticGate is always authorized.
type StaticGate struct{}

func (StaticGate) Status() models.AuthorizationStatus { return models.AuthAuthorized }

func (StaticGate) RequestAuthorization() error { return nil }

func (StaticGate) Watch(context.Context, func(models.AuthorizationStatus)) error { return nil }

// FileGate reads consent from a file whose content is the status, for example
// "authorized" or "denied". A missing file is not_determined.
type FileGate struct {
	path   string
	logger logger.Logger
}

// NewFileGate creates a gate backed by path.
func NewFileGate(path string, log logger.Logger) (*FileGate, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve authorization file: %w", err)
	}

	return &FileGate{path: abs, logger: log}, nil
}

// Status reads the consent file.
func (g *FileGate) Status() models.AuthorizationStatus {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.AuthNotDetermined
	}

	if err != nil {
		g.logger.Warn().Err(err).Str("path", g.path).Msg("Cannot read authorization file")
		return models.AuthUnknown
	}

	return models.ParseAuthorizationStatus(strings.ToLower(strings.TrimSpace(string(data))))
}

// RequestAuthorization tells the operator how to grant access.
func (g *FileGate) RequestAuthorization() error {
	g.logger.Warn().
		Str("path", g.path).
		Msgf("Network observation requires consent, write %q to the authorization file", models.AuthAuthorized)

	return nil
}

// Watch watches the file's directory so creation and removal are seen.
func (g *FileGate) Watch(ctx context.Context, onChange func(models.AuthorizationStatus)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create authorization watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(g.path)); err != nil {
		_ = watcher.Close()

		return fmt.Errorf("watch %s: %w", filepath.Dir(g.path), err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(event.Name) != g.path {
					continue
				}

				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				onChange(g.Status())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				g.logger.Warn().Err(err).Msg("Authorization watcher error")
			}
		}
	}()

	return nil
}
