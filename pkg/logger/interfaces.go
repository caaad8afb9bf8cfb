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

package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the structured logging surface injected into every component.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	Panic() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) zerolog.Logger
	WithFields(fields map[string]interface{}) zerolog.Logger
	SetLevel(level zerolog.Level)
	SetDebug(debug bool)
}

// Wrap adapts a zerolog.Logger to the Logger interface. Components use it to
// derive a sub-logger that carries extra context fields.
func Wrap(zl zerolog.Logger) Logger {
	return &wrapped{logger: zl}
}

type wrapped struct {
	logger zerolog.Logger
}

func (w *wrapped) Trace() *zerolog.Event { return w.logger.Trace() }
func (w *wrapped) Debug() *zerolog.Event { return w.logger.Debug() }
func (w *wrapped) Info() *zerolog.Event  { return w.logger.Info() }
func (w *wrapped) Warn() *zerolog.Event  { return w.logger.Warn() }
func (w *wrapped) Error() *zerolog.Event { return w.logger.Error() }
func (w *wrapped) Fatal() *zerolog.Event { return w.logger.Fatal() }
func (w *wrapped) Panic() *zerolog.Event { return w.logger.Panic() }
func (w *wrapped) With() zerolog.Context { return w.logger.With() }

func (w *wrapped) WithComponent(component string) zerolog.Logger {
	return w.logger.With().Str("component", component).Logger()
}

func (w *wrapped) WithFields(fields map[string]interface{}) zerolog.Logger {
	return w.logger.With().Fields(fields).Logger()
}

func (w *wrapped) SetLevel(level zerolog.Level) { w.logger = w.logger.Level(level) }

func (w *wrapped) SetDebug(debug bool) {
	if debug {
		w.SetLevel(zerolog.DebugLevel)
	} else {
		w.SetLevel(zerolog.InfoLevel)
	}
}

// NewTestLogger creates a no-op logger for testing that discards all output
func NewTestLogger() Logger {
	return Wrap(zerolog.New(io.Discard).Level(zerolog.Disabled))
}
