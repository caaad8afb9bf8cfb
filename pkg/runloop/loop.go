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

// Package runloop provides a single-goroutine cooperative scheduler. Every
// task posted to a Loop runs on the same goroutine in FIFO order, so state
// owned by loop tasks needs no locking. Blocking work runs elsewhere and
// posts its continuation back.
package runloop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/netbridge/pkg/logger"
)

// Loop is a cooperative task scheduler.
type Loop struct {
	clock  Clock
	logger logger.Logger

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates a loop. A nil clock means the real clock.
func New(clock Clock, log logger.Logger) *Loop {
	if clock == nil {
		clock = RealClock()
	}

	return &Loop{
		clock:  clock,
		logger: log,
		wake:   make(chan struct{}, 1),
	}
}

// Clock returns the loop's time source.
func (l *Loop) Clock() Clock {
	return l.clock
}

// Post enqueues fn to run on the loop. Safe from any goroutine, including
// loop tasks; a task posted from a task runs after the current one returns.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After posts fn once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	return l.clock.AfterFunc(d, func() { l.Post(fn) })
}

// Go runs work on a new goroutine. A non-nil continuation returned by work
// is posted back to the loop.
func (l *Loop) Go(work func() func()) {
	go func() {
		if next := work(); next != nil {
			l.Post(next)
		}
	}()
}

// Call runs fn on the loop and waits for it. It must not be called from a
// loop task.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})

	l.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes tasks until ctx is cancelled. Tasks still queued at
// cancellation are discarded.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		for _, fn := range batch {
			l.runTask(fn)
		}
	}
}

func (l *Loop) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Run loop task panicked")
		}
	}()

	fn()
}
