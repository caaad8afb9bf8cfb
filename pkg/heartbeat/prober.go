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

// Package heartbeat waits for the daemon service to answer its liveness
// endpoint before anything tries to hold a connection open.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/runloop"
)

// ErrInvalidURL indicates the heartbeat endpoint is not an http(s) URL.
var ErrInvalidURL = errors.New("invalid heartbeat URL")

const (
	// DefaultRetryInterval is the fixed pause between failed probes.
	DefaultRetryInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
)

// Config configures a Prober.
type Config struct {
	URL           string
	RetryInterval time.Duration
	Timeout       time.Duration // per request
	Client        *http.Client
}

// attemptState exists only until the first successful probe.
type attemptState struct {
	attempts      int
	nextAttemptAt time.Time
}

// Prober polls the heartbeat endpoint until it answers, then signals
// readiness exactly once and never probes again. All state is owned by the
// run loop.
type Prober struct {
	loop   *runloop.Loop
	cfg    Config
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	onReady  func()
	pending  *attemptState
	timer    runloop.Timer
	attempts int
	started  bool
	ready    bool
	stopped  bool
}

// NewProber validates the endpoint and fills in defaults.
func NewProber(loop *runloop.Loop, cfg Config, log logger.Logger) (*Prober, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, cfg.URL)
	}

	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Prober{
		loop:   loop,
		cfg:    cfg,
		logger: logger.Wrap(log.With().Str("url", cfg.URL).Logger()),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start begins probing. onReady runs on the loop after the first successful
// probe. Calling Start again is a no-op.
func (p *Prober) Start(onReady func()) {
	p.loop.Post(func() {
		if p.started || p.stopped {
			return
		}

		p.started = true
		p.onReady = onReady
		p.pending = &attemptState{}
		p.probe()
	})
}

// Stop cancels any in-flight request and pending retry. It must run on the
// loop.
func (p *Prober) Stop() {
	p.stopped = true
	p.cancel()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	p.pending = nil
}

// Attempts returns how many probes have been issued.
func (p *Prober) Attempts() int {
	return p.attempts
}

// Ready reports whether the daemon has answered.
func (p *Prober) Ready() bool {
	return p.ready
}

func (p *Prober) probe() {
	p.timer = nil

	if p.ready || p.stopped {
		return
	}

	p.attempts++

	ctx, client, target, timeout := p.ctx, p.cfg.Client, p.cfg.URL, p.cfg.Timeout

	p.loop.Go(func() func() {
		err := check(ctx, client, target, timeout)

		return func() { p.onResult(err) }
	})
}

func (p *Prober) onResult(err error) {
	if p.ready || p.stopped {
		return
	}

	if err != nil {
		p.pending.attempts++
		p.pending.nextAttemptAt = p.loop.Clock().Now().Add(p.cfg.RetryInterval)

		p.logger.Debug().
			Err(err).
			Int("attempt", p.pending.attempts).
			Time("next_attempt_at", p.pending.nextAttemptAt).
			Msg("Daemon heartbeat failed, retrying")

		p.timer = p.loop.After(p.cfg.RetryInterval, p.probe)

		return
	}

	p.logger.Info().Int("attempts", p.attempts).Msg("Daemon heartbeat succeeded")

	p.ready = true
	p.pending = nil
	p.cancel()

	if p.onReady != nil {
		p.onReady()
	}
}

// check treats any HTTP response as proof of life; only transport errors fail.
func check(ctx context.Context, client *http.Client, target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.Body.Close()
}
