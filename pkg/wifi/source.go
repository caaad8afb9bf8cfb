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

// Package wifi monitors the host's wireless interfaces by polling and reports
// link, mode and SSID changes to a single subscriber.
package wifi

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/netbridge/pkg/bridge"
	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
)

var errAlreadySubscribed = errors.New("wifi source already has a subscriber")

const defaultPollInterval = 2 * time.Second

// Snapshot is one interface as seen by a single poll.
type Snapshot struct {
	State models.InterfaceState
	Up    bool
}

// Prober reads every wireless interface on the host.
type Prober interface {
	Probe(ctx context.Context) ([]Snapshot, error)
}

// Source implements bridge.InterfaceSource by diffing successive probes.
type Source struct {
	prober   Prober
	only     string
	interval time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	current map[string]Snapshot
	primed  bool
	handler func(bridge.Notification)
	cancel  context.CancelFunc
	done    chan struct{}
}

// Config configures a Source.
type Config struct {
	// Interface restricts monitoring to one interface; empty means all.
	Interface    string
	PollInterval time.Duration
	Prober       Prober
}

var _ bridge.InterfaceSource = (*Source)(nil)

// NewSource creates a source. A nil Prober uses the host's wireless
// extensions.
func NewSource(cfg Config, log logger.Logger) *Source {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if cfg.Prober == nil {
		cfg.Prober = NewHostProber(log)
	}

	return &Source{
		prober:   cfg.Prober,
		only:     cfg.Interface,
		interval: cfg.PollInterval,
		logger:   log,
		current:  make(map[string]Snapshot),
	}
}

// Subscribe takes an initial snapshot and starts polling.
func (s *Source) Subscribe(handler func(bridge.Notification)) error {
	s.mu.Lock()
	if s.handler != nil {
		s.mu.Unlock()
		return errAlreadySubscribed
	}

	s.handler = handler
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	if _, err := s.Poll(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Initial wireless probe failed")
	}

	go s.run(ctx)

	s.logger.Info().
		Str("interface", s.only).
		Dur("poll_interval", s.interval).
		Msg("Watching wireless interfaces")

	return nil
}

// Unsubscribe stops polling and waits for the poller to exit.
func (s *Source) Unsubscribe() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done

	s.cancel = nil

	s.mu.Lock()
	s.handler = nil
	s.mu.Unlock()
}

// Interface returns the last observed state of name.
func (s *Source) Interface(name string) (models.InterfaceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.current[name]
	if !ok {
		return models.InterfaceState{}, bridge.ErrUnknownInterface
	}

	return snap.State, nil
}

// PrimaryInterface returns the configured interface, or else the first
// associated interface by name, or else the first interface by name.
func (s *Source) PrimaryInterface() (models.InterfaceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.only != "" {
		snap, ok := s.current[s.only]
		if !ok {
			return models.InterfaceState{}, bridge.ErrNoInterface
		}

		return snap.State, nil
	}

	names := make([]string, 0, len(s.current))
	for name := range s.current {
		names = append(names, name)
	}

	if len(names) == 0 {
		return models.InterfaceState{}, bridge.ErrNoInterface
	}

	sort.Strings(names)

	for _, name := range names {
		if s.current[name].State.Associated() {
			return s.current[name].State, nil
		}
	}

	return s.current[names[0]].State, nil
}

func (s *Source) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Poll(ctx); err != nil && ctx.Err() == nil {
				s.logger.Debug().Err(err).Msg("Wireless probe failed")
			}
		}
	}
}

// Poll probes once, updates the cache, and delivers a notification for
// every change. It returns the notifications it delivered.
func (s *Source) Poll(ctx context.Context) ([]bridge.Notification, error) {
	snaps, err := s.prober.Probe(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()

	seen := make(map[string]bool, len(snaps))

	var out []bridge.Notification

	for _, snap := range snaps {
		name := snap.State.Name
		if s.only != "" && name != s.only {
			continue
		}

		seen[name] = true
		prev, known := s.current[name]
		s.current[name] = snap

		if !known {
			if s.primed {
				out = append(out, bridge.Notification{Kind: bridge.NotifyLink, Interface: name})
			}

			continue
		}

		out = append(out, diff(prev, snap)...)
	}

	for name, prev := range s.current {
		if seen[name] || !prev.Up {
			continue
		}

		gone := Snapshot{State: models.InterfaceState{Name: name, Mode: models.ModeNone}}
		s.current[name] = gone
		out = append(out, bridge.Notification{Kind: bridge.NotifyLink, Interface: name})
	}

	s.primed = true
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		for _, n := range out {
			handler(n)
		}
	}

	return out, nil
}

func diff(prev, next Snapshot) []bridge.Notification {
	name := next.State.Name

	var out []bridge.Notification

	switch {
	case prev.Up != next.Up:
		out = append(out, bridge.Notification{Kind: bridge.NotifyLink, Interface: name})
	case prev.State.Mode != next.State.Mode:
		out = append(out, bridge.Notification{Kind: bridge.NotifyMode, Interface: name})
	}

	if next.State.Associated() &&
		(prev.State.SSID != next.State.SSID || prev.State.SSIDDenied != next.State.SSIDDenied ||
			!prev.State.Associated()) {
		out = append(out, bridge.Notification{Kind: bridge.NotifySSID, Interface: name})
	}

	return out
}
