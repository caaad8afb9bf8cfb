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

// Package bridge turns wireless interface notifications into NetworkEvents
// and hands them to the attached senders.
package bridge

import (
	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
	"github.com/carverauto/netbridge/pkg/runloop"
)

// Bridge maps interface notifications onto events. Apart from Start and Stop,
// every method must run on the loop.
type Bridge struct {
	loop   *runloop.Loop
	source InterfaceSource
	wake   WakeSource
	logger logger.Logger

	senders []Sender
	running bool
	emitted int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithWakeSource resyncs the bridge whenever w reports a host wake-up.
func WithWakeSource(w WakeSource) Option {
	return func(b *Bridge) {
		b.wake = w
	}
}

// New creates a bridge reading from source.
func New(loop *runloop.Loop, source InterfaceSource, log logger.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		loop:   loop,
		source: source,
		logger: log,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Start subscribes to the interface source and, if configured, the wake
// source. Notifications are posted to the loop.
func (b *Bridge) Start() error {
	if b.running {
		return nil
	}

	if err := b.source.Subscribe(func(n Notification) {
		b.loop.Post(func() { b.HandleNotification(n) })
	}); err != nil {
		return err
	}

	if b.wake != nil {
		if err := b.wake.Subscribe(func() {
			b.loop.Post(func() {
				b.logger.Debug().Msg("Host woke up, resyncing interface state")
				b.Resync()
			})
		}); err != nil {
			b.source.Unsubscribe()

			return err
		}
	}

	b.running = true

	b.logger.Info().Msg("Event bridge started")

	return nil
}

// Stop unsubscribes from every source and detaches all senders.
func (b *Bridge) Stop() {
	if !b.running {
		return
	}

	b.running = false
	b.source.Unsubscribe()

	if b.wake != nil {
		b.wake.Unsubscribe()
	}

	b.senders = nil

	b.logger.Info().Int("events_emitted", b.emitted).Msg("Event bridge stopped")
}

// Attach adds a sender. Events emitted afterwards are delivered to it.
func (b *Bridge) Attach(s Sender) {
	b.senders = append(b.senders, s)
}

// Detach removes a previously attached sender.
func (b *Bridge) Detach(s Sender) {
	for i, cur := range b.senders {
		if cur == s {
			b.senders = append(b.senders[:i], b.senders[i+1:]...)
			return
		}
	}
}

// Emitted returns the number of events produced so far.
func (b *Bridge) Emitted() int {
	return b.emitted
}

// HandleNotification re-reads the named interface and emits the matching
// event. Link and mode changes both produce the mode event.
func (b *Bridge) HandleNotification(n Notification) {
	state, err := b.source.Interface(n.Interface)
	if err != nil {
		b.logger.Warn().
			Err(err).
			Str("interface", n.Interface).
			Str("notification", n.Kind.String()).
			Msg("Notification for unreadable interface")

		return
	}

	switch n.Kind {
	case NotifyLink, NotifyMode:
		b.emitMode(state)
	case NotifySSID:
		b.emitSSID(state)
	default:
		b.logger.Debug().Int("kind", int(n.Kind)).Msg("Ignoring unknown notification kind")
	}
}

// Resync announces the primary interface's current mode and, when
// associated, its SSID.
func (b *Bridge) Resync() {
	state, err := b.source.PrimaryInterface()
	if err != nil {
		b.logger.Warn().Err(err).Msg("Cannot resync, no primary interface")
		return
	}

	b.emitMode(state)

	if state.Associated() {
		b.emitSSID(state)
	}
}

func (b *Bridge) emitMode(state models.InterfaceState) {
	switch state.Mode {
	case models.ModeNone:
		b.emit(models.NewWiFiDisconnect())
	case models.ModeStation:
		b.emit(models.NewWiFiConnect())
	default:
		b.logger.Debug().
			Str("interface", state.Name).
			Str("mode", string(state.Mode)).
			Msg("Mode produces no event")
	}
}

func (b *Bridge) emitSSID(state models.InterfaceState) {
	if !state.Associated() {
		b.logger.Debug().
			Str("interface", state.Name).
			Str("mode", string(state.Mode)).
			Msg("Suppressing SSID change while not associated")

		return
	}

	ssid := state.SSID
	if state.SSIDDenied {
		ssid = ""
	}

	b.emit(models.NewSSIDChange(ssid))
}

func (b *Bridge) emit(ev models.NetworkEvent) {
	b.emitted++

	if len(b.senders) == 0 {
		b.logger.Debug().Str("event", ev.String()).Msg("No sender attached, dropping event")
		return
	}

	for _, s := range b.senders {
		if err := s.Send(ev); err != nil {
			b.logger.Debug().Err(err).Str("event", ev.String()).Msg("Event not sent")
		}
	}
}
