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

// Package daemon owns the persistent connection to the local daemon service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
	"github.com/carverauto/netbridge/pkg/runloop"
)

var (
	// ErrInvalidURL indicates the streaming endpoint is not a ws:// or wss:// URL.
	ErrInvalidURL = errors.New("invalid daemon stream URL")
	// ErrNotReady is returned by Send outside StateReady.
	ErrNotReady = errors.New("daemon connection not ready")
	// ErrOutboundFull is returned by Send when the writer is backed up.
	ErrOutboundFull = errors.New("daemon outbound buffer full")
	errNoDialer     = errors.New("dialer is required")
)

const (
	defaultDialTimeout    = 15 * time.Second
	defaultOutboundBuffer = 64
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	URL    string
	Dialer Dialer
	// ReconnectDelay is the pause between a failure and the next connect
	// attempt. Zero reconnects as soon as the loop gets to it.
	ReconnectDelay time.Duration
	DialTimeout    time.Duration
	OutboundBuffer int
	// OnStateChange, if set, is called on the loop after every transition.
	OnStateChange func(from, to ConnectionState)
}

// Manager drives connect -> register -> send/receive against the daemon and
// reconnects after any I/O failure. All methods except Start must be called
// from the run loop.
type Manager struct {
	loop          *runloop.Loop
	cfg           ManagerConfig
	onRequestData func()
	logger        logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state     ConnectionState
	session   *session
	reconnect runloop.Timer
	closed    bool
	connects  int
}

// session is one connection instance. Completions carrying a session that
// is no longer current are ignored.
type session struct {
	id       string
	conn     Conn
	outbound chan []byte
	done     chan struct{}
}

// NewManager validates the endpoint and returns a manager in
// StateDisconnected. onRequestData is called whenever the daemon should be
// sent current state: once on reaching StateReady and again for every
// inbound frame.
func NewManager(loop *runloop.Loop, cfg ManagerConfig, onRequestData func(), log logger.Logger) (*Manager, error) {
	if err := validateStreamURL(cfg.URL); err != nil {
		return nil, err
	}

	if cfg.Dialer == nil {
		return nil, errNoDialer
	}

	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	if cfg.OutboundBuffer <= 0 {
		cfg.OutboundBuffer = defaultOutboundBuffer
	}

	if onRequestData == nil {
		onRequestData = func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		loop:          loop,
		cfg:           cfg,
		onRequestData: onRequestData,
		logger:        logger.Wrap(log.With().Str("url", cfg.URL).Logger()),
		ctx:           ctx,
		cancel:        cancel,
		state:         StateDisconnected,
	}, nil
}

func validateStreamURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	return nil
}

// Start schedules the first connection attempt. Safe from any goroutine.
func (m *Manager) Start() {
	m.loop.Post(m.connect)
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	return m.state
}

// Connects returns how many connection attempts have been made.
func (m *Manager) Connects() int {
	return m.connects
}

// SessionID identifies the current connection instance, empty when there is none.
func (m *Manager) SessionID() string {
	if m.session == nil {
		return ""
	}

	return m.session.id
}

// Send queues ev on the current connection. Events are fire-and-forget:
// outside StateReady, or when encoding fails, the event is dropped and
// the error only describes why. State never changes here.
func (m *Manager) Send(ev models.NetworkEvent) error {
	if m.state != StateReady || m.session == nil {
		m.logger.Debug().
			Str("event", ev.String()).
			Str("state", m.state.String()).
			Msg("Dropping event, daemon connection not ready")

		return ErrNotReady
	}

	frame, err := EncodeEvent(ev)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Dropping event that could not be encoded")

		return err
	}

	select {
	case m.session.outbound <- frame:
		return nil
	default:
		m.logger.Warn().Str("event", ev.String()).Msg("Dropping event, outbound buffer full")

		return ErrOutboundFull
	}
}

// Close tears down the connection and stops reconnecting.
func (m *Manager) Close() {
	if m.closed {
		return
	}

	m.closed = true
	m.cancel()

	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}

	if m.session != nil {
		m.teardown(m.session)
	}

	m.setState(StateDisconnected)
	m.logger.Info().Msg("Daemon connection closed")
}

func (m *Manager) connect() {
	m.reconnect = nil

	if m.closed || m.state != StateDisconnected {
		return
	}

	m.connects++

	s := &session{id: uuid.NewString()}
	m.session = s
	m.setState(StateConnecting)

	m.logger.Debug().Str("session", s.id).Int("attempt", m.connects).Msg("Connecting to daemon")

	ctx, dialer, target, timeout := m.ctx, m.cfg.Dialer, m.cfg.URL, m.cfg.DialTimeout

	m.loop.Go(func() func() {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		conn, err := dialer.Dial(dialCtx, target)

		return func() { m.onDialed(s, conn, err) }
	})
}

func (m *Manager) onDialed(s *session, conn Conn, err error) {
	if s != m.session || m.closed {
		if conn != nil {
			_ = conn.Close()
		}

		return
	}

	if err != nil {
		m.fail(s, "dial", err)
		return
	}

	s.conn = conn
	m.setState(StateRegistering)

	frame, err := EncodeRegistration()
	if err != nil {
		m.fail(s, "register", err)
		return
	}

	m.loop.Go(func() func() {
		err := conn.WriteText(frame)

		return func() { m.onRegistered(s, err) }
	})
}

func (m *Manager) onRegistered(s *session, err error) {
	if s != m.session || m.closed {
		return
	}

	if err != nil {
		m.fail(s, "register", err)
		return
	}

	s.outbound = make(chan []byte, m.cfg.OutboundBuffer)
	s.done = make(chan struct{})

	go m.writeLoop(s)

	m.setState(StateReady)
	m.logger.Info().Str("session", s.id).Msg("Registered with daemon")

	m.onRequestData()
	m.receive(s)
}

// writeLoop writes queued frames in order until the session ends.
func (m *Manager) writeLoop(s *session) {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.outbound:
			if err := s.conn.WriteText(frame); err != nil {
				m.loop.Post(func() { m.fail(s, "send", err) })
				return
			}
		}
	}
}

func (m *Manager) receive(s *session) {
	conn := s.conn

	m.loop.Go(func() func() {
		data, err := conn.ReadText()

		return func() { m.onReceived(s, data, err) }
	})
}

func (m *Manager) onReceived(s *session, data []byte, err error) {
	if s != m.session || m.closed {
		return
	}

	if err != nil {
		m.fail(s, "receive", err)
		return
	}

	m.logger.Debug().Str("session", s.id).Int("bytes", len(data)).Msg("Daemon requested current state")

	m.onRequestData()
	m.receive(s)
}

// fail moves to StateDisconnected and schedules a fresh connect as a new task.
func (m *Manager) fail(s *session, op string, err error) {
	if s != m.session || m.state == StateDisconnected {
		return
	}

	m.logger.Warn().
		Err(err).
		Str("op", op).
		Str("session", s.id).
		Str("state", m.state.String()).
		Msg("Daemon connection failed, reconnecting")

	m.teardown(s)
	m.setState(StateDisconnected)

	if m.closed {
		return
	}

	if m.cfg.ReconnectDelay > 0 {
		m.reconnect = m.loop.After(m.cfg.ReconnectDelay, m.connect)
		return
	}

	m.loop.Post(m.connect)
}

// teardown releases the session. Pending outbound frames are discarded.
func (m *Manager) teardown(s *session) {
	if s.done != nil {
		close(s.done)
	}

	if conn := s.conn; conn != nil {
		m.loop.Go(func() func() {
			_ = conn.Close()
			return nil
		})
	}

	m.session = nil
}

func (m *Manager) setState(to ConnectionState) {
	from := m.state
	if from == to {
		return
	}

	m.state = to

	if m.cfg.OnStateChange != nil {
		m.cfg.OnStateChange(from, to)
	}
}
