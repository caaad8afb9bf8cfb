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

package observer

import (
	"context"
	"fmt"
	"time"

	"github.com/carverauto/netbridge/pkg/authz"
	"github.com/carverauto/netbridge/pkg/bridge"
	"github.com/carverauto/netbridge/pkg/daemon"
	"github.com/carverauto/netbridge/pkg/hostevents"
	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/mirror"
	"github.com/carverauto/netbridge/pkg/runloop"
	"github.com/carverauto/netbridge/pkg/wifi"
)

const shutdownTimeout = 5 * time.Second

// Service runs the authorization controller and its pipeline on one loop.
type Service struct {
	cfg        Config
	loop       *runloop.Loop
	pipeline   *Pipeline
	controller *authz.Controller
	mirror     *mirror.Publisher
	logger     logger.Logger
}

// ServiceOption overrides a host integration.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	source bridge.InterfaceSource
	wake   bridge.WakeSource
	gate   authz.Gate
	dialer daemon.Dialer
}

// WithInterfaceSource replaces the host wireless source.
func WithInterfaceSource(src bridge.InterfaceSource) ServiceOption {
	return func(o *serviceOptions) { o.source = src }
}

// WithWakeSource replaces the signal-based wake source.
func WithWakeSource(w bridge.WakeSource) ServiceOption {
	return func(o *serviceOptions) { o.wake = w }
}

// WithGate replaces the configured authorization gate.
func WithGate(g authz.Gate) ServiceOption {
	return func(o *serviceOptions) { o.gate = g }
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d daemon.Dialer) ServiceOption {
	return func(o *serviceOptions) { o.dialer = d }
}

// NewService wires every component from cfg.
func NewService(cfg Config, log logger.Logger, opts ...ServiceOption) (*Service, error) {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	component := func(name string) logger.Logger {
		return logger.Wrap(log.WithComponent(name))
	}

	if o.source == nil {
		o.source = wifi.NewSource(wifi.Config{
			Interface:    cfg.Interface,
			PollInterval: cfg.PollInterval.Std(),
		}, component("wifi"))
	}

	if o.wake == nil {
		o.wake = hostevents.NewSignalSource(component("hostevents"))
	}

	if o.gate == nil {
		gate, err := newGate(cfg.Authorization, component("authz"))
		if err != nil {
			return nil, err
		}

		o.gate = gate
	}

	s := &Service{
		cfg:    cfg,
		loop:   runloop.New(nil, component("runloop")),
		logger: log,
	}

	deps := Deps{
		Source: o.source,
		Wake:   o.wake,
		Dialer: o.dialer,
		OnStateChange: func(from, to daemon.ConnectionState) {
			log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Daemon connection state")
		},
	}

	if cfg.Mirror.Enabled() {
		pub, err := mirror.Connect(*cfg.Mirror, component("mirror"))
		if err != nil {
			log.Warn().Err(err).Msg("Event mirror disabled")
		} else {
			s.mirror = pub
			deps.Mirror = pub
		}
	}

	s.pipeline = NewPipeline(s.loop, cfg, deps, component("observer"))
	s.controller = authz.NewController(s.loop, o.gate, s.pipeline, component("authz"))

	return s, nil
}

func newGate(cfg AuthorizationConfig, log logger.Logger) (authz.Gate, error) {
	switch cfg.Mode {
	case AuthModeFile:
		return authz.NewFileGate(cfg.Path, log)
	case AuthModeStatic, "":
		return authz.StaticGate{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errAuthModeInvalid, cfg.Mode)
	}
}

// Run blocks until ctx is cancelled, then stops the pipeline on the loop.
func (s *Service) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan error, 1)

	go func() { loopDone <- s.loop.Run(loopCtx) }()

	defer func() {
		stopLoop()
		<-loopDone

		if s.mirror != nil {
			s.mirror.Close()
		}
	}()

	if err := s.controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start authorization controller: %w", err)
	}

	s.logger.Info().
		Str("daemon", s.cfg.DaemonHost).
		Str("authorization", s.cfg.Authorization.Mode).
		Msg("Network observer running")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.loop.Call(shutdownCtx, s.controller.Shutdown); err != nil {
		s.logger.Warn().Err(err).Msg("Pipeline shutdown timed out")
	}

	s.logger.Info().Msg("Network observer stopped")

	return nil
}

// Pipeline exposes the pipeline for inspection. Access it from the loop.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// Loop returns the service's run loop.
func (s *Service) Loop() *runloop.Loop {
	return s.loop
}
