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

// Package observer composes the event bridge, heartbeat prober and daemon
// connection manager into the pipeline started once authorization is granted.
package observer

import (
	"net/http"

	"github.com/carverauto/netbridge/pkg/bridge"
	"github.com/carverauto/netbridge/pkg/daemon"
	"github.com/carverauto/netbridge/pkg/heartbeat"
	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/runloop"
)

// Deps are the host integrations the pipeline drives.
type Deps struct {
	Source bridge.InterfaceSource
	Wake   bridge.WakeSource // optional
	Dialer daemon.Dialer

	// HTTPClient is used for heartbeats; nil means http.DefaultClient.
	HTTPClient *http.Client

	// Mirror, when set, receives every event alongside the daemon.
	Mirror bridge.Sender

	OnStateChange func(from, to daemon.ConnectionState)
}

// Pipeline owns one bridge, one prober and, once the daemon answers, one
// connection manager. Start and Stop must run on the loop.
type Pipeline struct {
	loop   *runloop.Loop
	cfg    Config
	deps   Deps
	logger logger.Logger

	bridge  *bridge.Bridge
	prober  *heartbeat.Prober
	manager *daemon.Manager
	running bool
}

// NewPipeline creates a stopped pipeline.
func NewPipeline(loop *runloop.Loop, cfg Config, deps Deps, log logger.Logger) *Pipeline {
	if deps.Dialer == nil {
		deps.Dialer = &daemon.WebSocketDialer{HandshakeTimeout: cfg.HandshakeTimeout.Std()}
	}

	return &Pipeline{
		loop:   loop,
		cfg:    cfg,
		deps:   deps,
		logger: log,
	}
}

// Start subscribes the bridge and begins probing for the daemon.
func (p *Pipeline) Start() error {
	if p.running {
		return nil
	}

	var opts []bridge.Option
	if p.deps.Wake != nil {
		opts = append(opts, bridge.WithWakeSource(p.deps.Wake))
	}

	b := bridge.New(p.loop, p.deps.Source, p.component("bridge"), opts...)
	if p.deps.Mirror != nil {
		b.Attach(p.deps.Mirror)
	}

	if err := b.Start(); err != nil {
		return err
	}

	p.bridge = b
	p.running = true

	prober, err := heartbeat.NewProber(p.loop, heartbeat.Config{
		URL:           p.cfg.HeartbeatURL(),
		RetryInterval: p.cfg.HeartbeatInterval.Std(),
		Timeout:       p.cfg.HeartbeatTimeout.Std(),
		Client:        p.deps.HTTPClient,
	}, p.component("heartbeat"))
	if err != nil {
		p.logger.Error().Err(err).Msg("Heartbeat endpoint unusable, daemon will never be contacted")
		return nil
	}

	p.prober = prober
	prober.Start(func() {
		if p.prober == prober {
			p.onDaemonAlive()
		}
	})

	p.logger.Info().Str("daemon", p.cfg.DaemonHost).Msg("Observer pipeline started")

	return nil
}

// Stop tears everything down. A later Start builds fresh components.
func (p *Pipeline) Stop() {
	if !p.running {
		return
	}

	p.running = false

	if p.bridge != nil {
		p.bridge.Stop()
		p.bridge = nil
	}

	if p.prober != nil {
		p.prober.Stop()
		p.prober = nil
	}

	if p.manager != nil {
		p.manager.Close()
		p.manager = nil
	}

	p.logger.Info().Msg("Observer pipeline stopped")
}

// Running reports whether the pipeline is started.
func (p *Pipeline) Running() bool {
	return p.running
}

// Manager returns the connection manager, nil until the daemon has answered.
func (p *Pipeline) Manager() *daemon.Manager {
	return p.manager
}

// Bridge returns the active bridge.
func (p *Pipeline) Bridge() *bridge.Bridge {
	return p.bridge
}

// Prober returns the active prober, nil when the endpoint is unusable.
func (p *Pipeline) Prober() *heartbeat.Prober {
	return p.prober
}

func (p *Pipeline) onDaemonAlive() {
	if !p.running || p.manager != nil {
		return
	}

	b := p.bridge

	m, err := daemon.NewManager(p.loop, daemon.ManagerConfig{
		URL:            p.cfg.StreamURL(),
		Dialer:         p.deps.Dialer,
		ReconnectDelay: p.cfg.ReconnectDelay.Std(),
		DialTimeout:    p.cfg.HandshakeTimeout.Std(),
		OnStateChange:  p.deps.OnStateChange,
	}, b.Resync, p.component("daemon"))
	if err != nil {
		p.logger.Error().Err(err).Msg("Stream endpoint unusable, daemon will never be contacted")
		return
	}

	p.manager = m
	b.Attach(m)
	m.Start()
}

func (p *Pipeline) component(name string) logger.Logger {
	return logger.Wrap(p.logger.WithComponent(name))
}
