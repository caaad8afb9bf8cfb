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

// Package mirror republishes network events to NATS as CloudEvents so other
// services can observe what is sent to the daemon.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
)

const (
	// DefaultSubject is the subject prefix; the lower-cased event kind is
	// appended.
	DefaultSubject = "netbridge.events"
	eventSource    = "netbridge/observer"
	eventTypeBase  = "com.carverauto.netbridge.network."
)

var errNoURL = errors.New("mirror requires a NATS URL")

// Config configures the mirror. An empty NATSURL disables it.
type Config struct {
	NATSURL string `json:"nats_url"`
	Subject string `json:"subject"`
}

// Enabled reports whether a NATS URL is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.NATSURL != ""
}

// publisher is the subset of *nats.Conn the mirror needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// Publisher implements bridge.Sender over NATS.
type Publisher struct {
	conn    publisher
	nc      *nats.Conn
	subject string
	logger  logger.Logger
	now     func() time.Time
}

// Connect dials NATS and returns a publisher that owns the connection.
func Connect(cfg Config, log logger.Logger, extraOpts ...nats.Option) (*Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, errNoURL
	}

	opts := []nats.Option{
		nats.Name("netbridge"),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warn().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p := NewPublisher(nc, cfg.Subject, log)
	p.nc = nc

	return p, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn publisher, subject string, log logger.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}

	return &Publisher{
		conn:    conn,
		subject: strings.TrimSuffix(subject, "."),
		logger:  log,
		now:     time.Now,
	}
}

// Send publishes ev under <subject>.<kind>.
func (p *Publisher) Send(ev models.NetworkEvent) error {
	kind := strings.ToLower(string(ev.Kind()))
	now := p.now().UTC()

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypeBase + kind,
		DataContentType: "application/json",
		Subject:         p.subject + "." + kind,
		Time:            &now,
		Data:            ev.Payload(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal network event: %w", err)
	}

	if err := p.conn.Publish(event.Subject, data); err != nil {
		return fmt.Errorf("failed to publish network event: %w", err)
	}

	p.logger.Debug().Str("subject", event.Subject).Str("id", event.ID).Msg("Mirrored network event")

	return nil
}

// Close drains and closes an owned connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}

	if err := p.nc.Drain(); err != nil {
		p.logger.Debug().Err(err).Msg("NATS drain failed")
		p.nc.Close()
	}
}
