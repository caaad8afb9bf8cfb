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

// Package authz gates the observer pipeline on the host's permission state.
package authz

//go:generate mockgen -destination=mock_authz.go -package=authz github.com/carverauto/netbridge/pkg/authz Gate,Pipeline

import (
	"context"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
	"github.com/carverauto/netbridge/pkg/runloop"
)

// Gate is the host's authorization authority.
type Gate interface {
	Status() models.AuthorizationStatus
	// RequestAuthorization asks the host for consent. It must not block.
	RequestAuthorization() error
	// Watch reports status changes until ctx is done. It returns once the
	// watch is established.
	Watch(ctx context.Context, onChange func(models.AuthorizationStatus)) error
}

// Pipeline is whatever the controller starts once authorized.
type Pipeline interface {
	Start() error
	Stop()
}

// Controller starts the pipeline on the transition into authorized and stops
// it when authorization is revoked. Its state is owned by the loop.
type Controller struct {
	loop     *runloop.Loop
	gate     Gate
	pipeline Pipeline
	logger   logger.Logger

	status   models.AuthorizationStatus
	running  bool
	starts   int
	requests int
}

// NewController creates a controller in the unknown state.
func NewController(loop *runloop.Loop, gate Gate, pipeline Pipeline, log logger.Logger) *Controller {
	return &Controller{
		loop:     loop,
		gate:     gate,
		pipeline: pipeline,
		logger:   log,
		status:   models.AuthUnknown,
	}
}

// Start evaluates the current status and subscribes to changes.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.gate.Watch(ctx, func(s models.AuthorizationStatus) {
		c.loop.Post(func() { c.evaluate(s) })
	}); err != nil {
		return err
	}

	c.loop.Post(func() { c.evaluate(c.gate.Status()) })

	return nil
}

// Shutdown stops the pipeline if it is running. Must run on the loop.
func (c *Controller) Shutdown() {
	if c.running {
		c.running = false
		c.pipeline.Stop()
	}
}

// Status returns the last evaluated status. Must run on the loop.
func (c *Controller) Status() models.AuthorizationStatus {
	return c.status
}

// Running reports whether the pipeline is started. Must run on the loop.
func (c *Controller) Running() bool {
	return c.running
}

// Starts counts pipeline starts. Must run on the loop.
func (c *Controller) Starts() int {
	return c.starts
}

func (c *Controller) evaluate(s models.AuthorizationStatus) {
	prev := c.status
	c.status = s

	if prev != s {
		c.logger.Info().
			Str("from", string(prev)).
			Str("to", string(s)).
			Msg("Authorization status changed")
	}

	switch s {
	case models.AuthAuthorized:
		if c.running {
			return
		}

		if err := c.pipeline.Start(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to start observer pipeline")
			return
		}

		c.running = true
		c.starts++
	case models.AuthNotDetermined:
		if c.running {
			return
		}

		c.requests++

		if err := c.gate.RequestAuthorization(); err != nil {
			c.logger.Warn().Err(err).Msg("Authorization request failed")
		}
	case models.AuthDenied:
		c.logger.Warn().Msg("Authorization denied, observer idle until granted")

		if c.running {
			c.running = false
			c.pipeline.Stop()
		}
	case models.AuthUnknown:
		c.logger.Warn().Msg("Authorization status unknown")
	}
}
