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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/mirror"
	"github.com/carverauto/netbridge/pkg/models"
)

var (
	errDaemonHostRequired = errors.New("daemon_host is required")
	errDaemonHostInvalid  = errors.New("daemon_host must be host:port without scheme or path")
	errPathInvalid        = errors.New("endpoint paths must start with '/'")
	errNegativeDuration   = errors.New("durations must not be negative")
	errIntervalRequired   = errors.New("heartbeat_interval must be positive")
	errAuthModeInvalid    = errors.New("authorization.mode must be 'static' or 'file'")
	errAuthPathRequired   = errors.New("authorization.path is required in file mode")
)

const (
	AuthModeStatic = "static"
	AuthModeFile   = "file"
)

// AuthorizationConfig selects the authorization gate.
type AuthorizationConfig struct {
	Mode string `json:"mode"`
	Path string `json:"path,omitempty"`
}

// Config is the observer configuration.
type Config struct {
	DaemonHost        string              `json:"daemon_host"`
	HeartbeatPath     string              `json:"heartbeat_path"`
	ListenPath        string              `json:"listen_path"`
	HeartbeatInterval models.Duration     `json:"heartbeat_interval"`
	HeartbeatTimeout  models.Duration     `json:"heartbeat_timeout"`
	HandshakeTimeout  models.Duration     `json:"handshake_timeout"`
	ReconnectDelay    models.Duration     `json:"reconnect_delay"`
	Interface         string              `json:"interface,omitempty"`
	PollInterval      models.Duration     `json:"poll_interval"`
	Authorization     AuthorizationConfig `json:"authorization"`
	Mirror            *mirror.Config      `json:"mirror,omitempty"`
	Logging           *logger.Config      `json:"logging,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DaemonHost:        "localhost:3000",
		HeartbeatPath:     "/heartbeat",
		ListenPath:        "/listen",
		HeartbeatInterval: models.Duration(5 * time.Second),
		HeartbeatTimeout:  models.Duration(10 * time.Second),
		HandshakeTimeout:  models.Duration(10 * time.Second),
		PollInterval:      models.Duration(2 * time.Second),
		Authorization:     AuthorizationConfig{Mode: AuthModeStatic},
	}
}

// Validate checks the configuration, filling blank optional fields with
// defaults first.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.HeartbeatPath == "" {
		c.HeartbeatPath = def.HeartbeatPath
	}

	if c.ListenPath == "" {
		c.ListenPath = def.ListenPath
	}

	if c.Authorization.Mode == "" {
		c.Authorization.Mode = def.Authorization.Mode
	}

	if c.DaemonHost == "" {
		return errDaemonHostRequired
	}

	if strings.Contains(c.DaemonHost, "://") || strings.ContainsAny(c.DaemonHost, "/ ") {
		return fmt.Errorf("%w: %q", errDaemonHostInvalid, c.DaemonHost)
	}

	if !strings.HasPrefix(c.HeartbeatPath, "/") || !strings.HasPrefix(c.ListenPath, "/") {
		return errPathInvalid
	}

	for _, d := range []models.Duration{
		c.HeartbeatInterval, c.HeartbeatTimeout, c.HandshakeTimeout, c.ReconnectDelay, c.PollInterval,
	} {
		if d < 0 {
			return errNegativeDuration
		}
	}

	if c.HeartbeatInterval == 0 {
		return errIntervalRequired
	}

	switch c.Authorization.Mode {
	case AuthModeStatic:
	case AuthModeFile:
		if c.Authorization.Path == "" {
			return errAuthPathRequired
		}
	default:
		return fmt.Errorf("%w: %q", errAuthModeInvalid, c.Authorization.Mode)
	}

	return nil
}

// HeartbeatURL is the daemon liveness endpoint.
func (c *Config) HeartbeatURL() string {
	return "http://" + c.DaemonHost + c.HeartbeatPath
}

// StreamURL is the daemon event stream endpoint.
func (c *Config) StreamURL() string {
	return "ws://" + c.DaemonHost + c.ListenPath
}
