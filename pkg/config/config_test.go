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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
)

var errMissingHost = assert.AnError

type mirrorSection struct {
	NATSURL string `json:"nats_url"`
	Subject string `json:"subject"`
}

type testConfig struct {
	DaemonHost string          `json:"daemon_host"`
	Interval   models.Duration `json:"interval"`
	Timeout    time.Duration   `json:"timeout"`
	Verbose    bool            `json:"verbose"`
	Retries    int             `json:"retries"`
	Interfaces []string        `json:"interfaces"`
	Mirror     *mirrorSection  `json:"mirror"`
	Logging    logger.Config   `json:"logging"`
	internal   string
}

func (c *testConfig) Validate() error {
	if c.DaemonHost == "" {
		return errMissingHost
	}

	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "netbridge.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeFile(t, `{"daemon_host":"localhost:3000","interval":"5s","mirror":{"nats_url":"nats://127.0.0.1:4222"}}`)

	cfg := testConfig{Retries: 7}
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "localhost:3000", cfg.DaemonHost)
	assert.Equal(t, 5*time.Second, cfg.Interval.Std())
	assert.Equal(t, 7, cfg.Retries, "fields absent from the file keep defaults")
	require.NotNil(t, cfg.Mirror)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Mirror.NATSURL)
}

func TestLoadAndValidateRunsValidator(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeFile(t, `{"interval":"1s"}`)

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.ErrorIs(t, err, errMissingHost)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "nope.json"), &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAndValidateRejectsUnknownSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvLoader(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv("NETBRIDGE_CONFIG_JSON", "")
	t.Setenv("NETBRIDGE_DAEMON_HOST", "127.0.0.1:3000")
	t.Setenv("NETBRIDGE_INTERVAL", "250ms")
	t.Setenv("NETBRIDGE_TIMEOUT", "2s")
	t.Setenv("NETBRIDGE_VERBOSE", "true")
	t.Setenv("NETBRIDGE_RETRIES", "not-a-number")
	t.Setenv("NETBRIDGE_INTERFACES", "wlan0, wlp2s0")
	t.Setenv("NETBRIDGE_MIRROR_SUBJECT", "netbridge.events")
	t.Setenv("NETBRIDGE_LOGGING_LEVEL", "debug")

	cfg := testConfig{Retries: 3}
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, "127.0.0.1:3000", cfg.DaemonHost)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval.Std())
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 3, cfg.Retries, "unparseable values are skipped")
	assert.Equal(t, []string{"wlan0", "wlp2s0"}, cfg.Interfaces)
	require.NotNil(t, cfg.Mirror)
	assert.Equal(t, "netbridge.events", cfg.Mirror.Subject)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvLoaderLeavesUnsetPointerNil(t *testing.T) {
	loader := NewEnvConfigLoader(logger.NewTestLogger(), "NBTEST_UNSET_")

	var cfg testConfig
	require.NoError(t, loader.Load(context.Background(), "", &cfg))
	assert.Nil(t, cfg.Mirror)
}

func TestEnvLoaderConfigJSON(t *testing.T) {
	t.Setenv("NBJSON_CONFIG_JSON", `{"daemon_host":"daemon:3000","retries":2}`)

	var cfg testConfig
	require.NoError(t, NewEnvConfigLoader(logger.NewTestLogger(), "NBJSON_").Load(context.Background(), "", &cfg))

	assert.Equal(t, "daemon:3000", cfg.DaemonHost)
	assert.Equal(t, 2, cfg.Retries)
}

func TestEnvLoaderRejectsNonPointer(t *testing.T) {
	loader := NewEnvConfigLoader(logger.NewTestLogger(), "NBX_")

	require.ErrorIs(t, loader.Load(context.Background(), "", testConfig{}), ErrDstMustBeNonNilPointer)

	s := "str"
	require.ErrorIs(t, loader.Load(context.Background(), "", &s), ErrDstMustBePointerToStruct)
}
