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

package authz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
	"github.com/carverauto/netbridge/pkg/runloop"
)

var errNoRadio = errors.New("radio unavailable")

func startLoop(t *testing.T) *runloop.Loop {
	t.Helper()

	loop := runloop.New(nil, logger.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return loop
}

type harness struct {
	t        *testing.T
	loop     *runloop.Loop
	gate     *MockGate
	pipeline *MockPipeline
	ctrl     *Controller
	notify   func(models.AuthorizationStatus)
}

// newHarness starts a controller whose gate initially reports initial.
func newHarness(t *testing.T, initial models.AuthorizationStatus, expect func(gate *MockGate, pipeline *MockPipeline)) *harness {
	t.Helper()

	mc := gomock.NewController(t)
	h := &harness{
		t:        t,
		gate:     NewMockGate(mc),
		pipeline: NewMockPipeline(mc),
	}

	h.gate.EXPECT().Watch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f func(models.AuthorizationStatus)) error {
			h.notify = f
			return nil
		})
	h.gate.EXPECT().Status().Return(initial)

	if expect != nil {
		expect(h.gate, h.pipeline)
	}

	h.loop = startLoop(t)
	h.ctrl = NewController(h.loop, h.gate, h.pipeline, logger.NewTestLogger())

	require.NoError(t, h.ctrl.Start(context.Background()))
	h.sync()

	return h
}

// sync waits for every task posted so far.
func (h *harness) sync() {
	h.t.Helper()
	require.NoError(h.t, h.loop.Call(context.Background(), func() {}))
}

func (h *harness) push(s models.AuthorizationStatus) {
	h.t.Helper()
	h.notify(s)
	h.sync()
}

func (h *harness) snapshot() (models.AuthorizationStatus, bool, int) {
	var (
		status  models.AuthorizationStatus
		running bool
		starts  int
	)

	require.NoError(h.t, h.loop.Call(context.Background(), func() {
		status, running, starts = h.ctrl.Status(), h.ctrl.Running(), h.ctrl.Starts()
	}))

	return status, running, starts
}

func TestAuthorizedAtStartStartsPipeline(t *testing.T) {
	h := newHarness(t, models.AuthAuthorized, func(_ *MockGate, p *MockPipeline) {
		p.EXPECT().Start().Return(nil).Times(1)
	})

	h.push(models.AuthAuthorized)

	status, running, starts := h.snapshot()
	assert.Equal(t, models.AuthAuthorized, status)
	assert.True(t, running)
	assert.Equal(t, 1, starts)
}

func TestDeniedThenGrantedStartsOnce(t *testing.T) {
	h := newHarness(t, models.AuthDenied, func(_ *MockGate, p *MockPipeline) {
		p.EXPECT().Start().Return(nil).Times(1)
	})

	_, running, _ := h.snapshot()
	assert.False(t, running)

	h.push(models.AuthAuthorized)
	h.push(models.AuthAuthorized)

	status, running, starts := h.snapshot()
	assert.Equal(t, models.AuthAuthorized, status)
	assert.True(t, running)
	assert.Equal(t, 1, starts)
}

func TestNotDeterminedRequestsAuthorization(t *testing.T) {
	h := newHarness(t, models.AuthNotDetermined, func(g *MockGate, p *MockPipeline) {
		gomock.InOrder(
			g.EXPECT().RequestAuthorization().Return(nil),
			p.EXPECT().Start().Return(nil),
		)
	})

	h.push(models.AuthAuthorized)

	_, running, _ := h.snapshot()
	assert.True(t, running)
}

func TestRevocationStopsPipeline(t *testing.T) {
	h := newHarness(t, models.AuthAuthorized, func(_ *MockGate, p *MockPipeline) {
		gomock.InOrder(
			p.EXPECT().Start().Return(nil),
			p.EXPECT().Stop(),
			p.EXPECT().Start().Return(nil),
		)
	})

	h.push(models.AuthDenied)

	_, running, _ := h.snapshot()
	assert.False(t, running)

	h.push(models.AuthAuthorized)

	_, running, starts := h.snapshot()
	assert.True(t, running)
	assert.Equal(t, 2, starts)
}

func TestUnknownStatusIsIgnored(t *testing.T) {
	h := newHarness(t, models.AuthUnknown, nil)

	status, running, _ := h.snapshot()
	assert.Equal(t, models.AuthUnknown, status)
	assert.False(t, running)
}

func TestPipelineStartFailureRetriesOnNextGrant(t *testing.T) {
	h := newHarness(t, models.AuthAuthorized, func(_ *MockGate, p *MockPipeline) {
		gomock.InOrder(
			p.EXPECT().Start().Return(errNoRadio),
			p.EXPECT().Start().Return(nil),
		)
	})

	_, running, _ := h.snapshot()
	assert.False(t, running)

	h.push(models.AuthAuthorized)

	_, running, _ = h.snapshot()
	assert.True(t, running)
}

func TestShutdownStopsRunningPipeline(t *testing.T) {
	h := newHarness(t, models.AuthAuthorized, func(_ *MockGate, p *MockPipeline) {
		p.EXPECT().Start().Return(nil)
		p.EXPECT().Stop().Times(1)
	})

	require.NoError(t, h.loop.Call(context.Background(), h.ctrl.Shutdown))
	require.NoError(t, h.loop.Call(context.Background(), h.ctrl.Shutdown))
}

func TestStaticGate(t *testing.T) {
	var g StaticGate

	assert.Equal(t, models.AuthAuthorized, g.Status())
	require.NoError(t, g.RequestAuthorization())
	require.NoError(t, g.Watch(context.Background(), nil))
}

func TestFileGateStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consent")

	g, err := NewFileGate(path, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, models.AuthNotDetermined, g.Status())

	for content, want := range map[string]models.AuthorizationStatus{
		"authorized\n": models.AuthAuthorized,
		"  DENIED ":    models.AuthDenied,
		"":             models.AuthNotDetermined,
		"maybe":        models.AuthUnknown,
	} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		assert.Equal(t, want, g.Status(), content)
	}

	require.NoError(t, g.RequestAuthorization())

	_, err = NewFileGate("", logger.NewTestLogger())
	require.ErrorIs(t, err, errEmptyPath)
}

type countingPipeline struct {
	starts atomic.Int32
	stops  atomic.Int32
}

func (p *countingPipeline) Start() error {
	p.starts.Add(1)
	return nil
}

func (p *countingPipeline) Stop() {
	p.stops.Add(1)
}

func TestFileGateDrivesController(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consent")

	g, err := NewFileGate(path, logger.NewTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loop := startLoop(t)
	pipeline := &countingPipeline{}
	ctrl := NewController(loop, g, pipeline, logger.NewTestLogger())

	require.NoError(t, ctrl.Start(ctx))
	require.NoError(t, loop.Call(ctx, func() {}))
	assert.Equal(t, int32(0), pipeline.starts.Load())

	require.NoError(t, os.WriteFile(path, []byte("authorized"), 0o600))
	require.Eventually(t, func() bool { return pipeline.starts.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("denied"), 0o600))
	require.Eventually(t, func() bool { return pipeline.stops.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, []byte("authorized"), 0o600))
	require.Eventually(t, func() bool { return pipeline.starts.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}
