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

package heartbeat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/runloop"
)

var errUnreachable = errors.New("connection refused")

const (
	waitTimeout  = 2 * time.Second
	pollInterval = 5 * time.Millisecond
)

// flakyTransport fails the first failures round trips and then answers 200.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errUnreachable
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       http.NoBody,
		Request:    req,
	}, nil
}

func startLoop(t *testing.T, clock runloop.Clock) *runloop.Loop {
	t.Helper()

	loop := runloop.New(clock, logger.NewTestLogger())
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

// immediateClock fires every retry timer right away and records the delays.
func immediateClock(t *testing.T, ctrl *gomock.Controller) (*runloop.MockClock, *[]time.Duration) {
	t.Helper()

	var (
		mu     sync.Mutex
		delays []time.Duration
	)

	clock := runloop.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()
	clock.EXPECT().AfterFunc(gomock.Any(), gomock.Any()).DoAndReturn(
		func(d time.Duration, f func()) runloop.Timer {
			mu.Lock()
			delays = append(delays, d)
			mu.Unlock()

			f()

			return runloop.NewMockTimer(ctrl)
		}).AnyTimes()

	return clock, &delays
}

func TestNewProberRejectsBadURL(t *testing.T) {
	loop := runloop.New(nil, logger.NewTestLogger())

	for _, raw := range []string{"", "ws://localhost:3000/heartbeat", "localhost:3000", "http://"} {
		_, err := NewProber(loop, Config{URL: raw}, logger.NewTestLogger())
		require.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestProberReadyAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock, delays := immediateClock(t, ctrl)
	loop := startLoop(t, clock)

	transport := &flakyTransport{failures: 3}

	p, err := NewProber(loop, Config{
		URL:    "http://localhost:3000/heartbeat",
		Client: &http.Client{Transport: transport},
	}, logger.NewTestLogger())
	require.NoError(t, err)

	var (
		readyCalls   atomic.Int32
		callsAtReady atomic.Int32
	)

	p.Start(func() {
		readyCalls.Add(1)
		callsAtReady.Store(transport.calls.Load())
	})

	require.Eventually(t, func() bool { return readyCalls.Load() == 1 }, waitTimeout, pollInterval)

	var attempts int

	var ready bool

	require.NoError(t, loop.Call(context.Background(), func() {
		attempts = p.Attempts()
		ready = p.Ready()
	}))

	assert.Equal(t, int32(4), callsAtReady.Load())
	assert.Equal(t, 4, attempts)
	assert.True(t, ready)
	assert.Equal(t, []time.Duration{DefaultRetryInterval, DefaultRetryInterval, DefaultRetryInterval}, *delays)

	// no further probes once ready
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), readyCalls.Load())
	assert.Equal(t, int32(4), transport.calls.Load())
}

func TestProberAcceptsAnyStatus(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/heartbeat", r.URL.Path)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	loop := startLoop(t, nil)

	p, err := NewProber(loop, Config{URL: srv.URL + "/heartbeat"}, logger.NewTestLogger())
	require.NoError(t, err)

	ready := make(chan struct{})

	p.Start(func() { close(ready) })

	select {
	case <-ready:
	case <-time.After(waitTimeout):
		t.Fatal("prober never became ready")
	}

	assert.Equal(t, int32(1), hits.Load())
}

func TestProberStopCancelsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)

	var (
		mu      sync.Mutex
		pending func()
	)

	timer := runloop.NewMockTimer(ctrl)
	timer.EXPECT().Stop().Return(true)

	clock := runloop.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	clock.EXPECT().AfterFunc(DefaultRetryInterval, gomock.Any()).DoAndReturn(
		func(_ time.Duration, f func()) runloop.Timer {
			mu.Lock()
			pending = f
			mu.Unlock()

			return timer
		})

	loop := startLoop(t, clock)
	transport := &flakyTransport{failures: 100}

	p, err := NewProber(loop, Config{
		URL:    "http://localhost:3000/heartbeat",
		Client: &http.Client{Transport: transport},
	}, logger.NewTestLogger())
	require.NoError(t, err)

	p.Start(func() { t.Error("ready must not fire") })

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return pending != nil
	}, waitTimeout, pollInterval)

	require.NoError(t, loop.Call(context.Background(), p.Stop))

	// a timer that already fired before Stop must not probe again
	mu.Lock()
	pending()
	mu.Unlock()

	require.NoError(t, loop.Call(context.Background(), func() {}))
	assert.Equal(t, int32(1), transport.calls.Load())
}
