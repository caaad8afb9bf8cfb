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

package runloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/netbridge/pkg/logger"
)

func startLoop(t *testing.T, clock Clock) *Loop {
	t.Helper()

	loop := New(clock, logger.NewTestLogger())
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

func TestPostRunsInOrder(t *testing.T) {
	loop := startLoop(t, nil)

	var got []int

	for i := 0; i < 5; i++ {
		loop.Post(func() { got = append(got, i) })
	}

	require.NoError(t, loop.Call(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestPostFromTaskRunsAfterCurrentTask(t *testing.T) {
	loop := startLoop(t, nil)

	var got []string

	loop.Post(func() {
		loop.Post(func() { got = append(got, "nested") })
		got = append(got, "outer")
	})

	require.Eventually(t, func() bool {
		var n int
		_ = loop.Call(context.Background(), func() { n = len(got) })
		return n == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"outer", "nested"}, got)
}

func TestAfterSchedulesThroughClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	timer := NewMockTimer(ctrl)

	clock.EXPECT().AfterFunc(5*time.Second, gomock.Any()).DoAndReturn(func(_ time.Duration, f func()) Timer {
		f()
		return timer
	})

	loop := startLoop(t, clock)

	fired := make(chan struct{})

	var got Timer

	require.NoError(t, loop.Call(context.Background(), func() {
		got = loop.After(5*time.Second, func() { close(fired) })
	}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer callback never ran on the loop")
	}

	assert.Same(t, timer, got)
}

func TestPanickingTaskDoesNotStopLoop(t *testing.T) {
	loop := startLoop(t, nil)

	loop.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, loop.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestGoPostsContinuation(t *testing.T) {
	loop := startLoop(t, nil)

	result := make(chan string, 1)

	loop.Go(func() func() {
		value := "from worker"
		return func() { result <- value }
	})

	select {
	case v := <-result:
		assert.Equal(t, "from worker", v)
	case <-time.After(time.Second):
		t.Fatal("continuation not posted")
	}
}

func TestCallHonoursContext(t *testing.T) {
	loop := New(nil, logger.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, loop.Call(ctx, func() {}), context.Canceled)
}

func TestRunStopsOnCancel(t *testing.T) {
	loop := New(nil, logger.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	wg.Add(1)

	var err error

	go func() {
		defer wg.Done()
		err = loop.Run(ctx)
	}()

	cancel()
	wg.Wait()

	require.ErrorIs(t, err, context.Canceled)
}
