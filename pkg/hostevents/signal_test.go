//go:build unix

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

package hostevents

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/carverauto/netbridge/pkg/logger"
)

func TestSignalWakesSubscriber(t *testing.T) {
	s := NewSignalSource(logger.NewTestLogger(), unix.SIGUSR2)

	var wakes atomic.Int32

	require.NoError(t, s.Subscribe(func() { wakes.Add(1) }))
	require.ErrorIs(t, s.Subscribe(func() {}), errAlreadySubscribed)

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGUSR2))
	require.Eventually(t, func() bool { return wakes.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Unsubscribe()
	s.Unsubscribe()

	require.NoError(t, s.Subscribe(func() { wakes.Add(10) }))
	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGUSR2))
	require.Eventually(t, func() bool { return wakes.Load() == 11 }, 2*time.Second, 10*time.Millisecond)
	s.Unsubscribe()
}

func TestDefaultSignal(t *testing.T) {
	s := NewSignalSource(logger.NewTestLogger())

	assert.Equal(t, []os.Signal{unix.SIGUSR1}, s.signals)
}
