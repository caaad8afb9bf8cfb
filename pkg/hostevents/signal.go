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

// Package hostevents turns host notifications into bridge wake-ups. On unix
// hosts a session-unlock or resume hook signals the process with SIGUSR1.
package hostevents

import (
	"errors"
	"os"
	"os/signal"
	"sync"

	"github.com/carverauto/netbridge/pkg/logger"
)

var errAlreadySubscribed = errors.New("wake source already has a subscriber")

// SignalSource reports a wake-up each time one of its signals arrives.
type SignalSource struct {
	signals []os.Signal
	logger  logger.Logger

	mu   sync.Mutex
	ch   chan os.Signal
	stop chan struct{}
	done chan struct{}
}

// NewSignalSource listens for sigs, or the platform default when none are
// given.
func NewSignalSource(log logger.Logger, sigs ...os.Signal) *SignalSource {
	if len(sigs) == 0 {
		sigs = defaultSignals
	}

	return &SignalSource{signals: sigs, logger: log}
}

// Subscribe starts delivering wake-ups to handler.
func (s *SignalSource) Subscribe(handler func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		return errAlreadySubscribed
	}

	if len(s.signals) == 0 {
		s.logger.Debug().Msg("No wake signals on this platform")
		return nil
	}

	s.ch = make(chan os.Signal, 1)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	signal.Notify(s.ch, s.signals...)

	go func(ch <-chan os.Signal, stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)

		for {
			select {
			case sig := <-ch:
				s.logger.Info().Str("signal", sig.String()).Msg("Host wake notification")
				handler()
			case <-stop:
				return
			}
		}
	}(s.ch, s.stop, s.done)

	return nil
}

// Unsubscribe stops signal delivery and waits for the listener to exit.
func (s *SignalSource) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil {
		return
	}

	signal.Stop(s.ch)
	close(s.stop)
	<-s.done

	s.ch = nil
}
