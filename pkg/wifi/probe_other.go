//go:build !linux

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

package wifi

import (
	"context"
	"errors"

	"github.com/carverauto/netbridge/pkg/logger"
)

var errUnsupported = errors.New("wireless probing is only supported on linux")

type hostProber struct{}

// NewHostProber returns a prober that always fails on this platform.
func NewHostProber(logger.Logger) Prober {
	return hostProber{}
}

func (hostProber) Probe(context.Context) ([]Snapshot, error) {
	return nil, errUnsupported
}
