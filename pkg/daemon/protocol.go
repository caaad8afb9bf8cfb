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

package daemon

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carverauto/netbridge/pkg/models"
)

// ErrInvalidEvent is returned when an event cannot be put on the wire.
var ErrInvalidEvent = errors.New("invalid network event")

const (
	registrationType = "daemon"
	// DaemonName identifies this client to the daemon service.
	DaemonName = "NETWORK_DAEMON"

	updateTypePrefix = "NETWORK_UPDATE_"
)

// RegistrationMessage is the first frame sent on every connection.
type RegistrationMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// UpdateMessage carries one NetworkEvent.
type UpdateMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// EncodeRegistration returns the registration frame.
func EncodeRegistration() ([]byte, error) {
	return json.Marshal(RegistrationMessage{Type: registrationType, Name: DaemonName})
}

// EncodeEvent returns the update frame for ev.
func EncodeEvent(ev models.NetworkEvent) ([]byte, error) {
	switch ev.Kind() {
	case models.EventSSIDChange, models.EventWiFiConnect, models.EventWiFiDisconnect:
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidEvent, ev.Kind())
	}

	data, err := json.Marshal(UpdateMessage{
		Type: updateTypePrefix + string(ev.Kind()),
		Data: ev.Payload(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	return data, nil
}
