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

package models

import (
	"maps"
	"time"
)

// EventKind identifies a network update sent to the daemon.
type EventKind string

const (
	EventSSIDChange     EventKind = "SSID_CHANGE"
	EventWiFiConnect    EventKind = "WIFI_CONNECT"
	EventWiFiDisconnect EventKind = "WIFI_DISCONNECT"
)

// SSIDNoPermission is reported in place of the SSID when the host refuses to
// disclose it.
const SSIDNoPermission = "NO_PERMISSIONS"

// NetworkEvent is an immutable network state update.
type NetworkEvent struct {
	kind EventKind
	data map[string]interface{}
}

// NewSSIDChange reports the SSID of the associated network. An empty ssid
// means the SSID could not be read and is replaced by SSIDNoPermission.
func NewSSIDChange(ssid string) NetworkEvent {
	if ssid == "" {
		ssid = SSIDNoPermission
	}

	return NetworkEvent{
		kind: EventSSIDChange,
		data: map[string]interface{}{"ssid": ssid},
	}
}

func NewWiFiConnect() NetworkEvent {
	return NetworkEvent{
		kind: EventWiFiConnect,
		data: map[string]interface{}{"connected": true},
	}
}

func NewWiFiDisconnect() NetworkEvent {
	return NetworkEvent{
		kind: EventWiFiDisconnect,
		data: map[string]interface{}{"connected": false},
	}
}

func (e NetworkEvent) Kind() EventKind {
	return e.kind
}

// Payload returns a copy of the event data.
func (e NetworkEvent) Payload() map[string]interface{} {
	return maps.Clone(e.data)
}

// SSID returns the reported SSID for SSID_CHANGE events.
func (e NetworkEvent) SSID() (string, bool) {
	ssid, ok := e.data["ssid"].(string)
	return ssid, ok
}

// Connected returns the link flag for WIFI_CONNECT and WIFI_DISCONNECT events.
func (e NetworkEvent) Connected() (bool, bool) {
	connected, ok := e.data["connected"].(bool)
	return connected, ok
}

func (e NetworkEvent) String() string {
	if ssid, ok := e.SSID(); ok {
		return string(e.kind) + "(" + ssid + ")"
	}

	return string(e.kind)
}

// CloudEvent is a CloudEvents 1.0 envelope used when mirroring events.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}
