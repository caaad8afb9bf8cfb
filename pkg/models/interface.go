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

// InterfaceMode is the association mode of a wireless interface.
type InterfaceMode string

const (
	// ModeNone means the interface is not associated.
	ModeNone InterfaceMode = "none"
	// ModeStation means the interface is associated with an access point.
	ModeStation InterfaceMode = "station"
	ModeIBSS    InterfaceMode = "ibss"
	ModeHostAP  InterfaceMode = "hostap"
	ModeMonitor InterfaceMode = "monitor"
	ModeUnknown InterfaceMode = "unknown"
)

// InterfaceState is a point-in-time view of a wireless interface.
type InterfaceState struct {
	Name string        `json:"name"`
	Mode InterfaceMode `json:"mode"`
	// SSID is empty when not associated or when the host refused to
	// disclose it; SSIDDenied distinguishes the latter.
	SSID       string `json:"ssid,omitempty"`
	SSIDDenied bool   `json:"ssid_denied,omitempty"`
}

// Associated reports whether the interface is in station mode.
func (s InterfaceState) Associated() bool {
	return s.Mode == ModeStation
}

// AuthorizationStatus mirrors the host permission state gating the observer.
type AuthorizationStatus string

const (
	AuthUnknown       AuthorizationStatus = "unknown"
	AuthNotDetermined AuthorizationStatus = "not_determined"
	AuthDenied        AuthorizationStatus = "denied"
	AuthAuthorized    AuthorizationStatus = "authorized"
)

// ParseAuthorizationStatus maps free-form text onto a status. Unrecognised
// values are AuthUnknown.
func ParseAuthorizationStatus(s string) AuthorizationStatus {
	switch s {
	case "authorized", "granted", "allow", "allowed":
		return AuthAuthorized
	case "denied", "deny", "revoked":
		return AuthDenied
	case "", "not_determined", "pending", "requested":
		return AuthNotDetermined
	default:
		return AuthUnknown
	}
}
