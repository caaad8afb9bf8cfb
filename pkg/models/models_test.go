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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"5s"`, want: 5 * time.Second},
		{name: "nanoseconds", input: `250000000`, want: 250 * time.Millisecond},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidDuration)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestNetworkEventPayloads(t *testing.T) {
	connect := NewWiFiConnect()
	assert.Equal(t, EventWiFiConnect, connect.Kind())
	assert.Equal(t, map[string]interface{}{"connected": true}, connect.Payload())

	disconnect := NewWiFiDisconnect()
	connected, ok := disconnect.Connected()
	require.True(t, ok)
	assert.False(t, connected)

	ssid, ok := NewSSIDChange("").SSID()
	require.True(t, ok)
	assert.Equal(t, SSIDNoPermission, ssid)
}

func TestNetworkEventPayloadIsCopy(t *testing.T) {
	ev := NewSSIDChange("cafe")

	payload := ev.Payload()
	payload["ssid"] = "tampered"

	ssid, _ := ev.SSID()
	assert.Equal(t, "cafe", ssid)
	assert.Equal(t, "SSID_CHANGE(cafe)", ev.String())
}

func TestParseAuthorizationStatus(t *testing.T) {
	assert.Equal(t, AuthAuthorized, ParseAuthorizationStatus("granted"))
	assert.Equal(t, AuthDenied, ParseAuthorizationStatus("denied"))
	assert.Equal(t, AuthNotDetermined, ParseAuthorizationStatus(""))
	assert.Equal(t, AuthUnknown, ParseAuthorizationStatus("maybe"))
}

func TestInterfaceStateAssociated(t *testing.T) {
	assert.True(t, InterfaceState{Mode: ModeStation}.Associated())
	assert.False(t, InterfaceState{Mode: ModeNone}.Associated())
}
