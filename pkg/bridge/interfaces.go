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

package bridge

//go:generate mockgen -destination=mock_bridge.go -package=bridge github.com/carverauto/netbridge/pkg/bridge InterfaceSource,WakeSource,Sender

import (
	"errors"

	"github.com/carverauto/netbridge/pkg/models"
)

var (
	// ErrUnknownInterface is returned by sources for names they do not track.
	ErrUnknownInterface = errors.New("unknown interface")
	// ErrNoInterface is returned when no wireless interface is present.
	ErrNoInterface = errors.New("no wireless interface")
)

// NotificationKind identifies which property of an interface changed.
type NotificationKind int

const (
	NotifyLink NotificationKind = iota
	NotifyMode
	NotifySSID
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyLink:
		return "link"
	case NotifyMode:
		return "mode"
	case NotifySSID:
		return "ssid"
	default:
		return "unknown"
	}
}

// Notification reports that a property of the named interface changed. The
// bridge re-reads the interface to learn the new value.
type Notification struct {
	Kind      NotificationKind
	Interface string
}

// InterfaceSource is the host's wireless interface monitor. Subscribe may call
// the handler from any goroutine.
type InterfaceSource interface {
	Subscribe(handler func(Notification)) error
	Unsubscribe()
	Interface(name string) (models.InterfaceState, error)
	PrimaryInterface() (models.InterfaceState, error)
}

// WakeSource reports host wake-ups such as a session unlock.
type WakeSource interface {
	Subscribe(handler func()) error
	Unsubscribe()
}

// Sender accepts outbound network events.
type Sender interface {
	Send(ev models.NetworkEvent) error
}
