//go:build linux

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
	"fmt"
	"slices"
	"unsafe"

	psnet "github.com/shirou/gopsutil/v3/net"
	"golang.org/x/sys/unix"

	"github.com/carverauto/netbridge/pkg/logger"
	"github.com/carverauto/netbridge/pkg/models"
)

// Wireless extension ioctls from linux/wireless.h.
const (
	siocgiwname  = 0x8B01
	siocgiwmode  = 0x8B07
	siocgiwessid = 0x8B1B

	essidMaxSize = 32
)

// IW_MODE_* values.
const (
	iwModeAdhoc   = 1
	iwModeInfra   = 2
	iwModeMaster  = 3
	iwModeMonitor = 6
)

// iwPoint mirrors struct iw_point.
type iwPoint struct {
	pointer unsafe.Pointer
	length  uint16
	flags   uint16
}

// iwreqPoint and iwreqMode mirror struct iwreq: the interface name followed
// by a 16 byte union.
type iwreqPoint struct {
	name  [unix.IFNAMSIZ]byte
	point iwPoint
	_     [16 - unsafe.Sizeof(iwPoint{})]byte
}

type iwreqMode struct {
	name [unix.IFNAMSIZ]byte
	mode uint32
	_    [12]byte
}

type hostProber struct {
	logger logger.Logger
}

// NewHostProber reads interfaces through gopsutil and the kernel's wireless
// extensions.
func NewHostProber(log logger.Logger) Prober {
	return &hostProber{logger: log}
}

func (p *hostProber) Probe(ctx context.Context) ([]Snapshot, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open control socket: %w", err)
	}
	defer func() { _ = unix.Close(fd) }()

	out := make([]Snapshot, 0, len(ifaces))

	for _, iface := range ifaces {
		if len(iface.Name) >= unix.IFNAMSIZ || !isWireless(fd, iface.Name) {
			continue
		}

		up := slices.Contains(iface.Flags, "up") && slices.Contains(iface.Flags, "running")
		out = append(out, p.read(fd, iface.Name, up))
	}

	return out, nil
}

func (p *hostProber) read(fd int, name string, up bool) Snapshot {
	snap := Snapshot{
		State: models.InterfaceState{Name: name, Mode: models.ModeNone},
		Up:    up,
	}

	if !up {
		return snap
	}

	mode, err := getMode(fd, name)
	if err != nil {
		p.logger.Debug().Err(err).Str("interface", name).Msg("Cannot read wireless mode")
		snap.State.Mode = models.ModeUnknown

		return snap
	}

	switch mode {
	case iwModeInfra:
		ssid, err := getESSID(fd, name)

		switch {
		case errors.Is(err, unix.EPERM), errors.Is(err, unix.EACCES):
			snap.State.Mode = models.ModeStation
			snap.State.SSIDDenied = true
		case err != nil:
			p.logger.Debug().Err(err).Str("interface", name).Msg("Cannot read ESSID")
		case ssid != "":
			snap.State.Mode = models.ModeStation
			snap.State.SSID = ssid
		}
	case iwModeAdhoc:
		snap.State.Mode = models.ModeIBSS
	case iwModeMaster:
		snap.State.Mode = models.ModeHostAP
	case iwModeMonitor:
		snap.State.Mode = models.ModeMonitor
	default:
		snap.State.Mode = models.ModeUnknown
	}

	return snap
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}

	return nil
}

func isWireless(fd int, name string) bool {
	var req iwreqMode

	copy(req.name[:], name)

	return ioctl(fd, siocgiwname, unsafe.Pointer(&req)) == nil
}

func getMode(fd int, name string) (uint32, error) {
	var req iwreqMode

	copy(req.name[:], name)

	if err := ioctl(fd, siocgiwmode, unsafe.Pointer(&req)); err != nil {
		return 0, fmt.Errorf("SIOCGIWMODE %s: %w", name, err)
	}

	return req.mode, nil
}

func getESSID(fd int, name string) (string, error) {
	var (
		buf [essidMaxSize + 1]byte
		req iwreqPoint
	)

	copy(req.name[:], name)
	req.point.pointer = unsafe.Pointer(&buf[0])
	req.point.length = uint16(len(buf))

	if err := ioctl(fd, siocgiwessid, unsafe.Pointer(&req)); err != nil {
		return "", fmt.Errorf("SIOCGIWESSID %s: %w", name, err)
	}

	n := int(req.point.length)
	if n > essidMaxSize {
		n = essidMaxSize
	}

	return string(trimNUL(buf[:n])), nil
}

func trimNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}

	return b
}
