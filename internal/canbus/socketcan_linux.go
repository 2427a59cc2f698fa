//go:build linux

// internal/canbus/socketcan_linux.go
package canbus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// socketCAN is a raw CAN_RAW socket bound to one interface.
// Writes are blocking; there is no write timeout.
type socketCAN struct {
	iface string
	fd    int

	mu     sync.Mutex
	closed bool
}

// Open opens a raw CAN socket bound to the named interface (e.g. "can0").
// The receive side is filtered to nothing: this handle only transmits.
func Open(iface string) (Adapter, error) {
	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("canbus: interface %q: %w", iface, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("canbus: socket: %w", err)
	}

	// Drop every incoming frame; the receive path is unused.
	if err := unix.SetsockoptCanRawFilter(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, []unix.CanFilter{}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("canbus: set filter: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: netIf.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("canbus: bind %q: %w", iface, err)
	}

	return &socketCAN{iface: iface, fd: fd}, nil
}

// Transmit writes one can_frame. Blocks while the socket send queue is full.
func (s *socketCAN) Transmit(ctx context.Context, frame Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, err := frame.MarshalBinary()
	if err != nil {
		return err
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	for {
		n, werr := unix.Write(s.fd, buf)
		if werr == nil {
			if n != len(buf) {
				return fmt.Errorf("canbus: short write on %s: %d of %d bytes", s.iface, n, len(buf))
			}
			return nil
		}
		if errors.Is(werr, unix.EINTR) {
			continue
		}
		return fmt.Errorf("canbus: write %s: %w", s.iface, werr)
	}
}

func (s *socketCAN) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}
