// internal/canbus/adapter.go
package canbus

import (
	"context"
	"errors"
)

// Adapter is a transmit-only handle on one opened bus.
// It is owned by a single goroutine (the transmitter) and is not shared.
type Adapter interface {
	// Transmit blocks until the frame is handed to the bus or fails.
	Transmit(ctx context.Context, frame Frame) error

	// Close releases the handle. Further Transmit calls return ErrClosed.
	Close() error
}

var (
	// ErrClosed indicates the adapter has been closed.
	ErrClosed = errors.New("canbus: closed")

	// ErrUnsupported is returned by Open on platforms without SocketCAN.
	ErrUnsupported = errors.New("canbus: socketcan not supported on this platform")
)
