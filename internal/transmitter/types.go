// internal/transmitter/types.go
package transmitter

import (
	"context"
	"time"

	"github.com/tamzrod/canbridge/internal/canbus"
	"github.com/tamzrod/canbridge/internal/codec"
)

// Values is the read side of the live-value cache.
type Values interface {
	Get(axis string) float64
}

// Adapter is the blocking transmit primitive of an opened bus.
type Adapter interface {
	Transmit(ctx context.Context, frame canbus.Frame) error
}

// Channel binds one tracked axis to its encoding.
type Channel struct {
	Axis       string
	Descriptor codec.Descriptor
}

// Stats is a point-in-time view of the transmit loop.
type Stats struct {
	FramesSent uint64
	LastSent   time.Time
	LastFrame  canbus.Frame
	LastRaw    []uint64 // per channel, in channel order
}
