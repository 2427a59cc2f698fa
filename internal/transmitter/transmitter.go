// internal/transmitter/transmitter.go
package transmitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tamzrod/canbridge/internal/canbus"
	"github.com/tamzrod/canbridge/internal/codec"
	"github.com/tamzrod/canbridge/internal/frame"
)

// Config is the minimal runtime config the transmitter needs.
type Config struct {
	Name     string
	Interval time.Duration
	ID       uint32
	Extended bool
	DLC      uint8
	Channels []Channel
}

// Transmitter is a dumb, clock-driven sender: read, encode, assemble, send.
type Transmitter struct {
	cfg     Config
	values  Values
	adapter Adapter

	mu    sync.Mutex
	stats Stats
}

// New creates a transmitter with immutable config.
func New(cfg Config, values Values, adapter Adapter) (*Transmitter, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("transmitter: interval must be > 0")
	}
	if cfg.DLC > canbus.MaxDataLen {
		return nil, fmt.Errorf("transmitter: dlc %d exceeds %d", cfg.DLC, canbus.MaxDataLen)
	}
	if len(cfg.Channels) == 0 {
		return nil, errors.New("transmitter: at least one channel required")
	}
	for _, ch := range cfg.Channels {
		if err := ch.Descriptor.Validate(); err != nil {
			return nil, fmt.Errorf("transmitter: channel %q: %w", ch.Axis, err)
		}
	}
	if values == nil || adapter == nil {
		return nil, errors.New("transmitter: values and adapter are required")
	}
	return &Transmitter{cfg: cfg, values: values, adapter: adapter}, nil
}

// Interval returns the fixed transmit period.
func (t *Transmitter) Interval() time.Duration {
	return t.cfg.Interval
}

// Frame builds the frame for the current live values without sending it.
// Axes are read one by one; there is no joint snapshot.
func (t *Transmitter) Frame() (canbus.Frame, []uint64) {
	fields := make([]frame.Field, len(t.cfg.Channels))
	raws := make([]uint64, len(t.cfg.Channels))

	for i, ch := range t.cfg.Channels {
		raw := codec.Encode(t.values.Get(ch.Axis), ch.Descriptor)
		raws[i] = raw
		fields[i] = frame.Field{Value: raw, BitPosition: ch.Descriptor.BitPosition}
	}

	payload := frame.Assemble(fields, t.cfg.DLC)
	return frame.Build(t.cfg.ID, t.cfg.Extended, false, t.cfg.DLC, payload), raws
}

// TransmitOnce performs exactly one cycle. The send blocks without timeout.
func (t *Transmitter) TransmitOnce(ctx context.Context) error {
	f, raws := t.Frame()

	if err := t.adapter.Transmit(ctx, f); err != nil {
		return fmt.Errorf("transmitter %s: transmit %s: %w", t.cfg.Name, f, err)
	}

	t.mu.Lock()
	t.stats.FramesSent++
	t.stats.LastSent = time.Now()
	t.stats.LastFrame = f
	t.stats.LastRaw = raws
	t.mu.Unlock()
	return nil
}

// Stats returns a copy of the loop counters.
func (t *Transmitter) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats
	s.LastRaw = append([]uint64(nil), t.stats.LastRaw...)
	return s
}
