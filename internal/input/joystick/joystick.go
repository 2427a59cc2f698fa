// internal/input/joystick/joystick.go
package joystick

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tamzrod/canbridge/internal/input"
)

// Linux joystick API (linux/joystick.h): one struct js_event per read.
//
//	0..3 time   (u32, ms)
//	4..5 value  (s16)
//	6    type
//	7    number
const (
	eventSize = 8

	eventButton = 0x01
	eventAxis   = 0x02
	eventInit   = 0x80

	axisMax = 32767
)

// Axis maps one joystick axis number to a tracked axis.
type Axis struct {
	Number  uint8
	Name    string
	Bipolar bool
	Invert  bool
}

// Source reads axis events from a joystick device.
// Buttons and unmapped axes are skipped.
type Source struct {
	dev  io.ReadCloser
	axes map[uint8]Axis
	buf  [eventSize]byte

	closeOnce sync.Once
	closeErr  error
}

// Open opens a joystick device such as /dev/input/js0.
func Open(path string, axes []Axis) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("joystick: open %s: %w", path, err)
	}
	return New(f, axes), nil
}

// New reads js_event records from dev.
func New(dev io.ReadCloser, axes []Axis) *Source {
	m := make(map[uint8]Axis, len(axes))
	for _, a := range axes {
		m[a.Number] = a
	}
	return &Source{dev: dev, axes: m}
}

// Next blocks until a mapped axis moves. Initial-state events are delivered
// like regular ones so the store starts from the device's real position.
func (s *Source) Next(ctx context.Context) (input.Event, error) {
	// A blocked device read only returns once the device is closed.
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		if _, err := io.ReadFull(s.dev, s.buf[:]); err != nil {
			if ctx.Err() != nil {
				return input.Event{}, ctx.Err()
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return input.Event{}, fmt.Errorf("joystick: truncated event: %w", err)
			}
			return input.Event{}, fmt.Errorf("joystick: read: %w", err)
		}

		value := int16(binary.LittleEndian.Uint16(s.buf[4:6]))
		typ := s.buf[6] &^ eventInit
		number := s.buf[7]

		if typ != eventAxis {
			continue
		}
		a, ok := s.axes[number]
		if !ok {
			continue
		}
		return input.Event{Axis: a.Name, Value: normalize(value, a)}, nil
	}
}

func normalize(raw int16, a Axis) float64 {
	v := float64(raw)
	if a.Invert {
		v = -v
	}
	return input.Normalize(v, -axisMax, axisMax, a.Bipolar)
}

// Close releases the device. Safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.dev.Close()
	})
	return s.closeErr
}
