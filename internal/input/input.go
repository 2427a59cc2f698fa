// internal/input/input.go
package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Event is one axis change produced by an input device.
// Value is normalized: [0,1] for unipolar axes, [-1,1] for bipolar ones.
type Event struct {
	Axis  string
	Value float64
}

// Source is a lazy, unbounded, non-restartable sequence of axis events.
// Next blocks until an event is available, the device fails, or ctx ends.
type Source interface {
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Sink receives the latest axis values.
type Sink interface {
	Set(axis string, v float64)
}

// Run pumps events from src into sink until ctx ends (returns nil) or the
// source fails (returns the error). Last write wins; nothing is queued.
func Run(ctx context.Context, src Source, sink Sink, logger *slog.Logger) error {
	var n uint64
	for {
		ev, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return fmt.Errorf("input: %w", err)
		}
		sink.Set(ev.Axis, ev.Value)

		n++
		if logger != nil && logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("axis changed", "axis", ev.Axis, "value", ev.Value, "events", n)
		}
	}
}

// Normalize maps v from [min,max] onto [0,1] (unipolar) or [-1,1] (bipolar),
// clamped to the target range.
func Normalize(v, min, max float64, bipolar bool) float64 {
	if max <= min {
		return 0
	}
	u := (v - min) / (max - min)
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	if bipolar {
		return u*2 - 1
	}
	return u
}
