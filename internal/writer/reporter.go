// internal/writer/reporter.go
package writer

import (
	"context"
	"log/slog"
	"time"

	"github.com/tamzrod/canbridge/internal/status"
	"github.com/tamzrod/canbridge/internal/transmitter"
)

// Reporter owns the status snapshot and pushes it on a fixed clock.
// Health is derived from transmitter progress between ticks.
type Reporter struct {
	sw     StatusWriter
	stats  func() transmitter.Stats
	every  time.Duration
	logger *slog.Logger

	lastCount uint64
}

// NewReporter builds a reporter. logger may be nil.
func NewReporter(sw StatusWriter, stats func() transmitter.Stats, every time.Duration, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{sw: sw, stats: stats, every: every, logger: logger}
}

// Run writes the full block at start and one snapshot per tick until ctx is
// done. Write failures are logged, never fatal.
func (r *Reporter) Run(ctx context.Context) {
	r.push(r.Snapshot())

	t := time.NewTicker(r.every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.push(r.Snapshot())
		}
	}
}

// Snapshot samples the transmitter and advances the progress marker.
func (r *Reporter) Snapshot() status.Snapshot {
	st := r.stats()

	var s status.Snapshot
	switch {
	case st.FramesSent == 0:
		s.Health = status.HealthUnknown
	case st.FramesSent > r.lastCount:
		s.Health = status.HealthOK
	default:
		s.Health = status.HealthStale
	}
	r.lastCount = st.FramesSent

	s.FramesSent = uint32(st.FramesSent)
	for i := 0; i < len(st.LastRaw) && i < status.SlotSignalSlots; i++ {
		s.Signals[i] = uint16(st.LastRaw[i])
	}
	return s
}

// Fail records a fatal error. Call only after Run has returned.
func (r *Reporter) Fail(err error) {
	s := r.Snapshot()
	s.Health = status.HealthError
	s.LastErrorCode = status.ErrorCode(err)
	r.push(s)
}

func (r *Reporter) push(s status.Snapshot) {
	if err := r.sw.WriteStatus(s); err != nil {
		r.logger.Warn("status write failed", "health", s.Health, "err", err)
	}
}
