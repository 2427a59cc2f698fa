package writer

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/tamzrod/canbridge/internal/status"
	"github.com/tamzrod/canbridge/internal/transmitter"
)

type recordingWriter struct {
	snaps []status.Snapshot
}

func (w *recordingWriter) WriteStatus(s status.Snapshot) error {
	w.snaps = append(w.snaps, s)
	return nil
}

func TestReporter_HealthFromProgress(t *testing.T) {
	st := transmitter.Stats{}
	r := NewReporter(&recordingWriter{}, func() transmitter.Stats { return st }, time.Second, nil)

	if h := r.Snapshot().Health; h != status.HealthUnknown {
		t.Fatalf("before first frame: got %d want unknown", h)
	}

	st.FramesSent = 100
	st.LastRaw = []uint64{255, 0x1_0007, 3, 4, 5}
	s := r.Snapshot()
	if s.Health != status.HealthOK {
		t.Fatalf("after progress: got %d want ok", s.Health)
	}
	if s.FramesSent != 100 {
		t.Fatalf("frames: got %d", s.FramesSent)
	}
	if s.Signals != [status.SlotSignalSlots]uint16{255, 7, 3, 4} {
		t.Fatalf("signals: got %v", s.Signals)
	}

	if h := r.Snapshot().Health; h != status.HealthStale {
		t.Fatalf("without progress: got %d want stale", h)
	}
}

func TestReporter_RunWritesUntilCancel(t *testing.T) {
	w := &recordingWriter{}
	r := NewReporter(w, func() transmitter.Stats { return transmitter.Stats{} }, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	if len(w.snaps) < 2 {
		t.Fatalf("expected start write plus ticks, got %d", len(w.snaps))
	}
}

func TestReporter_Fail(t *testing.T) {
	w := &recordingWriter{}
	r := NewReporter(w, func() transmitter.Stats { return transmitter.Stats{FramesSent: 3} }, time.Second, nil)

	r.Fail(errors.Join(errors.New("canbus: write can0"), syscall.ENETDOWN))

	got := w.snaps[len(w.snaps)-1]
	if got.Health != status.HealthError {
		t.Fatalf("health: got %d want error", got.Health)
	}
	if got.LastErrorCode != uint16(syscall.ENETDOWN) {
		t.Fatalf("error code: got %d want %d", got.LastErrorCode, uint16(syscall.ENETDOWN))
	}
	if got.FramesSent != 3 {
		t.Fatalf("frames: got %d", got.FramesSent)
	}
}
