package transmitter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/canbridge/internal/canbus"
	"github.com/tamzrod/canbridge/internal/codec"
	"github.com/tamzrod/canbridge/internal/store"
)

// ---- fake adapter ----

type fakeAdapter struct {
	mu     sync.Mutex
	frames []canbus.Frame
	failAt int // 1-based call index that fails; 0 never
	onSend func(n int)
}

func (f *fakeAdapter) Transmit(_ context.Context, fr canbus.Frame) error {
	f.mu.Lock()
	n := len(f.frames) + 1
	if f.failAt != 0 && n == f.failAt {
		f.mu.Unlock()
		return errors.New("bus off")
	}
	f.frames = append(f.frames, fr)
	cb := f.onSend
	f.mu.Unlock()

	if cb != nil {
		cb(n)
	}
	return nil
}

func (f *fakeAdapter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// ---- helpers ----

var trigger = codec.Descriptor{BitWidth: 8, Offset: 0, Scale: 1.0 / 255.0}

func triggers() Config {
	right := trigger
	right.BitPosition = 8
	return Config{
		Name:     "gamepad/input",
		Interval: 10 * time.Millisecond,
		ID:       0x0C8,
		DLC:      2,
		Channels: []Channel{
			{Axis: "left_trigger", Descriptor: trigger},
			{Axis: "right_trigger", Descriptor: right},
		},
	}
}

// ---- tests ----

func TestNew_RejectsBadConfig(t *testing.T) {
	s := store.New("left_trigger", "right_trigger")
	a := &fakeAdapter{}

	cfg := triggers()
	cfg.Interval = 0
	if _, err := New(cfg, s, a); err == nil {
		t.Fatalf("expected interval error")
	}

	cfg = triggers()
	cfg.DLC = 9
	if _, err := New(cfg, s, a); err == nil {
		t.Fatalf("expected dlc error")
	}

	cfg = triggers()
	cfg.Channels = nil
	if _, err := New(cfg, s, a); err == nil {
		t.Fatalf("expected channels error")
	}

	cfg = triggers()
	cfg.Channels[0].Descriptor.Scale = 0
	if _, err := New(cfg, s, a); err == nil {
		t.Fatalf("expected descriptor error")
	}
}

func TestTransmitOnce_FrameShape(t *testing.T) {
	s := store.New("x")
	s.Set("x", 42.0)
	a := &fakeAdapter{}

	tx, err := New(Config{
		Interval: time.Millisecond,
		ID:       0x100,
		DLC:      1,
		Channels: []Channel{{Axis: "x", Descriptor: codec.Descriptor{BitWidth: 8, Offset: 0, Scale: 1}}},
	}, s, a)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if err := tx.TransmitOnce(context.Background()); err != nil {
		t.Fatalf("TransmitOnce err=%v", err)
	}

	f := a.frames[0]
	if f.Len != 1 || f.Data[0] != 42 {
		t.Fatalf("expected one byte 42, got %s", f)
	}
	if f.ID != 0x100 || f.Extended || f.RTR {
		t.Fatalf("unexpected header: %+v", f)
	}
}

func TestTransmitOnce_PacksBothTriggers(t *testing.T) {
	s := store.New("left_trigger", "right_trigger")
	s.Set("left_trigger", 1.0)
	s.Set("right_trigger", 0.5)
	a := &fakeAdapter{}

	tx, err := New(triggers(), s, a)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := tx.TransmitOnce(context.Background()); err != nil {
		t.Fatalf("TransmitOnce err=%v", err)
	}

	f := a.frames[0]
	// 1.0*255 = 255, 0.5*255 = 127.5 -> 127
	if f.Len != 2 || f.Data[0] != 0xFF || f.Data[1] != 127 {
		t.Fatalf("unexpected payload: %s", f)
	}

	st := tx.Stats()
	if st.FramesSent != 1 || len(st.LastRaw) != 2 || st.LastRaw[1] != 127 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestTransmitOnce_ErrorDoesNotCount(t *testing.T) {
	s := store.New("left_trigger", "right_trigger")
	a := &fakeAdapter{failAt: 1}

	tx, _ := New(triggers(), s, a)
	if err := tx.TransmitOnce(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if tx.Stats().FramesSent != 0 {
		t.Fatalf("failed transmit counted")
	}
}

func TestRun_Cadence(t *testing.T) {
	const n = 10
	interval := 10 * time.Millisecond

	s := store.New("left_trigger", "right_trigger")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeAdapter{}
	a.onSend = func(k int) {
		if k == n {
			cancel()
		}
	}

	cfg := triggers()
	cfg.Interval = interval
	tx, err := New(cfg, s, a)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	start := time.Now()
	if err := tx.Run(ctx); err != nil {
		t.Fatalf("Run err=%v", err)
	}
	elapsed := time.Since(start)

	if got := a.count(); got != n {
		t.Fatalf("expected exactly %d transmits, got %d", n, got)
	}
	// Ticker drift is bounded below by N*T; allow generous scheduler jitter above.
	if elapsed < n*interval-interval/2 {
		t.Fatalf("ran too fast: %v for %d periods of %v", elapsed, n, interval)
	}
	if elapsed > n*interval+250*time.Millisecond {
		t.Fatalf("ran too slow: %v for %d periods of %v", elapsed, n, interval)
	}
}

func TestRun_TransmitErrorIsFatal(t *testing.T) {
	s := store.New("left_trigger", "right_trigger")
	a := &fakeAdapter{failAt: 3}

	tx, _ := New(triggers(), s, a)

	done := make(chan error, 1)
	go func() { done <- tx.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected transmit error, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop on transmit error")
	}

	// no retry after the failure
	if got := a.count(); got != 2 {
		t.Fatalf("expected 2 successful transmits before failure, got %d", got)
	}
}

func TestRun_ObservesLatestValue(t *testing.T) {
	s := store.New("left_trigger", "right_trigger")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeAdapter{}
	a.onSend = func(k int) {
		switch k {
		case 1:
			s.Set("left_trigger", 0.3)
			s.Set("left_trigger", 0.7)
		case 2:
			cancel()
		}
	}

	tx, _ := New(triggers(), s, a)
	if err := tx.Run(ctx); err != nil {
		t.Fatalf("Run err=%v", err)
	}

	// 0.7*255 = 178.5 -> 178
	if got := a.frames[1].Data[0]; got != 178 {
		t.Fatalf("expected 178, got %d", got)
	}
}

// cancellingAdapter ends the run from inside the send, the way a shutdown
// signal can land between a tick and the bus write.
type cancellingAdapter struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingAdapter) Transmit(ctx context.Context, _ canbus.Frame) error {
	c.calls++
	c.cancel()
	return ctx.Err()
}

func TestRun_CancelDuringTransmitIsClean(t *testing.T) {
	s := store.New("left_trigger", "right_trigger")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &cancellingAdapter{cancel: cancel}
	tx, err := New(triggers(), s, a)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if err := tx.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if a.calls != 1 {
		t.Fatalf("expected 1 transmit attempt, got %d", a.calls)
	}
	if tx.Stats().FramesSent != 0 {
		t.Fatalf("cancelled transmit counted")
	}
}
