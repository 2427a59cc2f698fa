// internal/writer/status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/canbridge/internal/status"
)

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	calls []writeCall
	fail  bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("connection reset")
	}
	f.calls = append(f.calls, writeCall{unitID, addr, append([]uint16(nil), regs...)})
	return nil
}

func (f *fakeEndpointClient) last() writeCall {
	return f.calls[len(f.calls)-1]
}

func testPlan() StatusPlan {
	return StatusPlan{Endpoint: "status", UnitID: 9, BaseSlot: 2, DeviceName: "GAMEPAD-01"}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	c := cli.last()
	if len(c.regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(c.regs))
	}
	if c.unitID != 9 || c.addr != 2*status.SlotsPerDevice {
		t.Fatalf("unexpected target unit=%d addr=%d", c.unitID, c.addr)
	}

	name := encodeDeviceNameRegs("GAMEPAD-01")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		if got := c.regs[status.SlotDeviceNameStart+i]; got != name[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", status.SlotDeviceNameStart+i, got, name[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 105}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	incr := cli.calls[1:]
	if len(incr) != 2 {
		t.Fatalf("expected 2 incremental writes, got %d", len(incr))
	}
	for _, w := range incr {
		if len(w.regs) == status.SlotsPerDevice {
			t.Fatalf("device name should not be rewritten on incremental update")
		}
	}
	if incr[0].addr != 40+status.SlotHealthCode || incr[0].regs[0] != status.HealthError {
		t.Fatalf("unexpected health write: %+v", incr[0])
	}
	if incr[1].addr != 40+status.SlotLastErrorCode || incr[1].regs[0] != 105 {
		t.Fatalf("unexpected last_error write: %+v", incr[1])
	}
}

func TestIncremental_FramesAndSignals(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(StatusPlan{Endpoint: "status"}, cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})
	cli.calls = nil

	s := status.Snapshot{
		Health:     status.HealthOK,
		FramesSent: 0x00010002,
		Signals:    [status.SlotSignalSlots]uint16{255, 127},
	}
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(cli.calls) != 2 {
		t.Fatalf("expected 2 writes, got %+v", cli.calls)
	}
	fr := cli.calls[0]
	if fr.addr != status.SlotFramesSentHi || len(fr.regs) != 2 || fr.regs[0] != 1 || fr.regs[1] != 2 {
		t.Fatalf("unexpected frames write: %+v", fr)
	}
	sig := cli.calls[1]
	if sig.addr != status.SlotSignalStart || len(sig.regs) != status.SlotSignalSlots || sig.regs[0] != 255 {
		t.Fatalf("unexpected signals write: %+v", sig)
	}

	// unchanged snapshot writes nothing
	cli.calls = nil
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(cli.calls) != 0 {
		t.Fatalf("expected no writes, got %+v", cli.calls)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthStale}); err == nil {
		t.Fatalf("expected error")
	}

	cli.fail = false
	cli.calls = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthStale}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(cli.calls) != 1 || len(cli.calls[0].regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block re-assert after failure, got %+v", cli.calls)
	}
}

func TestFirstWriteFailureRetriesFull(t *testing.T) {
	cli := &fakeEndpointClient{fail: true}
	sw := NewStatusWriter(testPlan(), cli)

	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("expected error")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(cli.last().regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block, got %d regs", len(cli.last().regs))
	}
}

func TestEncodeDeviceNameRegs(t *testing.T) {
	regs := encodeDeviceNameRegs("AB\x01")
	if regs[0] != uint16('A')<<8|uint16('B') {
		t.Fatalf("slot0: got %04X", regs[0])
	}
	if regs[1] != uint16('?')<<8 {
		t.Fatalf("slot1: got %04X", regs[1])
	}

	long := encodeDeviceNameRegs("0123456789ABCDEFXYZ")
	if long[7] != uint16('E')<<8|uint16('F') {
		t.Fatalf("name should be truncated to 16 chars, last slot %04X", long[7])
	}
}
