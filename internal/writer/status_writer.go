// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/canbridge/internal/status"
)

// StatusWriter is the delivery-only contract for bridge status.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// bridgeStatusWriter writes the status block: a full block on first use and
// after any failure, otherwise only the slots that changed.
type bridgeStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// NewStatusWriter builds a status writer for plan over cli.
func NewStatusWriter(plan StatusPlan, cli endpointClient) StatusWriter {
	return &bridgeStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true,
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *bridgeStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	base := sw.baseAddr()

	// ---- full block (identity re-assert) ----
	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, sw.fullBlockRegs(s)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	// ---- incremental ----
	var errs []string

	write := func(name string, slot int, regs []uint16) bool {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base+uint16(slot), regs); err != nil {
			errs = append(errs, fmt.Sprintf("%s write failed: %v", name, err))
			return false
		}
		return true
	}

	if sw.last.Health != s.Health {
		if write("health", status.SlotHealthCode, []uint16{s.Health}) {
			sw.last.Health = s.Health
		}
	}

	if sw.last.LastErrorCode != s.LastErrorCode {
		if write("last_error", status.SlotLastErrorCode, []uint16{s.LastErrorCode}) {
			sw.last.LastErrorCode = s.LastErrorCode
		}
	}

	if sw.last.FramesSent != s.FramesSent {
		regs := []uint16{uint16(s.FramesSent >> 16), uint16(s.FramesSent)}
		if write("frames_sent", status.SlotFramesSentHi, regs) {
			sw.last.FramesSent = s.FramesSent
		}
	}

	if sw.last.Signals != s.Signals {
		if write("signals", status.SlotSignalStart, s.Signals[:]) {
			sw.last.Signals = s.Signals
		}
	}

	if len(errs) > 0 {
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *bridgeStatusWriter) baseAddr() uint16 {
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *bridgeStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)
	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers,
// two bytes per register, big-endian.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			c = '?'
		}
		if i%2 == 0 {
			out[i/2] |= uint16(c) << 8
		} else {
			out[i/2] |= uint16(c)
		}
	}

	return out
}
