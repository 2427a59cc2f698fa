// internal/status/encode.go
package status

// Encode converts a Snapshot into a full bridge status block.
// Layout is protocol-locked. The device name slots are left zero.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotFramesSentHi] = uint16(s.FramesSent >> 16)
	regs[SlotFramesSentLo] = uint16(s.FramesSent)
	copy(regs[SlotSignalStart:SlotSignalStart+SlotSignalSlots], s.Signals[:])

	return regs
}
