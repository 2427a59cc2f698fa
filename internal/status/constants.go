// internal/status/constants.go
package status

// Bridge status block layout. Protocol-locked, never configurable.
//
//	slot  0      health
//	slot  1      last transmit error code
//	slots 2-3    frames sent (uint32, hi word first, wraps)
//	slots 4-7    low 16 bits of the last raw field per signal
//	slots 8-10   reserved (zero)
//	slots 11-18  device name, 2 ASCII chars per slot
//	slot  19     reserved (zero)
const (
	SlotsPerDevice = 20

	SlotHealthCode    = 0
	SlotLastErrorCode = 1
	SlotFramesSentHi  = 2
	SlotFramesSentLo  = 3

	SlotSignalStart = 4
	SlotSignalSlots = 4

	SlotReservedStart = 8
	SlotReservedEnd   = 10

	SlotDeviceNameStart = 11
	SlotDeviceNameSlots = 8
	SlotDeviceNameEnd   = SlotDeviceNameStart + SlotDeviceNameSlots - 1

	DeviceNameMaxChars = SlotDeviceNameSlots * 2
)

// Health codes.
const (
	HealthUnknown uint16 = 0 // no frame sent yet
	HealthOK      uint16 = 1 // progress since the previous report
	HealthError   uint16 = 2 // fatal transmit error, process exiting
	HealthStale   uint16 = 3 // no progress since the previous report
)
