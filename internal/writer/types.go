// internal/writer/types.go
package writer

// endpointClient is the exact contract the status writer uses.
// wmodbus.EndpointClient satisfies it.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan locates the bridge status block in Modbus memory.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16 // block index; address = BaseSlot * SlotsPerDevice
	DeviceName string
}
