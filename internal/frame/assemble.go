// internal/frame/assemble.go
package frame

import "github.com/tamzrod/canbridge/internal/canbus"

// Field is one encoded value and the bit it starts at.
type Field struct {
	Value       uint64
	BitPosition uint32
}

// Assemble merges fields into a payload of exactly length bytes.
//
// The payload is one little-endian register of length*8 bits:
// payload |= value << bit_position. Overlapping fields OR together,
// bits past the end of the payload are dropped. No validation.
func Assemble(fields []Field, length uint8) []byte {
	out := make([]byte, length)
	for _, f := range fields {
		orField(out, f)
	}
	return out
}

func orField(out []byte, f Field) {
	if f.Value == 0 {
		return
	}
	start := int(f.BitPosition / 8)
	shift := f.BitPosition % 8

	// value << shift spans at most 9 bytes from start.
	lo := f.Value << shift
	var hi byte
	if shift > 0 {
		hi = byte(f.Value >> (64 - shift))
	}

	for i := 0; i < 8; i++ {
		idx := start + i
		if idx < 0 || idx >= len(out) {
			return
		}
		out[idx] |= byte(lo >> (8 * i))
	}
	if idx := start + 8; idx >= 0 && idx < len(out) {
		out[idx] |= hi
	}
}

// Build is a pure constructor for a bus frame. Payload bytes beyond the
// classic 8-byte data field are ignored; the frame is not validated here.
func Build(id uint32, extended, remote bool, length uint8, payload []byte) canbus.Frame {
	f := canbus.Frame{
		ID:       id,
		Extended: extended,
		RTR:      remote,
		Len:      length,
	}
	copy(f.Data[:], payload)
	return f
}
