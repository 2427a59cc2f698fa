// internal/codec/codec.go
package codec

import (
	"errors"
	"fmt"
	"math"
)

// Descriptor describes how one signal is stored in a frame payload.
// Immutable once resolved; shared read-only.
type Descriptor struct {
	BitWidth    uint8
	Offset      float64
	Scale       float64
	BitPosition uint32
}

var (
	ErrBitWidth = errors.New("codec: bit width must be 1..64")
	ErrScale    = errors.New("codec: scale must be finite and non-zero")
)

// Validate checks the descriptor at resolution time.
// Encode itself never validates.
func (d Descriptor) Validate() error {
	if d.BitWidth == 0 || d.BitWidth > 64 {
		return fmt.Errorf("%w: got %d", ErrBitWidth, d.BitWidth)
	}
	if d.Scale == 0 || math.IsNaN(d.Scale) || math.IsInf(d.Scale, 0) {
		return fmt.Errorf("%w: got %v", ErrScale, d.Scale)
	}
	if math.IsNaN(d.Offset) || math.IsInf(d.Offset, 0) {
		return fmt.Errorf("codec: offset must be finite: got %v", d.Offset)
	}
	return nil
}

// Mask returns the low-bits mask for a field of the given width.
func Mask(bitWidth uint8) uint64 {
	if bitWidth == 0 {
		return 0
	}
	if bitWidth >= 64 {
		return math.MaxUint64
	}
	return 1<<bitWidth - 1
}

// Encode converts a physical value into a raw field:
//
//	raw = trunc((value - offset) / scale) & (2^width - 1)
//
// The float to integer step saturates onto [0, 2^64-1]: negatives and NaN
// become 0, anything at or above 2^64 becomes all ones. The mask is applied
// afterwards, so values above the field's range keep only their low bits
// (300 in an 8-bit field is 44). Callers that need clamping must clamp value
// first.
func Encode(value float64, d Descriptor) uint64 {
	x := math.Trunc((value - d.Offset) / d.Scale)
	return toUint64(x) & Mask(d.BitWidth)
}

// Decode is the inverse arithmetic: raw*scale + offset.
func Decode(raw uint64, d Descriptor) float64 {
	return float64(raw)*d.Scale + d.Offset
}

// Range returns the physical values of raw 0 and raw max for d.
// For a negative scale lo > hi.
func Range(d Descriptor) (lo, hi float64) {
	return Decode(0, d), Decode(Mask(d.BitWidth), d)
}

const two64 = 1 << 64

// toUint64 converts an integral float to uint64, saturating at both ends.
// NaN maps to 0.
func toUint64(x float64) uint64 {
	switch {
	case math.IsNaN(x) || x <= 0:
		return 0
	case x >= two64:
		return math.MaxUint64
	}
	return uint64(x)
}
