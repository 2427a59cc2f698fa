// internal/status/snapshot.go
package status

import (
	"errors"
	"syscall"
)

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	FramesSent    uint32
	Signals       [SlotSignalSlots]uint16
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming
// concrete types. OS errors report their errno; anything else without a code
// reports 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 && uint64(errno) <= 0xFFFF {
		return uint16(errno)
	}

	return 1
}
