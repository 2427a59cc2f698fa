//go:build !linux

// internal/canbus/socketcan_other.go

package canbus

// Open is only available on Linux.
func Open(iface string) (Adapter, error) {
	return nil, ErrUnsupported
}
