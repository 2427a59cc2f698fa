// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultModbusTimeoutMs = 500
	DefaultModbusPollMs    = 5
	DefaultStatusTimeoutMs = 1000
	DefaultLogLevel        = "info"
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 3
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	b := &cfg.Bridge

	// Unset axis ranges default to unipolar (trigger-style axes).
	if j := b.Input.Joystick; j != nil {
		for i := range j.Axes {
			if j.Axes[i].Range == "" {
				j.Axes[i].Range = RangeUnipolar
			}
		}
	}
	if m := b.Input.Modbus; m != nil {
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultModbusTimeoutMs
		}
		if m.PollMs == 0 {
			m.PollMs = DefaultModbusPollMs
		}
		for i := range m.Axes {
			if m.Axes[i].Range == "" {
				m.Axes[i].Range = RangeUnipolar
			}
		}
	}

	// Device name: ASCII already validated, truncate to 16 characters.
	if st := b.Status; st != nil {
		if len(st.DeviceName) > 16 {
			st.DeviceName = st.DeviceName[:16]
		}
		if st.TimeoutMs == 0 {
			st.TimeoutMs = DefaultStatusTimeoutMs
		}
	}

	b.Log.Level = strings.ToLower(b.Log.Level)
	if b.Log.Level == "" {
		b.Log.Level = DefaultLogLevel
	}
	if b.Log.MaxSizeMB == 0 {
		b.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if b.Log.MaxBackups == 0 {
		b.Log.MaxBackups = DefaultLogMaxBackups
	}
}
