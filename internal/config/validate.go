// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	b := cfg.Bridge

	if b.Schema == "" {
		return fmt.Errorf("bridge: schema path is required")
	}
	if b.Node == "" || b.Stream == "" {
		return fmt.Errorf("bridge: node and stream are required")
	}
	if b.IntervalMs < 0 {
		return fmt.Errorf("bridge: interval_ms must be >= 0, got %d", b.IntervalMs)
	}

	// ------------------------------------------------------------
	// SIGNAL BINDINGS
	// ------------------------------------------------------------

	if len(b.Signals) == 0 {
		return fmt.Errorf("bridge: at least one signal is required")
	}

	attrs := make(map[string]struct{})
	axes := make(map[string]struct{})

	for i, s := range b.Signals {
		if s.Attribute == "" || s.Axis == "" {
			return fmt.Errorf("bridge: signal %d: attribute and axis are required", i)
		}
		if _, dup := attrs[s.Attribute]; dup {
			return fmt.Errorf("bridge: attribute %q bound twice", s.Attribute)
		}
		if _, dup := axes[s.Axis]; dup {
			return fmt.Errorf("bridge: axis %q bound twice", s.Axis)
		}
		attrs[s.Attribute] = struct{}{}
		axes[s.Axis] = struct{}{}
	}

	// ------------------------------------------------------------
	// INPUT SOURCE
	// ------------------------------------------------------------

	if err := validateInput(b.Input, axes); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if st := b.Status; st != nil {
		if st.Endpoint == "" {
			return fmt.Errorf("status: endpoint is required")
		}
		for i := 0; i < len(st.DeviceName); i++ {
			if st.DeviceName[i] > 0x7F {
				return fmt.Errorf("status: device_name must contain ASCII characters only")
			}
		}
	}

	switch strings.ToLower(b.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", b.Log.Level)
	}

	return nil
}

func validateInput(in InputConfig, tracked map[string]struct{}) error {
	switch in.Kind {
	case InputJoystick:
		if in.Joystick == nil {
			return fmt.Errorf("input: kind %q requires a joystick section", in.Kind)
		}
		if in.Joystick.Device == "" {
			return fmt.Errorf("input.joystick: device is required")
		}
		if len(in.Joystick.Axes) == 0 {
			return fmt.Errorf("input.joystick: at least one axis mapping is required")
		}
		numbers := make(map[uint8]struct{})
		for _, a := range in.Joystick.Axes {
			if _, ok := tracked[a.Axis]; !ok {
				return fmt.Errorf("input.joystick: axis %q is not bound to any signal", a.Axis)
			}
			if _, dup := numbers[a.Number]; dup {
				return fmt.Errorf("input.joystick: axis number %d mapped twice", a.Number)
			}
			numbers[a.Number] = struct{}{}
			if err := validateRange(a.Range); err != nil {
				return fmt.Errorf("input.joystick: axis %q: %w", a.Axis, err)
			}
		}

	case InputModbus:
		if in.Modbus == nil {
			return fmt.Errorf("input: kind %q requires a modbus section", in.Kind)
		}
		if in.Modbus.Endpoint == "" {
			return fmt.Errorf("input.modbus: endpoint is required")
		}
		if in.Modbus.PollMs < 0 || in.Modbus.TimeoutMs < 0 {
			return fmt.Errorf("input.modbus: poll_ms and timeout_ms must be >= 0")
		}
		if len(in.Modbus.Axes) == 0 {
			return fmt.Errorf("input.modbus: at least one axis mapping is required")
		}
		for _, a := range in.Modbus.Axes {
			if _, ok := tracked[a.Axis]; !ok {
				return fmt.Errorf("input.modbus: axis %q is not bound to any signal", a.Axis)
			}
			if a.FC != 3 && a.FC != 4 {
				return fmt.Errorf("input.modbus: axis %q: fc must be 3 or 4, got %d", a.Axis, a.FC)
			}
			if a.RawMax <= a.RawMin {
				return fmt.Errorf("input.modbus: axis %q: raw_max must be > raw_min", a.Axis)
			}
			if err := validateRange(a.Range); err != nil {
				return fmt.Errorf("input.modbus: axis %q: %w", a.Axis, err)
			}
		}

	default:
		return fmt.Errorf("input: unknown kind %q", in.Kind)
	}

	return nil
}

func validateRange(r string) error {
	switch r {
	case "", RangeUnipolar, RangeBipolar:
		return nil
	}
	return fmt.Errorf("unknown range %q", r)
}
