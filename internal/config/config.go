// internal/config/config.go
package config

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Schema     string         `yaml:"schema"`
	Node       string         `yaml:"node"`
	Stream     string         `yaml:"stream"`
	Bus        string         `yaml:"bus"`         // optional override of the message bus
	IntervalMs int            `yaml:"interval_ms"` // 0 => stream min interval
	Signals    []SignalConfig `yaml:"signals"`
	Input      InputConfig    `yaml:"input"`
	Status     *StatusConfig  `yaml:"status"`
	Log        LogConfig      `yaml:"log"`
}

// ---- SIGNALS ----

// SignalConfig binds a message attribute to a tracked input axis.
type SignalConfig struct {
	Attribute string `yaml:"attribute"`
	Axis      string `yaml:"axis"`
}

// ---- INPUT ----

const (
	InputJoystick = "joystick"
	InputModbus   = "modbus"
)

type InputConfig struct {
	Kind     string          `yaml:"kind"`
	Joystick *JoystickConfig `yaml:"joystick"`
	Modbus   *ModbusConfig   `yaml:"modbus"`
}

const (
	RangeUnipolar = "unipolar" // [0, 1]
	RangeBipolar  = "bipolar"  // [-1, 1]
)

type JoystickConfig struct {
	Device string              `yaml:"device"`
	Axes   []JoystickAxisConfig `yaml:"axes"`
}

type JoystickAxisConfig struct {
	Number uint8  `yaml:"number"`
	Axis   string `yaml:"axis"`
	Range  string `yaml:"range"`
	Invert bool   `yaml:"invert"`
}

// ModbusConfig describes an analog input module read over Modbus.
// Endpoint is "host:port" for TCP or "rtu:///dev/ttyUSB0" for serial.
type ModbusConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	UnitID    uint8             `yaml:"unit_id"`
	TimeoutMs int               `yaml:"timeout_ms"`
	PollMs    int               `yaml:"poll_ms"`
	BaudRate  int               `yaml:"baud_rate"` // RTU only
	Axes      []ModbusAxisConfig `yaml:"axes"`
}

type ModbusAxisConfig struct {
	FC      uint8  `yaml:"fc"` // 3 or 4
	Address uint16 `yaml:"address"`
	Axis    string `yaml:"axis"`
	RawMin  uint16 `yaml:"raw_min"`
	RawMax  uint16 `yaml:"raw_max"`
	Range   string `yaml:"range"`
}

// ---- STATUS ----

// StatusConfig enables the optional bridge status block in Modbus memory.
type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Axes returns the tracked axes in signal order.
func (b BridgeConfig) Axes() []string {
	out := make([]string, 0, len(b.Signals))
	for _, s := range b.Signals {
		out = append(out, s.Axis)
	}
	return out
}

// Attributes returns the bound attribute names in signal order.
func (b BridgeConfig) Attributes() []string {
	out := make([]string, 0, len(b.Signals))
	for _, s := range b.Signals {
		out = append(out, s.Attribute)
	}
	return out
}
