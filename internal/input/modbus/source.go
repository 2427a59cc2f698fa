// internal/input/modbus/source.go
package modbus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/canbridge/internal/input"
)

// Client abstracts the Modbus reads the sampler needs.
// goburrow's modbus.Client satisfies it.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]byte, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]byte, error)   // FC 4
}

// Axis describes one analog channel of the input module.
type Axis struct {
	FC      uint8
	Address uint16
	Name    string
	RawMin  uint16
	RawMax  uint16
	Bipolar bool
}

// Config is the minimal runtime config of the sampler.
type Config struct {
	Endpoint string // "host:port" or "rtu:///dev/ttyUSB0"
	UnitID   uint8
	Timeout  time.Duration
	BaudRate int
	Poll     time.Duration
	Axes     []Axis
}

// Source polls an analog input module and emits an event per changed axis.
// Clock-driven, one read per axis per tick, no retries.
type Source struct {
	cfg    Config
	client Client
	closer io.Closer

	ticker  *time.Ticker
	last    []uint16
	primed  bool
	pending []input.Event
}

// Dial connects to the module over TCP or RTU (fail fast at startup).
func Dial(cfg Config) (*Source, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("input modbus: endpoint required")
	}

	var (
		handler modbus.ClientHandler
		conn    interface {
			Connect() error
			Close() error
		}
	)

	if path, ok := strings.CutPrefix(cfg.Endpoint, "rtu://"); ok {
		h := modbus.NewRTUClientHandler(path)
		h.SlaveId = cfg.UnitID
		h.Timeout = cfg.Timeout
		if cfg.BaudRate > 0 {
			h.BaudRate = cfg.BaudRate
		}
		handler, conn = h, h
	} else {
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.SlaveId = cfg.UnitID
		h.Timeout = cfg.Timeout
		handler, conn = h, h
	}

	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("input modbus: connect %s: %w", cfg.Endpoint, err)
	}

	s, err := New(cfg, modbus.NewClient(handler), conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// New creates a sampler over an existing client. closer may be nil.
func New(cfg Config, client Client, closer io.Closer) (*Source, error) {
	if cfg.Poll <= 0 {
		return nil, errors.New("input modbus: poll interval must be > 0")
	}
	if len(cfg.Axes) == 0 {
		return nil, errors.New("input modbus: at least one axis required")
	}
	for _, a := range cfg.Axes {
		if a.FC != 3 && a.FC != 4 {
			return nil, fmt.Errorf("input modbus: axis %q: unsupported function code %d", a.Name, a.FC)
		}
	}
	return &Source{
		cfg:    cfg,
		client: client,
		closer: closer,
		last:   make([]uint16, len(cfg.Axes)),
	}, nil
}

// Next returns the next changed axis, polling on the configured clock when
// nothing is pending. The first poll reports every axis.
func (s *Source) Next(ctx context.Context) (input.Event, error) {
	if s.ticker == nil {
		s.ticker = time.NewTicker(s.cfg.Poll)
	}

	for len(s.pending) == 0 {
		if s.primed {
			select {
			case <-ctx.Done():
				return input.Event{}, ctx.Err()
			case <-s.ticker.C:
			}
		}
		if err := s.PollOnce(); err != nil {
			return input.Event{}, err
		}
	}

	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, nil
}

// PollOnce reads every axis and queues events for the ones that changed.
// All-or-nothing: any failure aborts the cycle and queues nothing.
func (s *Source) PollOnce() error {
	raws := make([]uint16, len(s.cfg.Axes))

	for i, a := range s.cfg.Axes {
		var (
			b   []byte
			err error
		)
		switch a.FC {
		case 3:
			b, err = s.client.ReadHoldingRegisters(a.Address, 1)
		case 4:
			b, err = s.client.ReadInputRegisters(a.Address, 1)
		}
		if err != nil {
			return fmt.Errorf("input modbus: axis %q fc=%d addr=%d: %w", a.Name, a.FC, a.Address, err)
		}
		if len(b) < 2 {
			return fmt.Errorf("input modbus: axis %q: short register payload (%d bytes)", a.Name, len(b))
		}
		raws[i] = binary.BigEndian.Uint16(b[:2])
	}

	// Commit only if all reads succeeded
	for i, a := range s.cfg.Axes {
		if s.primed && raws[i] == s.last[i] {
			continue
		}
		s.pending = append(s.pending, input.Event{
			Axis:  a.Name,
			Value: input.Normalize(float64(raws[i]), float64(a.RawMin), float64(a.RawMax), a.Bipolar),
		})
	}
	copy(s.last, raws)
	s.primed = true
	return nil
}

// Close stops the clock and closes the connection.
func (s *Source) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
