// cmd/canbridge/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/canbridge/internal/canbus"
	"github.com/tamzrod/canbridge/internal/config"
	"github.com/tamzrod/canbridge/internal/input"
	"github.com/tamzrod/canbridge/internal/input/joystick"
	imodbus "github.com/tamzrod/canbridge/internal/input/modbus"
	"github.com/tamzrod/canbridge/internal/logging"
	"github.com/tamzrod/canbridge/internal/schema"
	"github.com/tamzrod/canbridge/internal/store"
	"github.com/tamzrod/canbridge/internal/transmitter"
	"github.com/tamzrod/canbridge/internal/writer"
)

// defaultInterval is used when neither the config nor the stream sets a period.
const defaultInterval = 10 * time.Millisecond

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: canbridge <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger, closeLog, err := logging.New(cfg.Bridge.Log)
	if err != nil {
		log.Fatalf("logging setup failed: %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg.Bridge, logger)
	stop()

	if err != nil {
		logger.Error("bridge stopped", "err", err)
		_ = closeLog.Close()
		os.Exit(1)
	}
	logger.Info("bridge stopped")
	_ = closeLog.Close()
}

func run(ctx context.Context, b config.BridgeConfig, logger *slog.Logger) error {
	// --------------------
	// Resolve the outbound stream
	// --------------------

	network, err := schema.Load(b.Schema)
	if err != nil {
		return err
	}
	logger.Info("schema loaded", "path", b.Schema, "nodes", network.NodeNames())

	binding, err := network.Resolve(b.Node, b.Stream, b.Attributes()...)
	if err != nil {
		return err
	}

	bus := binding.Bus
	if b.Bus != "" {
		bus = b.Bus
	}
	interval := period(b.IntervalMs, binding.MinInterval)

	logger.Info("stream resolved",
		"node", binding.Node,
		"stream", binding.Stream,
		"message", binding.Message,
		"bus", bus,
		"id", fmt.Sprintf("0x%X", binding.ID),
		"extended", binding.Extended,
		"dlc", binding.DLC,
		"interval", interval,
	)

	// --------------------
	// Bus + live values + input
	// --------------------

	raw, err := canbus.Open(bus)
	if err != nil {
		return fmt.Errorf("bus open failed: %w", err)
	}
	defer raw.Close()
	adapter := canbus.NewLoggedAdapter(raw, logger, slog.LevelDebug)

	values := store.New(b.Axes()...)

	src, err := openSource(b.Input)
	if err != nil {
		return fmt.Errorf("input open failed: %w", err)
	}
	defer src.Close()

	// --------------------
	// Transmitter
	// --------------------

	channels := make([]transmitter.Channel, len(binding.Signals))
	for i, sig := range binding.Signals {
		channels[i] = transmitter.Channel{Axis: b.Signals[i].Axis, Descriptor: sig.Descriptor}
		logger.Info("signal bound",
			"attribute", sig.Name,
			"axis", b.Signals[i].Axis,
			"size", sig.Descriptor.BitWidth,
			"position", sig.Descriptor.BitPosition,
			"scale", sig.Descriptor.Scale,
			"offset", sig.Descriptor.Offset,
		)
	}

	tx, err := transmitter.New(transmitter.Config{
		Name:     binding.Message,
		Interval: interval,
		ID:       binding.ID,
		Extended: binding.Extended,
		DLC:      binding.DLC,
		Channels: channels,
	}, values, adapter)
	if err != nil {
		return err
	}

	// --------------------
	// Status reporter (optional)
	// --------------------

	var reporter *writer.Reporter
	if plan, ok := writer.BuildStatusPlan(b.Status); ok {
		cli, err := writer.BuildStatusClient(b.Status)
		if err != nil {
			return fmt.Errorf("status client failed: %w", err)
		}
		defer cli.Close()
		reporter = writer.NewReporter(writer.NewStatusWriter(plan, cli), tx.Stats, time.Second, logger)
	}

	// --------------------
	// Run until signal or first failure
	// --------------------

	return supervise(ctx, src, values, tx, reporter, logger)
}

// sender is the transmit loop as seen by supervise.
type sender interface {
	Run(ctx context.Context) error
}

// supervise runs the sampler, the transmitter and the optional reporter until
// ctx ends or one of them fails. The first failure cancels the others and is
// recorded as Error status before it is returned. reporter may be nil.
func supervise(ctx context.Context, src input.Source, values input.Sink, tx sender, reporter *writer.Reporter, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return input.Run(gctx, src, values, logger) })
	g.Go(func() error { return tx.Run(gctx) })
	if reporter != nil {
		g.Go(func() error {
			reporter.Run(gctx)
			return nil
		})
	}

	err := g.Wait()
	if err != nil && reporter != nil {
		reporter.Fail(err)
	}
	return err
}

// period picks the transmit interval: config, then stream minimum, then default.
func period(configuredMs int, streamMin time.Duration) time.Duration {
	if configuredMs > 0 {
		return time.Duration(configuredMs) * time.Millisecond
	}
	if streamMin > 0 {
		return streamMin
	}
	return defaultInterval
}

func openSource(c config.InputConfig) (input.Source, error) {
	switch c.Kind {
	case config.InputJoystick:
		j := c.Joystick
		axes := make([]joystick.Axis, len(j.Axes))
		for i, a := range j.Axes {
			axes[i] = joystick.Axis{
				Number:  a.Number,
				Name:    a.Axis,
				Bipolar: a.Range == config.RangeBipolar,
				Invert:  a.Invert,
			}
		}
		return joystick.Open(j.Device, axes)

	case config.InputModbus:
		m := c.Modbus
		axes := make([]imodbus.Axis, len(m.Axes))
		for i, a := range m.Axes {
			axes[i] = imodbus.Axis{
				FC:      a.FC,
				Address: a.Address,
				Name:    a.Axis,
				RawMin:  a.RawMin,
				RawMax:  a.RawMax,
				Bipolar: a.Range == config.RangeBipolar,
			}
		}
		return imodbus.Dial(imodbus.Config{
			Endpoint: m.Endpoint,
			UnitID:   m.UnitID,
			Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
			BaudRate: m.BaudRate,
			Poll:     time.Duration(m.PollMs) * time.Millisecond,
			Axes:     axes,
		})
	}
	return nil, fmt.Errorf("unknown input kind %q", c.Kind)
}
