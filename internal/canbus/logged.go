// internal/canbus/logged.go
package canbus

import (
	"context"
	"log/slog"
)

// NewLoggedAdapter wraps an Adapter and logs every transmit at level.
// Transmit errors are always logged at error level.
func NewLoggedAdapter(inner Adapter, logger *slog.Logger, level slog.Level) Adapter {
	return &loggedAdapter{
		inner:  inner,
		logger: logger,
		level:  level,
	}
}

type loggedAdapter struct {
	inner  Adapter
	logger *slog.Logger
	level  slog.Level
}

func (l *loggedAdapter) Transmit(ctx context.Context, frame Frame) error {
	if l.logger.Enabled(ctx, l.level) {
		l.logger.Log(ctx, l.level, "canbus transmit",
			"id", frame.ID,
			"extended", frame.Extended,
			"rtr", frame.RTR,
			"len", int(frame.Len),
			"frame", frame.String(),
		)
	}
	err := l.inner.Transmit(ctx, frame)
	if err != nil {
		l.logger.Log(ctx, slog.LevelError, "canbus transmit error",
			"id", frame.ID,
			"error", err,
		)
	}
	return err
}

// Close forwards without logging.
func (l *loggedAdapter) Close() error {
	return l.inner.Close()
}
