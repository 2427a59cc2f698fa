// internal/transmitter/runner.go
package transmitter

import (
	"context"
	"time"
)

// Run sends one frame per tick until ctx ends or a transmit fails.
// A transmit failure is returned immediately: no retries, no backoff.
// A failure observed after ctx has ended counts as a clean stop.
// The caller owns the decision to terminate the process.
func (t *Transmitter) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := t.TransmitOnce(ctx); err != nil {
				// Shutdown raced the send; not a bus failure.
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
