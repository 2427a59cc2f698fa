// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	"github.com/tamzrod/canbridge/internal/config"
	wmodbus "github.com/tamzrod/canbridge/internal/writer/modbus"
)

// BuildStatusPlan converts the status config into a StatusPlan.
// Returns false when status reporting is disabled.
// Assumes config has already been validated and normalized.
func BuildStatusPlan(c *config.StatusConfig) (StatusPlan, bool) {
	if c == nil {
		return StatusPlan{}, false
	}
	return StatusPlan{
		Endpoint:   c.Endpoint,
		UnitID:     c.UnitID,
		BaseSlot:   c.Slot,
		DeviceName: c.DeviceName,
	}, true
}

// BuildStatusClient opens the Modbus connection to the status endpoint.
func BuildStatusClient(c *config.StatusConfig) (*wmodbus.EndpointClient, error) {
	if c == nil {
		return nil, errors.New("writer: status disabled")
	}
	return wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: c.Endpoint,
		Timeout:  time.Duration(c.TimeoutMs) * time.Millisecond,
	})
}
