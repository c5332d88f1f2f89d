// Package scheduler - Tick-driven orchestrator throttling detector dispatch
// and serving stale-safe cached results.
package scheduler

import (
	"time"

	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/results"
)

// Config is the per-detector registration configuration. Decode thresholds
// (confidence, IoU, max results) travel with the adapter's own constructor
// config; the scheduler only owns cadence.
type Config struct {
	// RateHz is the detector's target dispatch rate. The target interval is
	// its reciprocal; dispatches never occur closer together than that,
	// independent of the render rate and of other detectors.
	RateHz float64 `json:"rate_hz" yaml:"rate_hz"`
}

// Validate checks the registration config.
func (c Config) Validate() error {
	if c.RateHz <= 0 {
		return errors.Errorf("rate must be positive, got %v", c.RateHz)
	}
	return nil
}

// interval derives the minimum time between dispatches.
func (c Config) interval() time.Duration {
	return time.Duration(float64(time.Second) / c.RateHz)
}

// Descriptor is a read-only view of one registered detector's scheduling
// state.
type Descriptor struct {
	Name           string
	Capability     results.Kind
	TargetInterval time.Duration
	Busy           bool
	LastDispatch   time.Time
}

// Snapshot is what the renderer receives for one enabled detector on one
// tick: the freshly computed or last cached result.
type Snapshot struct {
	Detector   string
	Capability results.Kind
	Result     *results.Result
	// Fresh reports whether the result was computed from the current
	// tick's frame.
	Fresh bool
}
