// Package lap turns a stream of geodetic position reports into counted
// laps around a captured start point.
package lap

import (
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

// Default start-zone radii, in meters.
const (
	DefaultOuterRadius = 50.0
	DefaultInnerRadius = 10.0
)

// ErrInvalidThresholds is returned when the hysteresis band is empty or
// inverted.
var ErrInvalidThresholds = errors.New("invalid lap thresholds")

// Thresholds is the hysteresis band of the detector. A vehicle must go
// beyond Outer to leave the start zone and come back within Inner for
// the lap to count.
type Thresholds struct {
	Outer float64
	Inner float64
}

// DefaultThresholds returns the 50 m / 10 m band.
func DefaultThresholds() Thresholds {
	return Thresholds{Outer: DefaultOuterRadius, Inner: DefaultInnerRadius}
}

// Validate requires 0 < Inner < Outer, both finite.
func (t Thresholds) Validate() error {
	switch {
	case !finite(t.Outer) || !finite(t.Inner):
		return fmt.Errorf("%w: radii must be finite (outer=%v, inner=%v)", ErrInvalidThresholds, t.Outer, t.Inner)
	case t.Inner <= 0:
		return fmt.Errorf("%w: inner radius must be positive, got %v", ErrInvalidThresholds, t.Inner)
	case t.Inner >= t.Outer:
		return fmt.Errorf("%w: inner radius %v must be below outer radius %v", ErrInvalidThresholds, t.Inner, t.Outer)
	}
	return nil
}

// Detector is a two-state hysteresis machine over the distance from the
// start point. It starts Inside with zero laps.
//
// A Detector is not safe for concurrent use; samples must be applied one
// at a time in observation order.
type Detector struct {
	th    Thresholds
	zone  domain.ZoneState
	count uint32
}

// NewDetector returns a detector for the given band.
func NewDetector(th Thresholds) (*Detector, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Detector{th: th, zone: domain.ZoneInside}, nil
}

// Observe applies one distance sample and reports a lap when the sample
// completes an Outside->Inside crossing.
//
// NaN, infinite and negative samples are not distances; they leave the
// state untouched and come back with accepted set to false.
func (d *Detector) Observe(dist float64) (ev domain.LapEvent, lapped, accepted bool) {
	if !finite(dist) || dist < 0 {
		return domain.LapEvent{}, false, false
	}

	switch d.zone {
	case domain.ZoneInside:
		if dist > d.th.Outer {
			d.zone = domain.ZoneOutside
		}
	case domain.ZoneOutside:
		if dist < d.th.Inner {
			d.zone = domain.ZoneInside
			d.count++
			return domain.LapEvent{Count: d.count, Distance: dist}, true, true
		}
	}
	return domain.LapEvent{}, false, true
}

// Zone returns the current zone.
func (d *Detector) Zone() domain.ZoneState { return d.zone }

// Count returns the number of completed laps.
func (d *Detector) Count() uint32 { return d.count }

// Thresholds returns the configured band.
func (d *Detector) Thresholds() Thresholds { return d.th }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
