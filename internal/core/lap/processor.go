package lap

import (
	"fmt"

	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/pkg/geospatial"
)

// Config is everything the lap core needs. It is fixed for the life of
// a Processor.
type Config struct {
	Thresholds      Thresholds
	Period          uint32
	ReferenceSender uint32
	ActionAddress   string
	ActionCommand   string
}

// DefaultConfig mirrors the stock track setup: 50/10 m band, an undock
// request every third lap, reference published by sender 99.
func DefaultConfig() Config {
	return Config{
		Thresholds:      DefaultThresholds(),
		Period:          DefaultPeriod,
		ReferenceSender: DefaultReferenceSender,
		ActionAddress:   DefaultActionAddress,
		ActionCommand:   DefaultActionCommand,
	}
}

// DropReason explains why a report never reached the detector.
type DropReason int

const (
	NotDropped DropReason = iota
	// DropNoReference: no start point has been captured yet.
	DropNoReference
	// DropReferenceSender: a reference report after the start point was latched.
	DropReferenceSender
)

func (r DropReason) String() string {
	switch r {
	case NotDropped:
		return "none"
	case DropNoReference:
		return "no_reference"
	case DropReferenceSender:
		return "reference_sender"
	default:
		return fmt.Sprintf("drop(%d)", int(r))
	}
}

// Outcome is what a single report did to the processor.
type Outcome struct {
	Captured *domain.ReferencePoint
	Dropped  DropReason
	// Distance is set whenever the report was projected.
	Distance *float64
	// Rejected is true when the projected distance was not a usable number.
	Rejected bool
	Lap      *domain.LapEvent
	Action   *domain.ActionRequest
}

// Processor wires reference capture, projection, detection and the
// action trigger together. It owns all lap state; callers must apply
// reports one at a time.
type Processor struct {
	capture  *ReferenceCapture
	detector *Detector
	trigger  *Trigger

	lastDistance *float64
	samples      uint64
	dropped      uint64
	rejected     uint64
}

// NewProcessor validates cfg and returns a processor with no reference,
// zone Inside and zero laps.
func NewProcessor(cfg Config) (*Processor, error) {
	det, err := NewDetector(cfg.Thresholds)
	if err != nil {
		return nil, err
	}
	trig, err := NewTrigger(cfg.Period, cfg.ActionAddress, cfg.ActionCommand)
	if err != nil {
		return nil, err
	}
	return &Processor{
		capture:  NewReferenceCapture(cfg.ReferenceSender),
		detector: det,
		trigger:  trig,
	}, nil
}

// Process applies one report.
func (p *Processor) Process(r domain.PositionReport) Outcome {
	if ref, ok := p.capture.Capture(r); ok {
		return Outcome{Captured: &ref}
	}

	ref, ok := p.capture.Reference()
	if !ok {
		p.dropped++
		return Outcome{Dropped: DropNoReference}
	}
	if p.capture.IsReferenceSender(r) {
		p.dropped++
		return Outcome{Dropped: DropReferenceSender}
	}

	dist := geospatial.PlanarDistance(ref.Position, r.Position)
	p.samples++
	out := Outcome{Distance: &dist}

	ev, lapped, accepted := p.detector.Observe(dist)
	if !accepted {
		p.rejected++
		out.Rejected = true
		return out
	}
	p.lastDistance = &dist

	if !lapped {
		return out
	}
	out.Lap = &ev
	if act, fire := p.trigger.OnLap(ev.Count); fire {
		out.Action = &act
	}
	return out
}

// Status returns the current counters. UpdatedAt is left to the caller.
func (p *Processor) Status() domain.LapStatus {
	st := domain.LapStatus{
		Zone:     p.detector.Zone(),
		LapCount: p.detector.Count(),
		Samples:  p.samples,
		Dropped:  p.dropped,
		Rejected: p.rejected,
	}
	if ref, ok := p.capture.Reference(); ok {
		st.Reference = &ref
	}
	if p.lastDistance != nil {
		d := *p.lastDistance
		st.LastDistance = &d
	}
	return st
}

// Thresholds returns the detector band.
func (p *Processor) Thresholds() Thresholds { return p.detector.Thresholds() }

// Period returns the action period.
func (p *Processor) Period() uint32 { return p.trigger.Period() }
