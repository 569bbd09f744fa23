package lap

import "github.com/samirrijal/lapwatch/internal/core/domain"

// DefaultReferenceSender is the sender stamp the start point is
// published under.
const DefaultReferenceSender uint32 = 99

// ReferenceCapture latches the first report from the reference sender.
type ReferenceCapture struct {
	sender uint32
	ref    *domain.ReferencePoint
}

// NewReferenceCapture returns a capture waiting for reports from sender.
func NewReferenceCapture(sender uint32) *ReferenceCapture {
	return &ReferenceCapture{sender: sender}
}

// Capture stores r as the reference point if it comes from the reference
// sender and nothing has been captured yet. Every later call is a no-op.
func (c *ReferenceCapture) Capture(r domain.PositionReport) (domain.ReferencePoint, bool) {
	if c.ref != nil || !c.IsReferenceSender(r) {
		return domain.ReferencePoint{}, false
	}
	c.ref = &domain.ReferencePoint{
		Position:    r.Position,
		SenderStamp: r.SenderStamp,
		CapturedAt:  r.SampleTime,
	}
	return *c.ref, true
}

// Reference returns the captured point, if any.
func (c *ReferenceCapture) Reference() (domain.ReferencePoint, bool) {
	if c.ref == nil {
		return domain.ReferencePoint{}, false
	}
	return *c.ref, true
}

// IsReferenceSender reports whether r was sent by the reference sender.
func (c *ReferenceCapture) IsReferenceSender(r domain.PositionReport) bool {
	return r.SenderStamp == c.sender
}
