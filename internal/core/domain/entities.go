package domain

import (
	"fmt"
	"time"
)

// PositionReport is a single geodetic reading delivered by the transport.
type PositionReport struct {
	SenderStamp uint32    `json:"sender_stamp"`
	Position    GeoPoint  `json:"position"`
	SampleTime  time.Time `json:"sample_time"`
}

// ReferencePoint is the latched start of the path. Set once per process.
type ReferencePoint struct {
	Position    GeoPoint  `json:"position"`
	SenderStamp uint32    `json:"sender_stamp"`
	CapturedAt  time.Time `json:"captured_at"`
}

// ZoneState tells whether the vehicle has left the start zone.
type ZoneState int

const (
	ZoneInside ZoneState = iota
	ZoneOutside
)

func (z ZoneState) String() string {
	switch z {
	case ZoneInside:
		return "inside"
	case ZoneOutside:
		return "outside"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

// MarshalText encodes the zone as "inside" or "outside".
func (z ZoneState) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (z *ZoneState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "inside":
		*z = ZoneInside
	case "outside":
		*z = ZoneOutside
	default:
		return fmt.Errorf("unknown zone %q", string(b))
	}
	return nil
}

// LapEvent is emitted once per Outside->Inside crossing.
// ID and CompletedAt are stamped by the service layer.
type LapEvent struct {
	ID          string    `json:"id,omitempty"`
	Count       uint32    `json:"count"`
	Distance    float64   `json:"distance_m"`
	CompletedAt time.Time `json:"completed_at"`
}

// ActionRequest is an outbound command handed to the dispatcher.
type ActionRequest struct {
	ID          string    `json:"id,omitempty"`
	Address     string    `json:"address"`
	Command     string    `json:"message"`
	LapCount    uint32    `json:"lap_count"`
	RequestedAt time.Time `json:"requested_at"`
}

// LapStatus is a point-in-time view of the lap counter.
type LapStatus struct {
	Reference    *ReferencePoint `json:"reference,omitempty"`
	Zone         ZoneState       `json:"zone"`
	LapCount     uint32          `json:"lap_count"`
	LastDistance *float64        `json:"last_distance_m,omitempty"`
	Samples      uint64          `json:"samples"`
	Dropped      uint64          `json:"dropped"`
	Rejected     uint64          `json:"rejected"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
