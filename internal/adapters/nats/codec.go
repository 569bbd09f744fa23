package natsadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

// ErrMalformedReading is returned for envelopes that are not geodetic
// readings.
var ErrMalformedReading = errors.New("malformed geodetic reading")

// geodeticReading is the JSON envelope carried on the geodetic subject.
type geodeticReading struct {
	SenderStamp *uint32   `json:"sender_stamp"`
	SampleTime  time.Time `json:"sample_time"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
}

// DecodeReading parses a geodetic envelope. Coordinates outside the
// WGS 84 range are rejected here so garbage never reaches the detector.
func DecodeReading(data []byte) (*domain.PositionReport, error) {
	var m geodeticReading
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReading, err)
	}
	if m.SenderStamp == nil || m.Latitude == nil || m.Longitude == nil {
		return nil, fmt.Errorf("%w: sender_stamp, latitude and longitude are required", ErrMalformedReading)
	}
	lat, lon := *m.Latitude, *m.Longitude
	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return nil, fmt.Errorf("%w: coordinate out of range (%v, %v)", ErrMalformedReading, lat, lon)
	}
	return &domain.PositionReport{
		SenderStamp: *m.SenderStamp,
		Position:    domain.GeoPoint{Lat: lat, Lon: lon},
		SampleTime:  m.SampleTime,
	}, nil
}

// EncodeReading is the inverse of DecodeReading.
func EncodeReading(r *domain.PositionReport) ([]byte, error) {
	return json.Marshal(geodeticReading{
		SenderStamp: &r.SenderStamp,
		SampleTime:  r.SampleTime,
		Latitude:    &r.Position.Lat,
		Longitude:   &r.Position.Lon,
	})
}
