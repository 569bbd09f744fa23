package http

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/lapwatch/internal/core/domain"
	"github.com/samirrijal/lapwatch/internal/pkg/geospatial"
)

type lapConfigView struct {
	OuterRadius float64 `json:"outer_radius_m"`
	InnerRadius float64 `json:"inner_radius_m"`
	Period      uint32  `json:"period"`
}

// LapStatusHandler returns the live lap counter.
func LapStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		th, period := deps.Laps.Thresholds()
		return c.JSON(fiber.Map{
			"data": deps.Laps.Status(),
			"config": lapConfigView{
				OuterRadius: th.Outer,
				InnerRadius: th.Inner,
				Period:      period,
			},
		})
	}
}

// ReferenceHandler returns the captured start point.
func ReferenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, ok := deps.Laps.Reference()
		if !ok {
			return errNotFound(c, "reference point not captured yet")
		}
		return c.JSON(fiber.Map{"data": ref})
	}
}

// DistanceHandler projects ?lat=&lon= against the reference point and
// tells which side of the radii it falls on. The great-circle distance
// is returned alongside for comparison. Useful when surveying a track
// before a run.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			return errBadRequest(c, "lat and lon query parameters are required")
		}
		if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
			return errBadRequest(c, "lat must be within ±90 and lon within ±180")
		}

		ref, ok := deps.Laps.Reference()
		if !ok {
			return errUnavailable(c, "reference point not captured yet")
		}

		p := domain.GeoPoint{Lat: lat, Lon: lon}
		v := geospatial.ToLocal(ref.Position, p)
		d := geospatial.PlanarDistance(ref.Position, p)
		th, _ := deps.Laps.Thresholds()
		LoggerFromCtx(c.UserContext()).Debug("distance probe", "lat", lat, "lon", lon, "distance_m", d)

		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"east_m":         v.X,
				"north_m":        v.Y,
				"distance_m":     d,
				"great_circle_m": geospatial.GreatCircle(ref.Position, p),
				"beyond_outer":   d > th.Outer,
				"within_inner":   d < th.Inner,
				"reference":      ref.Position,
				"point":          p,
			},
		})
	}
}
