// Package geo provides the geodesic helpers used to place aircraft relative
// to a ground observer.
//
// All angles are in decimal degrees and all distances in statute miles.
// Inputs are not range-checked: non-finite coordinates propagate as NaN.
package geo

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants for geodesic calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusMiles is the spherical Earth radius used for all distances
	EarthRadiusMiles = 3959.0

	// FlightLevelThresholdFt is the altitude at and above which altitudes
	// are displayed as flight levels
	FlightLevelThresholdFt = 18000.0

	// DefaultPatternRadiusMiles is the loiter detection radius used when the
	// caller has no better value
	DefaultPatternRadiusMiles = 5.0

	// DefaultPatternTurns is the number of significant turns needed to call a
	// track a pattern
	DefaultPatternTurns = 2
)

// compassPoints is the 16-point compass rose starting at north.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Point is a position on the Earth's surface.
type Point struct {
	Lat float64
	Lon float64
}

// Position is a timestamped point from an aircraft's track history.
type Position struct {
	Lat  float64
	Lon  float64
	Time time.Time
}

// Distance returns the great-circle distance between two points in miles
// using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * DegreesToRadians
	dLon := (lon2 - lon1) * DegreesToRadians

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*DegreesToRadians)*math.Cos(lat2*DegreesToRadians)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// Bearing returns the initial bearing (forward azimuth) from point 1 to
// point 2 in the range [0, 360), where 0 = North and 90 = East.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegreesToRadians
	lat2Rad := lat2 * DegreesToRadians
	dLon := (lon2 - lon1) * DegreesToRadians

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	return NormalizeBearing(math.Atan2(y, x) * RadiansToDegrees)
}

// NormalizeBearing folds any finite angle into [0, 360).
func NormalizeBearing(bearing float64) float64 {
	b := math.Mod(bearing, 360.0)
	if b < 0 {
		b += 360.0
	}
	// -0.0000001 folds to 360 after the addition above
	if b >= 360.0 {
		b = 0
	}
	return b
}

// Compass converts a bearing to the nearest of the 16 compass points.
// Non-finite bearings return "?".
func Compass(bearing float64) string {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return "?"
	}
	index := int(math.Round(NormalizeBearing(bearing)/22.5)) % len(compassPoints)
	return compassPoints[index]
}

// ETA estimates the seconds until the aircraft reaches the observer.
//
// The estimate divides the straight-line distance by the raw ground speed;
// it is not corrected for the closing component of the velocity.
// Returns nil when the ground speed or track is unknown, the geometry is
// not finite, the aircraft is effectively stationary (< 1 kt), or the
// aircraft is moving away, which is a closing angle strictly between 90
// and 270 degrees.
func ETA(distance float64, groundSpeed *float64, bearing float64, track *float64) *int {
	if groundSpeed == nil || *groundSpeed < 1 {
		return nil
	}
	if track == nil {
		return nil
	}
	if !finite(distance) || !finite(bearing) || !finite(*track) {
		return nil
	}

	closingAngle := math.Abs(bearing - math.Mod(*track+180, 360))
	if closingAngle > 90 && closingAngle < 270 {
		return nil
	}

	seconds := int(math.Round(3600 * distance / *groundSpeed))
	return &seconds
}

// FormatAltitude renders an altitude in feet for display: "GND" for a
// missing or zero altitude, flight level notation at or above 18,000 ft,
// and grouped feet otherwise (e.g. "5,000ft").
func FormatAltitude(altitude *float64) string {
	if altitude == nil || *altitude == 0 {
		return "GND"
	}

	alt := *altitude
	if alt >= FlightLevelThresholdFt {
		return fmt.Sprintf("FL%03d", int(math.Round(alt/100)))
	}

	return humanize.Commaf(alt) + "ft"
}

// IsInPattern reports whether a track looks like a loiter or circling
// pattern around center: every position within radiusMiles and at least
// minTurns heading changes of more than 30 degrees between consecutive legs.
// Fewer than four positions never form a pattern.
func IsInPattern(positions []Position, center Point, radiusMiles float64, minTurns int) bool {
	if len(positions) < 4 {
		return false
	}

	for _, pos := range positions {
		if Distance(center.Lat, center.Lon, pos.Lat, pos.Lon) > radiusMiles {
			return false
		}
	}

	turns := 0
	for i := 2; i < len(positions); i++ {
		leg1 := Bearing(positions[i-2].Lat, positions[i-2].Lon, positions[i-1].Lat, positions[i-1].Lon)
		leg2 := Bearing(positions[i-1].Lat, positions[i-1].Lon, positions[i].Lat, positions[i].Lon)

		// 330+ is a small turn across north
		turn := math.Abs(leg2 - leg1)
		if turn > 30 && turn < 330 {
			turns++
		}
	}

	return turns >= minTurns
}

// MagneticVariation returns the magnetic declination at a point in degrees,
// positive east, using the World Magnetic Model. Returns 0 if the model
// cannot be evaluated for the given date.
func MagneticVariation(lat, lon float64, at time.Time) float64 {
	loc := egm96.NewLocationGeodetic(lat, lon, 0)

	mag, err := wmm.CalculateWMMMagneticField(loc, at)
	if err != nil {
		return 0.0
	}

	return mag.D()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
