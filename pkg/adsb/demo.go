package adsb

import (
	"context"
	"strings"
)

// DemoSource is a DataSource that simulates two aircraft placed relative to
// the query point: a low crop duster close in and an airliner at cruise.
// It never fails and needs no credentials.
type DemoSource struct{}

// NewDemoSource creates the demo traffic generator.
func NewDemoSource() *DemoSource {
	return &DemoSource{}
}

func ptr(f float64) *float64 {
	return &f
}

// demoAircraft builds the simulated traffic around a point.
func demoAircraft(lat, lon float64) []Aircraft {
	return []Aircraft{
		{
			Hex:         "a12345",
			Flight:      "N123AG",
			Type:        "AT8T",
			Category:    "A0",
			Description: "Air Tractor AT-802A - Agricultural",
			Lat:         ptr(lat + 0.02),
			Lon:         ptr(lon - 0.01),
			AltBaro:     ptr(1150),
			GS:          ptr(140),
			Track:       ptr(225),
			Seen:        ptr(0),
		},
		{
			Hex:         "abc789",
			Flight:      "UAL232",
			Type:        "B738",
			Category:    "A3",
			Description: "Boeing 737-800",
			Lat:         ptr(lat + 0.3),
			Lon:         ptr(lon + 0.2),
			AltBaro:     ptr(35000),
			GS:          ptr(475),
			Track:       ptr(270),
			Seen:        ptr(0),
		},
	}
}

// GetAircraft returns the simulated aircraft around the center point.
// The radius is not applied; filtering is left to the caller.
func (d *DemoSource) GetAircraft(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]Aircraft, error) {
	return demoAircraft(centerLat, centerLon), nil
}

// GetAircraftByHex looks up a simulated aircraft placed around 0,0.
func (d *DemoSource) GetAircraftByHex(ctx context.Context, hex string) (*Aircraft, error) {
	for _, ac := range demoAircraft(0, 0) {
		if ac.Hex == strings.ToLower(hex) {
			return &ac, nil
		}
	}
	return nil, nil
}

// Ping always succeeds.
func (d *DemoSource) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (d *DemoSource) Close() error {
	return nil
}
