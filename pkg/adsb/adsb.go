package adsb

import (
	"context"
	"errors"
	"strings"
)

// Aircraft is one raw aircraft record as supplied by a feed.
// Hex is always present; every other field is optional, and optional
// numbers are pointers so that "absent" is distinct from zero.
// JSON field names are the ones used in rendered reports.
type Aircraft struct {
	// Hex is the unique 24-bit ICAO aircraft address (e.g., "a12345")
	Hex string `json:"hex"`

	// Flight is the callsign, trimmed of padding
	Flight string `json:"flight,omitempty"`

	// Registration is the tail number
	Registration string `json:"registration,omitempty"`

	// Type is the ICAO aircraft type designator (e.g., "B737", "C172")
	Type string `json:"type,omitempty"`

	// Category is the ADS-B emitter category (A0-A7, B*, C*)
	Category string `json:"category,omitempty"`

	// Description is a human-readable aircraft description
	Description string `json:"description,omitempty"`

	// Lat/Lon in decimal degrees (WGS84)
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	// AltBaro is barometric altitude in feet; "ground" is reported as 0
	AltBaro *float64 `json:"alt_baro,omitempty"`

	// AltGeom is geometric (GNSS) altitude in feet
	AltGeom *float64 `json:"alt_geom,omitempty"`

	// GS is ground speed and TAS true air speed, both in knots
	GS  *float64 `json:"gs,omitempty"`
	TAS *float64 `json:"tas,omitempty"`

	// Track is the ground track in degrees (0 = North)
	Track *float64 `json:"track,omitempty"`

	// TrackRate is the rate of change of track in degrees/second
	TrackRate *float64 `json:"track_rate,omitempty"`

	// Roll angle in degrees, negative is left
	Roll *float64 `json:"roll,omitempty"`

	// BaroRate and GeomRate are vertical rates in feet/minute
	BaroRate *float64 `json:"baro_rate,omitempty"`
	GeomRate *float64 `json:"geom_rate,omitempty"`

	// Emergency is the ADS-B emergency/priority status ("none" is normalized away)
	Emergency string `json:"emergency,omitempty"`

	// NavAltitudeMCP is the selected altitude on the autopilot panel (feet)
	NavAltitudeMCP *float64 `json:"nav_altitude_mcp,omitempty"`

	// NavHeading is the selected heading (degrees)
	NavHeading *float64 `json:"nav_heading,omitempty"`

	// Squawk is the 4-digit Mode A transponder code
	Squawk string `json:"squawk,omitempty"`

	// Seen is seconds since any message; SeenPos seconds since the last position
	Seen    *float64 `json:"seen,omitempty"`
	SeenPos *float64 `json:"seen_pos,omitempty"`
}

// HasPosition reports whether both coordinates are present.
func (a Aircraft) HasPosition() bool {
	return a.Lat != nil && a.Lon != nil
}

// Altitude returns the altitude used for filtering and display:
// barometric if present, otherwise geometric, otherwise nil.
func (a Aircraft) Altitude() *float64 {
	if a.AltBaro != nil {
		return a.AltBaro
	}
	return a.AltGeom
}

// Callsign returns the trimmed callsign.
func (a Aircraft) Callsign() string {
	return strings.TrimSpace(a.Flight)
}

// ErrUnauthorized is returned when the feed rejects the API credentials.
var ErrUnauthorized = errors.New("invalid API key, check your ADS-B feed credentials")

// DataSource is the interface that all ADS-B feed providers implement.
// It allows switching between online services (ADSBexchange, airplanes.live),
// a local readsb receiver, and the built-in demo traffic.
type DataSource interface {
	// GetAircraft returns all aircraft within radiusMiles of a point.
	GetAircraft(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]Aircraft, error)

	// GetAircraftByHex returns a specific aircraft by its ICAO address.
	// Returns nil, nil if the aircraft is not currently tracked.
	GetAircraftByHex(ctx context.Context, hex string) (*Aircraft, error)

	// Ping performs a single connectivity probe. It does not retry.
	Ping(ctx context.Context) error

	// Close cleanly shuts down the data source.
	Close() error
}
