// Package tracking places raw aircraft relative to a ground observer and
// selects the ones worth showing.
package tracking

import (
	"math"
	"sort"

	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/geo"
)

// MissingDistance is the sort key used for aircraft with no distance.
// Such aircraft are always ordered after every aircraft with a distance,
// including ones farther away than this value.
const MissingDistance = 999.0

// Observer is the fixed ground position distances and bearings are
// measured from.
type Observer struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EnrichedAircraft is a raw record plus observer-relative geometry.
// Distance and Bearing are set together, and only when both the aircraft
// and the observer have a position. ETA is set only for closing aircraft.
type EnrichedAircraft struct {
	adsb.Aircraft

	// Distance from the observer in statute miles
	Distance *float64 `json:"distance,omitempty"`

	// Bearing from the observer to the aircraft, [0, 360)
	Bearing *float64 `json:"bearing,omitempty"`

	// ETA is the estimated seconds until the aircraft reaches the observer
	ETA *int `json:"eta,omitempty"`
}

// TrackingFilter selects aircraft for display. Range is the query radius
// handed to the feed; the altitude bounds are inclusive and optional.
type TrackingFilter struct {
	Range       float64
	MinAltitude *float64
	MaxAltitude *float64
}

// Enrich computes distance, bearing and ETA for one aircraft.
// A nil observer or an aircraft without a position yields no geometry.
// Non-finite coordinates are not validated and produce NaN geometry.
func Enrich(ac adsb.Aircraft, obs *Observer) EnrichedAircraft {
	enriched := EnrichedAircraft{Aircraft: ac}

	if obs == nil || !ac.HasPosition() {
		return enriched
	}

	distance := geo.Distance(obs.Lat, obs.Lon, *ac.Lat, *ac.Lon)
	bearing := geo.Bearing(obs.Lat, obs.Lon, *ac.Lat, *ac.Lon)

	enriched.Distance = &distance
	enriched.Bearing = &bearing
	enriched.ETA = geo.ETA(distance, ac.GS, bearing, ac.Track)

	return enriched
}

// EnrichAll enriches each aircraft in order.
func EnrichAll(list []adsb.Aircraft, obs *Observer) []EnrichedAircraft {
	out := make([]EnrichedAircraft, len(list))
	for i, ac := range list {
		out[i] = Enrich(ac, obs)
	}
	return out
}

// filterAltitude is alt_baro, else alt_geom, else 0.
func filterAltitude(ac EnrichedAircraft) float64 {
	if alt := ac.Altitude(); alt != nil {
		return *alt
	}
	return 0
}

// sortKey returns the distance and whether it is present. NaN counts as absent.
func sortKey(ac EnrichedAircraft) (float64, bool) {
	if ac.Distance == nil || math.IsNaN(*ac.Distance) {
		return MissingDistance, false
	}
	return *ac.Distance, true
}

// FilterAndSort drops aircraft outside the altitude bounds and orders the
// rest by ascending distance. The sort is stable and aircraft without a
// distance come last. The input slice is not modified.
func FilterAndSort(list []EnrichedAircraft, f TrackingFilter) []EnrichedAircraft {
	out := make([]EnrichedAircraft, 0, len(list))
	for _, ac := range list {
		alt := filterAltitude(ac)
		if f.MinAltitude != nil && alt < *f.MinAltitude {
			continue
		}
		if f.MaxAltitude != nil && alt > *f.MaxAltitude {
			continue
		}
		out = append(out, ac)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, oki := sortKey(out[i])
		dj, okj := sortKey(out[j])
		if oki != okj {
			return oki
		}
		return di < dj
	})

	return out
}

// Process runs the full pipeline: enrich every record, then filter and sort.
func Process(raw []adsb.Aircraft, obs *Observer, f TrackingFilter) []EnrichedAircraft {
	return FilterAndSort(EnrichAll(raw, obs), f)
}
