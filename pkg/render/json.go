package render

import (
	"encoding/json"
	"math"

	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// finite drops NaN and infinite values, which JSON cannot represent.
func finite(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	return p
}

// sanitize returns a copy of ac with every non-finite number removed.
func sanitize(ac tracking.EnrichedAircraft) tracking.EnrichedAircraft {
	a := &ac.Aircraft
	a.Lat = finite(a.Lat)
	a.Lon = finite(a.Lon)
	a.AltBaro = finite(a.AltBaro)
	a.AltGeom = finite(a.AltGeom)
	a.GS = finite(a.GS)
	a.TAS = finite(a.TAS)
	a.Track = finite(a.Track)
	a.TrackRate = finite(a.TrackRate)
	a.Roll = finite(a.Roll)
	a.BaroRate = finite(a.BaroRate)
	a.GeomRate = finite(a.GeomRate)
	a.NavAltitudeMCP = finite(a.NavAltitudeMCP)
	a.NavHeading = finite(a.NavHeading)
	a.Seen = finite(a.Seen)
	a.SeenPos = finite(a.SeenPos)
	ac.Distance = finite(ac.Distance)
	ac.Bearing = finite(ac.Bearing)
	return ac
}

// renderJSON pretty-prints the enriched list with two-space indentation.
func (r *Renderer) renderJSON(list []tracking.EnrichedAircraft) string {
	clean := make([]tracking.EnrichedAircraft, len(list))
	for i, ac := range list {
		clean[i] = sanitize(ac)
	}

	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		// Unreachable once values are sanitized
		return "[]"
	}
	return string(data)
}
