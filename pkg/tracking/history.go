package tracking

import (
	"sort"
	"sync"
	"time"

	"github.com/unklstewy/cyberairpatrol/pkg/geo"
)

// DefaultHistoryLength is the number of positions kept per aircraft.
const DefaultHistoryLength = 20

// History keeps a short in-memory position trail per aircraft so watch mode
// can spot loitering. Nothing is persisted; an aircraft missing from a
// cycle loses its trail.
type History struct {
	mu     sync.Mutex
	maxLen int
	trails map[string][]geo.Position
}

// NewHistory creates a history keeping up to maxLen positions per aircraft.
func NewHistory(maxLen int) *History {
	if maxLen <= 0 {
		maxLen = DefaultHistoryLength
	}
	return &History{
		maxLen: maxLen,
		trails: make(map[string][]geo.Position),
	}
}

// Update records one cycle of aircraft. Positioned aircraft get a new trail
// point unless the fix repeats the last one; hexes absent from the cycle
// are forgotten.
func (h *History) Update(list []EnrichedAircraft, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]bool, len(list))
	for _, ac := range list {
		seen[ac.Hex] = true
		if !ac.HasPosition() {
			continue
		}

		trail := h.trails[ac.Hex]
		if n := len(trail); n > 0 && trail[n-1].Lat == *ac.Lat && trail[n-1].Lon == *ac.Lon {
			continue
		}
		trail = append(trail, geo.Position{Lat: *ac.Lat, Lon: *ac.Lon, Time: at})
		if len(trail) > h.maxLen {
			trail = trail[len(trail)-h.maxLen:]
		}
		h.trails[ac.Hex] = trail
	}

	for hex := range h.trails {
		if !seen[hex] {
			delete(h.trails, hex)
		}
	}
}

// Trail returns a copy of the positions recorded for hex, oldest first.
func (h *History) Trail(hex string) []geo.Position {
	h.mu.Lock()
	defer h.mu.Unlock()

	trail := h.trails[hex]
	out := make([]geo.Position, len(trail))
	copy(out, trail)
	return out
}

// Len returns the number of aircraft with a trail.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.trails)
}

// Loitering returns, sorted, the hexes whose trail circles its own
// centroid within radiusMiles.
func (h *History) Loitering(radiusMiles float64, minTurns int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var hexes []string
	for hex, trail := range h.trails {
		if len(trail) == 0 {
			continue
		}
		center := centroid(trail)
		if geo.IsInPattern(trail, center, radiusMiles, minTurns) {
			hexes = append(hexes, hex)
		}
	}
	sort.Strings(hexes)
	return hexes
}

func centroid(trail []geo.Position) geo.Point {
	var lat, lon float64
	for _, p := range trail {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(trail))
	return geo.Point{Lat: lat / n, Lon: lon / n}
}
