package tracking

import (
	"math"
	"testing"
	"time"

	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
)

func positioned(hex string, lat, lon float64) EnrichedAircraft {
	return EnrichedAircraft{Aircraft: adsb.Aircraft{Hex: hex, Lat: floatPtr(lat), Lon: floatPtr(lon)}}
}

// TestHistory tests trail bookkeeping.
func TestHistory(t *testing.T) {
	now := time.Now()

	t.Run("Bounded trail", func(t *testing.T) {
		h := NewHistory(3)
		for i := 0; i < 5; i++ {
			h.Update([]EnrichedAircraft{positioned("a", 41+float64(i)*0.01, -95)}, now.Add(time.Duration(i)*time.Second))
		}
		trail := h.Trail("a")
		if len(trail) != 3 {
			t.Fatalf("Expected 3 positions, got %d", len(trail))
		}
		if math.Abs(trail[0].Lat-41.02) > 1e-9 {
			t.Errorf("Expected oldest kept 41.02, got %f", trail[0].Lat)
		}
	})

	t.Run("Absent aircraft forgotten", func(t *testing.T) {
		h := NewHistory(0)
		h.Update([]EnrichedAircraft{positioned("a", 41, -95), positioned("b", 41, -95)}, now)
		h.Update([]EnrichedAircraft{positioned("b", 41.01, -95)}, now.Add(time.Second))
		if h.Len() != 1 || len(h.Trail("a")) != 0 {
			t.Errorf("Expected only b tracked, got %d trails", h.Len())
		}
	})

	t.Run("Unpositioned aircraft keep trail", func(t *testing.T) {
		h := NewHistory(0)
		h.Update([]EnrichedAircraft{positioned("a", 41, -95)}, now)
		h.Update([]EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "a"}}}, now.Add(time.Second))
		if len(h.Trail("a")) != 1 {
			t.Errorf("Expected trail kept while seen without position, got %d", len(h.Trail("a")))
		}
	})

	t.Run("Repeated fix not recorded", func(t *testing.T) {
		h := NewHistory(0)
		track := [][2]float64{
			{41.10, -94.90}, {41.08, -94.92}, {41.08, -94.92}, {41.06, -94.94}, {41.04, -94.96},
		}
		for i, p := range track {
			h.Update([]EnrichedAircraft{positioned("a12345", p[0], p[1])}, now.Add(time.Duration(i)*30*time.Second))
		}

		if n := len(h.Trail("a12345")); n != 4 {
			t.Errorf("Expected 4 positions, got %d", n)
		}
		if got := h.Loitering(5, 2); len(got) != 0 {
			t.Errorf("Expected no loitering for a straight track, got %v", got)
		}
	})

	t.Run("Loitering", func(t *testing.T) {
		h := NewHistory(0)
		box := [][2]float64{
			{41.01, -95.01}, {41.01, -94.99}, {40.99, -94.99}, {40.99, -95.01}, {41.01, -95.01},
		}
		for i, p := range box {
			h.Update([]EnrichedAircraft{
				positioned("circler", p[0], p[1]),
				positioned("straight", 40.9+float64(i)*0.05, -95.2),
			}, now.Add(time.Duration(i)*30*time.Second))
		}

		got := h.Loitering(5, 2)
		if len(got) != 1 || got[0] != "circler" {
			t.Errorf("Expected [circler], got %v", got)
		}
	})
}
