package render

import (
	"encoding/json"
	"encoding/xml"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"

	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/classify"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

var fixedTime = time.Date(2025, 7, 13, 18, 30, 0, 0, time.UTC)

func newTestRenderer() *Renderer {
	return New(classify.Default(), WithClock(func() time.Time { return fixedTime }))
}

// demoList is the duster plus airliner scenario around 41,-95.
func demoList() []tracking.EnrichedAircraft {
	raw := []adsb.Aircraft{
		{
			Hex:         "a12345",
			Flight:      "N123AG",
			Type:        "AT8T",
			Category:    "A0",
			Description: "Air Tractor AT-802A - Agricultural",
			Lat:         floatPtr(41.02),
			Lon:         floatPtr(-94.99),
			AltBaro:     floatPtr(1150),
			GS:          floatPtr(140),
			Track:       floatPtr(225),
			BaroRate:    floatPtr(-64),
		},
		{
			Hex:          "abc789",
			Flight:       "UAL232",
			Registration: "N37267",
			Type:         "B738",
			Description:  "Boeing 737-800",
			Lat:          floatPtr(41.3),
			Lon:          floatPtr(-94.8),
			AltBaro:      floatPtr(35000),
			GS:           floatPtr(475),
			Track:        floatPtr(270),
			Squawk:       "3421",
		},
	}
	return tracking.Process(raw, &tracking.Observer{Lat: 41.0, Lon: -95.0}, tracking.TrackingFilter{Range: 50})
}

// TestParseFormat tests format name mapping.
func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"text", Text},
		{"json", JSON},
		{"XML", XML},
		{" html ", HTML},
		{"yaml", YAML},
		{"csv", Text},
		{"", Text},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.expected {
			t.Errorf("ParseFormat(%q): expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

// TestRenderText tests the human-readable report.
func TestRenderText(t *testing.T) {
	r := newTestRenderer()

	t.Run("Duster scenario", func(t *testing.T) {
		out := ansi.Strip(r.Render(demoList(), Text, 41.0, -95.0))

		for _, want := range []string{
			"CYBER AIR PATROL - 2 aircraft in range",
			"Observer: 41.0000°, -95.0000°",
			"🌾 N123AG",
			"AGRICULTURAL",
			"Type: AT8T (Air Tractor AT-802A - Agricultural)",
			"1,150ft | 140kts | HDG 225° | ↓64fpm",
			"1.5mi NNE (21°) | ETA 0:38",
			"Reg: N37267 | Type: B738 (Boeing 737-800)",
			"FL350 | 475kts | HDG 270°",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected output to contain %q\n%s", want, out)
			}
		}

		if strings.Index(out, "N123AG") > strings.Index(out, "UAL232") {
			t.Error("Expected nearest aircraft first")
		}
	})

	t.Run("Empty list", func(t *testing.T) {
		out := ansi.Strip(r.Render(nil, Text, 41.0, -95.0))
		if !strings.Contains(out, "No aircraft detected in range") {
			t.Errorf("Expected empty message, got %q", out)
		}
	})

	t.Run("Unknown format falls back to text", func(t *testing.T) {
		out := ansi.Strip(r.Render(nil, Format("csv"), 41.0, -95.0))
		if !strings.Contains(out, "No aircraft detected in range") {
			t.Errorf("Expected text output, got %q", out)
		}
	})

	t.Run("Category icons", func(t *testing.T) {
		tests := []struct {
			typeCode string
			icon     string
		}{
			{"F16", "🛩️"},
			{"B744", "🛫"},
			{"R44", "🚁"},
			{"C172", "✈️"},
			{"ZZZZ", "✈️"},
		}
		for _, tt := range tests {
			list := []tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x", Flight: "TEST1", Type: tt.typeCode}}}
			out := ansi.Strip(r.Render(list, Text, 0, 0))
			if !strings.Contains(out, tt.icon+" TEST1") {
				t.Errorf("Type %s: expected icon %s, got\n%s", tt.typeCode, tt.icon, out)
			}
		}
	})

	t.Run("Special flight rainbow", func(t *testing.T) {
		list := []tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x", Flight: "AAL3283"}}}
		out := ansi.Strip(r.Render(list, Text, 0, 0))
		if !strings.Contains(out, classify.FirstLightMessage) {
			t.Errorf("Expected first light message, got\n%s", out)
		}
	})

	t.Run("Missing fields", func(t *testing.T) {
		list := []tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x"}}}
		out := ansi.Strip(r.Render(list, Text, 0, 0))
		if !strings.Contains(out, "NO CALLSIGN") || !strings.Contains(out, "GND") {
			t.Errorf("Expected placeholders, got\n%s", out)
		}
		if strings.Contains(out, "kts") || strings.Contains(out, "ETA") {
			t.Errorf("Expected absent fields omitted, got\n%s", out)
		}
	})

	t.Run("Emergency banners", func(t *testing.T) {
		banners := map[string]string{
			"7500": "SQUAWK 7500 - HIJACK",
			"7600": "SQUAWK 7600 - RADIO FAILURE",
			"7700": "SQUAWK 7700 - EMERGENCY",
		}
		for squawk, banner := range banners {
			list := []tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x", Squawk: squawk, Emergency: "general"}}}
			out := ansi.Strip(r.Render(list, Text, 0, 0))
			if !strings.Contains(out, banner) {
				t.Errorf("Expected %q, got\n%s", banner, out)
			}
			if !strings.Contains(out, "EMERGENCY: general") {
				t.Errorf("Expected emergency flag banner, got\n%s", out)
			}
		}
	})

	t.Run("NaN geometry does not panic", func(t *testing.T) {
		nan := math.NaN()
		list := []tracking.EnrichedAircraft{{
			Aircraft: adsb.Aircraft{Hex: "x", Lat: &nan, Lon: floatPtr(0)},
			Distance: &nan,
			Bearing:  &nan,
		}}
		out := ansi.Strip(r.Render(list, Text, 0, 0))
		if !strings.Contains(out, "NaNmi ?") {
			t.Errorf("Expected NaN distance printed, got\n%s", out)
		}
	})
}

// TestRainbow tests the per-rune colouring keeps the text intact.
func TestRainbow(t *testing.T) {
	msg := "✨ FIRST LIGHT ✨"
	if got := ansi.Strip(Rainbow(msg)); got != msg {
		t.Errorf("Expected %q, got %q", msg, got)
	}
}

// TestRenderJSON tests the structural encoding.
func TestRenderJSON(t *testing.T) {
	r := newTestRenderer()

	t.Run("Round trip", func(t *testing.T) {
		list := demoList()
		out := r.Render(list, JSON, 41.0, -95.0)

		var back []tracking.EnrichedAircraft
		if err := json.Unmarshal([]byte(out), &back); err != nil {
			t.Fatalf("Expected valid JSON, got: %v", err)
		}
		if !reflect.DeepEqual(list, back) {
			t.Errorf("Expected round trip equality\nwant %+v\ngot  %+v", list, back)
		}
	})

	t.Run("Field names", func(t *testing.T) {
		out := r.Render(demoList(), JSON, 41.0, -95.0)
		for _, key := range []string{`"hex"`, `"flight"`, `"alt_baro"`, `"gs"`, `"track"`, `"distance"`, `"bearing"`, `"eta"`} {
			if !strings.Contains(out, key) {
				t.Errorf("Expected key %s in JSON", key)
			}
		}
		if !strings.Contains(out, "\n  {") {
			t.Error("Expected two-space indentation")
		}
	})

	t.Run("Empty list", func(t *testing.T) {
		if out := r.Render(nil, JSON, 0, 0); out != "[]" {
			t.Errorf("Expected [], got %q", out)
		}
	})

	t.Run("Non-finite values dropped", func(t *testing.T) {
		nan := math.NaN()
		inf := math.Inf(1)
		list := []tracking.EnrichedAircraft{{
			Aircraft: adsb.Aircraft{Hex: "x", Lat: &nan, GS: &inf},
			Distance: &nan,
			ETA:      intPtr(5),
		}}

		out := r.Render(list, JSON, 0, 0)
		var back []map[string]any
		if err := json.Unmarshal([]byte(out), &back); err != nil {
			t.Fatalf("Expected valid JSON, got: %v\n%s", err, out)
		}
		if _, ok := back[0]["distance"]; ok {
			t.Error("Expected NaN distance omitted")
		}
		if _, ok := back[0]["gs"]; ok {
			t.Error("Expected infinite gs omitted")
		}
		if list[0].Distance == nil {
			t.Error("Expected input left untouched")
		}
	})
}

// TestRenderXML tests the XML report.
func TestRenderXML(t *testing.T) {
	r := newTestRenderer()

	t.Run("Structure", func(t *testing.T) {
		out := r.Render(demoList(), XML, 41.0, -95.0)
		if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
			t.Errorf("Expected XML header, got %q", out[:40])
		}

		var report xmlReport
		if err := xml.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("Expected valid XML, got: %v", err)
		}
		if report.Timestamp != "2025-07-13T18:30:00.000Z" {
			t.Errorf("Expected fixed timestamp, got %s", report.Timestamp)
		}
		if report.Count != 2 || len(report.Aircraft.Planes) != 2 {
			t.Fatalf("Expected 2 planes, got %d/%d", report.Count, len(report.Aircraft.Planes))
		}

		duster := report.Aircraft.Planes[0]
		if duster.Hex != "a12345" || duster.Callsign != "N123AG" || duster.Type != "AT8T" {
			t.Errorf("Unexpected identity: %+v", duster)
		}
		if duster.Registration != "" {
			t.Errorf("Expected no registration, got %s", duster.Registration)
		}
		if duster.Position == nil || duster.Position.Lat != 41.02 {
			t.Errorf("Expected position attributes, got %+v", duster.Position)
		}
		if duster.Distance != "1.48" {
			t.Errorf("Expected distance 1.48, got %s", duster.Distance)
		}
		if !strings.Contains(out, "<registration>N37267</registration>") {
			t.Error("Expected registration element for UAL232")
		}
	})

	t.Run("Optional elements omitted", func(t *testing.T) {
		out := r.Render([]tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x"}}}, XML, 0, 0)
		for _, tag := range []string{"<callsign>", "<position", "<altitude>", "<ground_speed>", "<distance>"} {
			if strings.Contains(out, tag) {
				t.Errorf("Expected %s omitted\n%s", tag, out)
			}
		}
	})

	t.Run("Escapes markup", func(t *testing.T) {
		out := r.Render([]tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x", Flight: "<A&B>"}}}, XML, 0, 0)
		if !strings.Contains(out, "<callsign>&lt;A&amp;B&gt;</callsign>") {
			t.Errorf("Expected escaped callsign\n%s", out)
		}
	})

	t.Run("Empty list", func(t *testing.T) {
		out := r.Render(nil, XML, 0, 0)
		if !strings.Contains(out, "<aircraft_count>0</aircraft_count>") || !strings.Contains(out, "<aircraft></aircraft>") {
			t.Errorf("Expected empty report\n%s", out)
		}
	})
}

// TestRenderYAML tests the YAML report.
func TestRenderYAML(t *testing.T) {
	r := newTestRenderer()
	out := r.Render(demoList(), YAML, 41.0, -95.0)

	if !strings.HasPrefix(out, "# Cyber Air Patrol Aircraft Report\n# Generated: 2025-07-13T18:30:00.000Z\n") {
		t.Errorf("Expected comment header, got\n%s", out)
	}
	if !strings.Contains(out, "aircraft:\n  - hex: a12345") {
		t.Errorf("Expected block sequence, got\n%s", out)
	}

	var doc struct {
		Count    int         `yaml:"aircraft_count"`
		Aircraft []yamlPlane `yaml:"aircraft"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("Expected valid YAML, got: %v", err)
	}
	if doc.Count != 2 || len(doc.Aircraft) != 2 {
		t.Fatalf("Expected 2 aircraft, got %d/%d", doc.Count, len(doc.Aircraft))
	}
	if doc.Aircraft[0].DistanceMiles == nil || *doc.Aircraft[0].DistanceMiles != 1.48 {
		t.Errorf("Expected distance_miles 1.48, got %v", doc.Aircraft[0].DistanceMiles)
	}
	if doc.Aircraft[1].Altitude == nil || *doc.Aircraft[1].Altitude != 35000 {
		t.Errorf("Expected altitude 35000, got %v", doc.Aircraft[1].Altitude)
	}

	empty := r.Render(nil, YAML, 0, 0)
	if !strings.Contains(empty, "aircraft_count: 0") || !strings.Contains(empty, "aircraft: []") {
		t.Errorf("Expected empty document, got\n%s", empty)
	}
}

// TestRenderHTML tests the HTML report.
func TestRenderHTML(t *testing.T) {
	r := newTestRenderer()

	t.Run("Header and cards", func(t *testing.T) {
		out := r.Render(demoList(), HTML, 41.0, -95.0)
		for _, want := range []string{
			"<!DOCTYPE html>",
			"Aircraft Report - 2025-07-13T18:30:00.000Z",
			"Observer: 41.0000°, -95.0000°",
			"Total Aircraft: 2",
			`class="aircraft agricultural"`,
			`class="aircraft"`,
			"1,150ft | 140kts | HDG 225° | 1.5mi NNE",
			`<span class="eta">ETA 0:38</span>`,
			"UAL232 (N37267)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected HTML to contain %q", want)
			}
		}
	})

	t.Run("Emergency and special classes", func(t *testing.T) {
		list := []tracking.EnrichedAircraft{
			{Aircraft: adsb.Aircraft{Hex: "x", Flight: "AAL3283", Type: "B772", Squawk: "7700"}},
		}
		out := r.Render(list, HTML, 0, 0)
		if !strings.Contains(out, `class="aircraft heavy special emergency"`) {
			t.Errorf("Expected combined classes\n%s", out)
		}
		if !strings.Contains(out, "SQUAWK 7700 - EMERGENCY") {
			t.Error("Expected squawk alert line")
		}
	})

	t.Run("Escapes markup", func(t *testing.T) {
		list := []tracking.EnrichedAircraft{{Aircraft: adsb.Aircraft{Hex: "x", Flight: "<script>"}}}
		out := r.Render(list, HTML, 0, 0)
		if strings.Contains(out, "<script>") {
			t.Error("Expected callsign to be escaped")
		}
		if !strings.Contains(out, "&lt;script&gt;") {
			t.Errorf("Expected escaped callsign\n%s", out)
		}
	})
}
