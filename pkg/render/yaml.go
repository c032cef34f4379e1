package render

import (
	"bytes"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

type yamlReport struct {
	Count    int         `yaml:"aircraft_count"`
	Aircraft []yamlPlane `yaml:"aircraft"`
}

type yamlPlane struct {
	Hex           string        `yaml:"hex"`
	Callsign      string        `yaml:"callsign,omitempty"`
	Registration  string        `yaml:"registration,omitempty"`
	Type          string        `yaml:"type,omitempty"`
	Position      *yamlPosition `yaml:"position,omitempty"`
	Altitude      *float64      `yaml:"altitude,omitempty"`
	GroundSpeed   *float64      `yaml:"ground_speed,omitempty"`
	DistanceMiles *float64      `yaml:"distance_miles,omitempty"`
}

type yamlPosition struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// renderYAML encodes the report as a block-style YAML document with a
// comment header.
func (r *Renderer) renderYAML(list []tracking.EnrichedAircraft) string {
	report := yamlReport{
		Count:    len(list),
		Aircraft: make([]yamlPlane, 0, len(list)),
	}

	for _, ac := range list {
		p := yamlPlane{
			Hex:          ac.Hex,
			Callsign:     ac.Callsign(),
			Registration: ac.Registration,
			Type:         ac.Type,
			Altitude:     ac.Altitude(),
			GroundSpeed:  ac.GS,
		}
		if ac.HasPosition() {
			p.Position = &yamlPosition{Lat: *ac.Lat, Lon: *ac.Lon}
		}
		if ac.Distance != nil {
			d := math.Round(*ac.Distance*100) / 100
			p.DistanceMiles = &d
		}
		report.Aircraft = append(report.Aircraft, p)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Cyber Air Patrol Aircraft Report\n# Generated: %s\n", r.timestamp())

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(&buf, "aircraft_count: %d\n", len(list))
	}
	enc.Close()

	return buf.String()
}
