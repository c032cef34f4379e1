package render

import (
	"encoding/xml"
	"fmt"

	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

type xmlReport struct {
	XMLName   xml.Name        `xml:"aircraft_report"`
	Timestamp string          `xml:"timestamp"`
	Count     int             `xml:"aircraft_count"`
	Aircraft  xmlAircraftList `xml:"aircraft"`
}

type xmlAircraftList struct {
	Planes []xmlPlane `xml:"plane"`
}

type xmlPlane struct {
	Hex          string       `xml:"hex"`
	Callsign     string       `xml:"callsign,omitempty"`
	Registration string       `xml:"registration,omitempty"`
	Type         string       `xml:"type,omitempty"`
	Position     *xmlPosition `xml:"position,omitempty"`
	Altitude     *float64     `xml:"altitude,omitempty"`
	GroundSpeed  *float64     `xml:"ground_speed,omitempty"`
	Distance     string       `xml:"distance,omitempty"`
}

type xmlPosition struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// renderXML encodes the report with encoding/xml, which escapes every value.
func (r *Renderer) renderXML(list []tracking.EnrichedAircraft) string {
	report := xmlReport{
		Timestamp: r.timestamp(),
		Count:     len(list),
	}

	for _, ac := range list {
		p := xmlPlane{
			Hex:          ac.Hex,
			Callsign:     ac.Callsign(),
			Registration: ac.Registration,
			Type:         ac.Type,
			Altitude:     ac.Altitude(),
			GroundSpeed:  ac.GS,
		}
		if ac.HasPosition() {
			p.Position = &xmlPosition{Lat: *ac.Lat, Lon: *ac.Lon}
		}
		if ac.Distance != nil {
			p.Distance = fmt.Sprintf("%.2f", *ac.Distance)
		}
		report.Aircraft.Planes = append(report.Aircraft.Planes, p)
	}

	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		return xml.Header + "<aircraft_report/>"
	}
	return xml.Header + string(data)
}
