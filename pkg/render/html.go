package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/geo"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Cyber Air Patrol - Aircraft Report</title>
  <meta charset="UTF-8">
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; background: #f0f0f0; }
    .header { background: #2c3e50; color: white; padding: 20px; border-radius: 8px; }
    .aircraft { background: white; margin: 10px 0; padding: 15px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    .military { border-left: 5px solid #27ae60; }
    .heavy { border-left: 5px solid #9b59b6; }
    .agricultural { border-left: 5px solid #f39c12; }
    .helicopter { border-left: 5px solid #16a085; }
    .light { border-left: 5px solid #95a5a6; }
    .special { border: 2px solid #e056fd; }
    .emergency { background: #e74c3c; color: white; }
    .callsign { font-size: 1.2em; font-weight: bold; }
    .note { font-size: 0.9em; margin-left: 8px; padding: 2px 6px; border-radius: 4px; background: #c0392b; color: white; }
    .details { color: #7f8c8d; margin: 5px 0; }
    .position { color: #3498db; }
    .eta { color: #e74c3c; font-weight: bold; }
    .alert { font-weight: bold; }
  </style>
</head>
<body>
  <div class="header">
    <h1>🛩️ Cyber Air Patrol</h1>
    <p>Aircraft Report - {{.Timestamp}}</p>
    <p>Observer: {{.ObserverLat}}°, {{.ObserverLon}}° | Magnetic variation: {{.MagVar}}</p>
    <p>Total Aircraft: {{.Count}}</p>
  </div>
{{- range .Cards}}
  <div class="{{.Classes}}">
    <div class="callsign">{{.Callsign}}{{if .Registration}} ({{.Registration}}){{end}}{{if .Note}} <span class="note">{{.Note}}</span>{{end}}</div>
    <div class="details">Type: {{.Type}}{{if .Description}} - {{.Description}}{{end}}</div>
    <div class="position">
      {{.Altitude}} | {{.Speed}} | {{.Heading}} | {{.Distance}}
      {{- if .ETA}} <span class="eta">ETA {{.ETA}}</span>{{end}}
    </div>
{{- range .Alerts}}
    <div class="alert">⚠️ {{.}}</div>
{{- end}}
  </div>
{{- end}}
</body>
</html>
`))

type htmlData struct {
	Timestamp   string
	ObserverLat string
	ObserverLon string
	MagVar      string
	Count       int
	Cards       []htmlCard
}

type htmlCard struct {
	Classes      string
	Callsign     string
	Registration string
	Note         string
	Type         string
	Description  string
	Altitude     string
	Speed        string
	Heading      string
	Distance     string
	ETA          string
	Alerts       []string
}

// renderHTML builds a self-contained page. html/template escapes every value.
func (r *Renderer) renderHTML(list []tracking.EnrichedAircraft, observerLat, observerLon float64) string {
	data := htmlData{
		Timestamp:   r.timestamp(),
		ObserverLat: fmt.Sprintf("%.4f", observerLat),
		ObserverLon: fmt.Sprintf("%.4f", observerLon),
		MagVar:      r.magneticVariation(observerLat, observerLon),
		Count:       len(list),
	}

	for _, ac := range list {
		data.Cards = append(data.Cards, r.htmlCard(ac))
	}

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return "<!DOCTYPE html><html><body><p>Report unavailable</p></body></html>"
	}
	return buf.String()
}

func (r *Renderer) htmlCard(ac tracking.EnrichedAircraft) htmlCard {
	result := r.classifier.Classify(ac.Aircraft)

	classes := []string{"aircraft"}
	for _, c := range result.Categories {
		classes = append(classes, strings.ToLower(string(c)))
	}
	if result.Special != nil {
		classes = append(classes, "special")
	}
	emergency := ac.Emergency != "" || alerts.IsEmergencySquawk(ac.Squawk)
	if emergency {
		classes = append(classes, "emergency")
	}

	card := htmlCard{
		Classes:      strings.Join(classes, " "),
		Callsign:     ac.Callsign(),
		Registration: ac.Registration,
		Type:         ac.Type,
		Description:  ac.Description,
		Altitude:     geo.FormatAltitude(ac.Altitude()),
		Speed:        "?kts",
		Heading:      "HDG ?°",
		Distance:     "?mi",
	}

	if card.Callsign == "" {
		card.Callsign = "NO CALLSIGN"
	}
	if card.Type == "" {
		card.Type = "Unknown"
	}

	switch {
	case result.Special != nil:
		card.Note = result.Special.Message
	case result.Interesting != "":
		card.Note = result.Interesting
	}

	if ac.GS != nil {
		card.Speed = fmt.Sprintf("%.0fkts", *ac.GS)
	}
	if ac.Track != nil {
		card.Heading = fmt.Sprintf("HDG %.0f°", *ac.Track)
	}
	if ac.Distance != nil && ac.Bearing != nil {
		card.Distance = fmt.Sprintf("%.1fmi %s", *ac.Distance, geo.Compass(*ac.Bearing))
	}
	if ac.ETA != nil {
		card.ETA = formatETA(*ac.ETA)
	}

	if ac.Emergency != "" {
		card.Alerts = append(card.Alerts, "EMERGENCY: "+ac.Emergency)
	}
	if meaning := alerts.SquawkMeaning(ac.Squawk); meaning != "" {
		card.Alerts = append(card.Alerts, fmt.Sprintf("SQUAWK %s - %s", ac.Squawk, meaning))
	}

	return card
}
