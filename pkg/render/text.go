package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/classify"
	"github.com/unklstewy/cyberairpatrol/pkg/geo"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// ANSI colours, matching what most terminals show for the basic palette.
var (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorWhite   = lipgloss.Color("7")
	colorGray    = lipgloss.Color("8")
	colorBright  = lipgloss.Color("15")
	colorBlack   = lipgloss.Color("0")
)

// rainbow is the per-rune colour cycle for special flights.
var rainbow = []lipgloss.Color{colorRed, colorYellow, colorGreen, colorCyan, colorBlue, colorMagenta}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	emptyStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	grayStyle     = lipgloss.NewStyle().Foreground(colorGray)
	altitudeStyle = lipgloss.NewStyle().Foreground(colorYellow)
	distanceStyle = lipgloss.NewStyle().Foreground(colorBlue)
	etaStyle      = lipgloss.NewStyle().Foreground(colorRed)
	specialStyle  = lipgloss.NewStyle().Background(colorMagenta).Foreground(colorBright)
	labelStyle    = lipgloss.NewStyle().Background(colorRed).Foreground(colorBright)
	alarmStyle    = lipgloss.NewStyle().Background(colorRed).Foreground(colorBright)
	cautionStyle  = lipgloss.NewStyle().Background(colorYellow).Foreground(colorBlack)
)

// categoryLook is the icon and callsign colour for one category.
type categoryLook struct {
	icon  string
	color lipgloss.Color
}

var defaultLook = categoryLook{icon: "✈️", color: colorWhite}

var categoryLooks = map[classify.Category]categoryLook{
	classify.Military:     {icon: "🛩️", color: colorGreen},
	classify.Heavy:        {icon: "🛫", color: colorMagenta},
	classify.Agricultural: {icon: "🌾", color: colorYellow},
	classify.Helicopter:   {icon: "🚁", color: colorCyan},
}

// lookFor returns the icon and colour for a primary category.
func lookFor(c classify.Category) categoryLook {
	if look, ok := categoryLooks[c]; ok {
		return look
	}
	return defaultLook
}

// Rainbow colours s one rune at a time through the six-colour cycle.
func Rainbow(s string) string {
	var b strings.Builder
	i := 0
	for _, r := range s {
		b.WriteString(lipgloss.NewStyle().Foreground(rainbow[i%len(rainbow)]).Render(string(r)))
		i++
	}
	return b.String()
}

func (r *Renderer) renderText(list []tracking.EnrichedAircraft, observerLat, observerLon float64) string {
	if len(list) == 0 {
		return emptyStyle.Render("No aircraft detected in range") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("✈️  CYBER AIR PATROL - %d aircraft in range", len(list))))
	b.WriteString("\n")
	b.WriteString(grayStyle.Render(fmt.Sprintf("Observer: %.4f°, %.4f° | Magnetic variation: %s",
		observerLat, observerLon, r.magneticVariation(observerLat, observerLon))))
	b.WriteString("\n")
	b.WriteString(grayStyle.Render(strings.Repeat("═", 80)))
	b.WriteString("\n\n")

	for _, ac := range list {
		r.writeTextAircraft(&b, ac)
	}

	return b.String()
}

func (r *Renderer) writeTextAircraft(b *strings.Builder, ac tracking.EnrichedAircraft) {
	result := r.classifier.Classify(ac.Aircraft)
	look := lookFor(result.Primary)

	callsign := ac.Callsign()
	if callsign == "" {
		callsign = "NO CALLSIGN"
	}

	// Identity
	b.WriteString(look.icon + " ")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(look.color).Render(callsign))
	switch {
	case result.Special != nil && result.Special.Rainbow:
		b.WriteString("\n   " + Rainbow(result.Special.Message))
	case result.Special != nil:
		b.WriteString(" " + specialStyle.Render(" "+result.Special.Message+" "))
	case result.Interesting != "":
		b.WriteString(" " + labelStyle.Render(" "+result.Interesting+" "))
	}
	b.WriteString("\n")

	// Registration and type
	var details []string
	if ac.Registration != "" {
		details = append(details, "Reg: "+ac.Registration)
	}
	if ac.Type != "" {
		t := "Type: " + ac.Type
		if ac.Description != "" {
			t += " (" + ac.Description + ")"
		}
		details = append(details, t)
	} else if ac.Description != "" {
		details = append(details, ac.Description)
	}
	if len(details) > 0 {
		b.WriteString(grayStyle.Render("   " + strings.Join(details, " | ")))
		b.WriteString("\n")
	}

	// Altitude and movement
	b.WriteString("   " + altitudeStyle.Render(geo.FormatAltitude(ac.Altitude())))
	if ac.GS != nil {
		b.WriteString(grayStyle.Render(fmt.Sprintf(" | %.0fkts", *ac.GS)))
	}
	if ac.Track != nil {
		b.WriteString(grayStyle.Render(fmt.Sprintf(" | HDG %.0f°", *ac.Track)))
	}
	if ac.BaroRate != nil && *ac.BaroRate != 0 {
		arrow := "↑"
		if *ac.BaroRate < 0 {
			arrow = "↓"
		}
		b.WriteString(grayStyle.Render(fmt.Sprintf(" | %s%.0ffpm", arrow, math.Abs(*ac.BaroRate))))
	}
	b.WriteString("\n")

	// Distance and bearing from the observer
	if ac.Distance != nil && ac.Bearing != nil {
		b.WriteString("   " + distanceStyle.Render(fmt.Sprintf("%.1fmi", *ac.Distance)) + " ")
		b.WriteString(grayStyle.Render(fmt.Sprintf("%s (%.0f°)", geo.Compass(*ac.Bearing), *ac.Bearing)))
		if ac.ETA != nil {
			b.WriteString(etaStyle.Render(" | ETA " + formatETA(*ac.ETA)))
		}
		b.WriteString("\n")
	}

	// Emergencies
	if ac.Emergency != "" {
		b.WriteString(alarmStyle.Render("   ⚠️  EMERGENCY: "+ac.Emergency) + "\n")
	}
	switch ac.Squawk {
	case alerts.SquawkEmergency:
		b.WriteString(alarmStyle.Render("   ⚠️  SQUAWK 7700 - EMERGENCY") + "\n")
	case alerts.SquawkRadioFailure:
		b.WriteString(cautionStyle.Render("   ⚠️  SQUAWK 7600 - RADIO FAILURE") + "\n")
	case alerts.SquawkHijack:
		b.WriteString(alarmStyle.Render("   ⚠️  SQUAWK 7500 - HIJACK") + "\n")
	}

	b.WriteString("\n")
}
