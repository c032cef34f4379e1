// Package alerts decides which aircraft in a cycle deserve attention.
package alerts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/unklstewy/cyberairpatrol/pkg/classify"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// Kind identifies the condition that raised an alert.
type Kind string

const (
	EmergencySquawk  Kind = "emergency_squawk"
	LowAltitude      Kind = "low_altitude"
	MilitaryCallsign Kind = "military_callsign"
	SpecialFlight    Kind = "special_flight"
	Proximity        Kind = "proximity"
)

// Level is the urgency of an alert.
type Level string

const (
	Info     Level = "info"
	Warning  Level = "warning"
	Critical Level = "critical"
)

// Emergency transponder codes.
const (
	SquawkHijack       = "7500"
	SquawkRadioFailure = "7600"
	SquawkEmergency    = "7700"
)

// Alert is one condition raised for one aircraft.
type Alert struct {
	Kind     Kind   `json:"type"`
	Level    Level  `json:"level"`
	Hex      string `json:"hex"`
	Callsign string `json:"callsign,omitempty"`
	Message  string `json:"message"`
}

// Thresholds configures the low-altitude and proximity checks.
type Thresholds struct {
	// LowAltitudeFt and LowAltitudeMinSpeedKts: an airborne aircraft below
	// the altitude and faster than the speed raises LowAltitude
	LowAltitudeFt          float64
	LowAltitudeMinSpeedKts float64

	// Proximity levels; an aircraft is critical below either critical bound
	// and a warning below either warning bound
	AltitudeCriticalFt float64
	AltitudeWarningFt  float64
	DistanceCriticalMi float64
	DistanceWarningMi  float64
}

// DefaultThresholds returns the stock alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowAltitudeFt:          1000,
		LowAltitudeMinSpeedKts: 50,
		AltitudeCriticalFt:     1500,
		AltitudeWarningFt:      2500,
		DistanceCriticalMi:     3.0,
		DistanceWarningMi:      5.0,
	}
}

// IsEmergencySquawk reports whether squawk is 7500, 7600 or 7700.
func IsEmergencySquawk(squawk string) bool {
	switch squawk {
	case SquawkHijack, SquawkRadioFailure, SquawkEmergency:
		return true
	}
	return false
}

// SquawkMeaning describes an emergency squawk, or returns "".
func SquawkMeaning(squawk string) string {
	switch squawk {
	case SquawkHijack:
		return "HIJACK"
	case SquawkRadioFailure:
		return "RADIO FAILURE"
	case SquawkEmergency:
		return "EMERGENCY"
	}
	return ""
}

// Evaluate returns the alerts raised by one aircraft, in a fixed order:
// emergency, low altitude, military callsign, special flight, proximity.
func Evaluate(ac tracking.EnrichedAircraft, result classify.Result, th Thresholds) []Alert {
	var out []Alert
	callsign := ac.Callsign()

	add := func(kind Kind, level Level, msg string) {
		out = append(out, Alert{Kind: kind, Level: level, Hex: ac.Hex, Callsign: callsign, Message: msg})
	}

	if IsEmergencySquawk(ac.Squawk) {
		add(EmergencySquawk, Critical, fmt.Sprintf("SQUAWK %s - %s", ac.Squawk, SquawkMeaning(ac.Squawk)))
	} else if ac.Emergency != "" {
		add(EmergencySquawk, Critical, "EMERGENCY: "+ac.Emergency)
	}

	alt := ac.Altitude()
	if alt != nil && *alt > 0 && *alt < th.LowAltitudeFt && ac.GS != nil && *ac.GS > th.LowAltitudeMinSpeedKts {
		add(LowAltitude, Warning, fmt.Sprintf("Low altitude %.0fft at %.0fkts", *alt, *ac.GS))
	}

	if result.Interesting == "STRATCOM" {
		add(MilitaryCallsign, Warning, "STRATCOM callsign "+callsign)
	}

	if result.Special != nil && result.Special.Alert {
		add(SpecialFlight, Info, result.Special.Message)
	}

	if level := proximityLevel(ac, th); level != "" {
		add(Proximity, level, proximityMessage(ac))
	}

	return out
}

func proximityLevel(ac tracking.EnrichedAircraft, th Thresholds) Level {
	alt := ac.Altitude()
	airborneBelow := func(limit float64) bool {
		return alt != nil && *alt > 0 && *alt < limit
	}
	closerThan := func(limit float64) bool {
		return ac.Distance != nil && *ac.Distance < limit
	}

	switch {
	case airborneBelow(th.AltitudeCriticalFt) || closerThan(th.DistanceCriticalMi):
		return Critical
	case airborneBelow(th.AltitudeWarningFt) || closerThan(th.DistanceWarningMi):
		return Warning
	}
	return ""
}

func proximityMessage(ac tracking.EnrichedAircraft) string {
	var b strings.Builder
	if ac.Distance != nil {
		fmt.Fprintf(&b, "%.1fmi", *ac.Distance)
	} else {
		b.WriteString("?mi")
	}
	if alt := ac.Altitude(); alt != nil {
		fmt.Fprintf(&b, " at %.0fft", *alt)
	}
	if ac.ETA != nil {
		fmt.Fprintf(&b, ", ETA %ds", *ac.ETA)
	}
	return b.String()
}

// militaryCallsign matches the callsign families counted as military in
// the cycle summary.
var militaryCallsign = regexp.MustCompile(`^(DOOM|KING|ATOM|JAKE|GOLD|BLUE|RED)\d+$`)

// SummaryLowAltitudeFt is the altitude below which the summary counts an
// aircraft as low.
const SummaryLowAltitudeFt = 5000.0

// Summary counts notable aircraft in one cycle.
type Summary struct {
	Total       int `json:"total"`
	LowAltitude int `json:"low_altitude"`
	Military    int `json:"military"`
	Special     int `json:"special"`
	Emergencies int `json:"emergencies"`
}

// Summarize counts the aircraft below 5,000ft (including those with no
// altitude), with military callsigns, matching a special flight, or
// squawking an emergency.
func Summarize(list []tracking.EnrichedAircraft, c *classify.Classifier) Summary {
	s := Summary{Total: len(list)}
	for _, ac := range list {
		// unknown altitude counts as ground, as in the altitude filter
		alt := 0.0
		if a := ac.Altitude(); a != nil {
			alt = *a
		}
		if alt < SummaryLowAltitudeFt {
			s.LowAltitude++
		}
		if militaryCallsign.MatchString(ac.Callsign()) {
			s.Military++
		}
		if c != nil && c.SpecialFlight(ac.Flight) != nil {
			s.Special++
		}
		if IsEmergencySquawk(ac.Squawk) || ac.Emergency != "" {
			s.Emergencies++
		}
	}
	return s
}
