package classify

// Altitude bands in feet, upper bounds exclusive.
const (
	groundBandFt = 1000.0
	lowBandFt    = 5000.0
	mediumBandFt = 10000.0
	highBandFt   = 25000.0
)

// Speed bands in knots, upper bounds exclusive.
const (
	verySlowBandKts = 100.0
	slowBandKts     = 200.0
	mediumBandKts   = 350.0
	fastBandKts     = 500.0
)

// AltitudeBand buckets an altitude in feet into ground, low, medium, high
// or very_high. A nil altitude has no band.
func AltitudeBand(alt *float64) string {
	if alt == nil {
		return ""
	}
	switch a := *alt; {
	case a < groundBandFt:
		return "ground"
	case a < lowBandFt:
		return "low"
	case a < mediumBandFt:
		return "medium"
	case a < highBandFt:
		return "high"
	default:
		return "very_high"
	}
}

// SpeedBand buckets a ground speed in knots into very_slow, slow, medium,
// fast or very_fast. A nil speed has no band.
func SpeedBand(gs *float64) string {
	if gs == nil {
		return ""
	}
	switch s := *gs; {
	case s < verySlowBandKts:
		return "very_slow"
	case s < slowBandKts:
		return "slow"
	case s < mediumBandKts:
		return "medium"
	case s < fastBandKts:
		return "fast"
	default:
		return "very_fast"
	}
}
