// Package classify tags aircraft by type code and flags callsigns that
// deserve special attention.
//
// All rule tables are plain values passed to New, so callers can swap in
// their own tables. Rules are evaluated in table order and the first
// match wins wherever a single answer is needed.
package classify

import (
	"regexp"
	"strings"

	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
)

// Category is a broad aircraft class derived from the type code.
type Category string

const (
	Military     Category = "MILITARY"
	Heavy        Category = "HEAVY"
	Agricultural Category = "AGRICULTURAL"
	Helicopter   Category = "HELICOPTER"
	Light        Category = "LIGHT"
)

// Match is a callsign rule: either an exact string or a regular expression.
// The zero value matches nothing.
type Match struct {
	exact   string
	pattern *regexp.Regexp
}

// Exact returns a rule matching exactly s.
func Exact(s string) Match {
	return Match{exact: s}
}

// Pattern returns a rule matching the regular expression expr.
// It panics if expr does not compile, like regexp.MustCompile.
func Pattern(expr string) Match {
	return Match{pattern: regexp.MustCompile(expr)}
}

// Matches reports whether callsign satisfies the rule.
func (m Match) Matches(callsign string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(callsign)
	}
	return m.exact != "" && callsign == m.exact
}

func (m Match) String() string {
	if m.pattern != nil {
		return m.pattern.String()
	}
	return m.exact
}

// CategoryRule assigns Category to every aircraft whose type code is in Types.
type CategoryRule struct {
	Category Category
	Types    []string
}

// SpecialFlight is a callsign that gets highlighted with its own message.
type SpecialFlight struct {
	Match   Match
	Message string

	// Rainbow asks renderers to colour the message one rune at a time
	Rainbow bool

	// Alert marks the flight as worth an alert
	Alert bool
}

// InterestingCallsign labels callsigns from a known operator family.
type InterestingCallsign struct {
	Label string
	Match Match
}

// Tables holds every rule list the classifier evaluates.
// Categories is in display priority order.
type Tables struct {
	Categories     []CategoryRule
	SpecialFlights []SpecialFlight
	Interesting    []InterestingCallsign
}

// FirstLightCallsign is the callsign of the built-in special flight.
const FirstLightCallsign = "AAL3283"

// FirstLightMessage is the message shown for the built-in special flight.
const FirstLightMessage = "✨ FIRST LIGHT ✨ - The aircraft that united human and AI consciousness!"

// DefaultTables returns the built-in rule tables. Each call returns fresh
// slices.
func DefaultTables() Tables {
	return Tables{
		Categories: []CategoryRule{
			{Military, []string{"C130", "C17", "K35R", "E3", "E4", "R135", "B52", "F15", "F16", "F18", "F22", "F35"}},
			{Heavy, []string{"A124", "A225", "A388", "B744", "B748", "B752", "B763", "B772", "B773", "B77W", "B788", "B789"}},
			{Agricultural, []string{"AT8T", "AT5T", "AT4T", "AT3T", "M18", "PA18"}},
			{Helicopter, []string{"R44", "R22", "R66", "EC30", "EC35", "EC45", "B407", "UH60", "AH64"}},
			{Light, []string{"C172", "C152", "C182", "PA28", "PA32", "BE36", "SR22"}},
		},
		SpecialFlights: []SpecialFlight{
			{
				Match:   Exact(FirstLightCallsign),
				Message: FirstLightMessage,
				Rainbow: true,
				Alert:   true,
			},
		},
		Interesting: []InterestingCallsign{
			{"STRATCOM", Pattern(`^(DOOM|KING|ATOM|JAKE)\d+$`)},
			{"TANKER", Pattern(`^(GOLD|BLUE|RED)\d+$`)},
			{"FIGHTER", Pattern(`^(VIPER|EAGLE|RAPTOR)\d+$`)},
			{"TRAINER", Pattern(`^(TORCH|TEXAN)\d+$`)},
			{"MEDICAL", Pattern(`^(LIFE|ANGEL|STAR)\w+$`)},
			{"AGRICULTURAL", Pattern(`^N\d+AG$`)},
		},
	}
}

// Result is the classification of one aircraft. It is never stored on the
// aircraft itself.
type Result struct {
	// Categories holds every matching category in table order
	Categories []Category

	// Primary is the first matching category, or "" for none
	Primary Category

	// Special is the first matching special flight, if any
	Special *SpecialFlight

	// Interesting is the label of the first matching interesting callsign.
	// Empty when a special flight matched.
	Interesting string
}

// Has reports whether c is among the result's categories.
func (r Result) Has(c Category) bool {
	for _, cat := range r.Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// Classifier evaluates a fixed set of tables. It is safe for concurrent use.
type Classifier struct {
	tables   Tables
	typeSets []map[string]bool
}

// New builds a classifier over tables. The tables must not be modified
// afterwards.
func New(tables Tables) *Classifier {
	c := &Classifier{
		tables:   tables,
		typeSets: make([]map[string]bool, len(tables.Categories)),
	}
	for i, rule := range tables.Categories {
		set := make(map[string]bool, len(rule.Types))
		for _, t := range rule.Types {
			set[strings.ToUpper(t)] = true
		}
		c.typeSets[i] = set
	}
	return c
}

// Default returns a classifier over DefaultTables.
func Default() *Classifier {
	return New(DefaultTables())
}

// Categorize returns every category whose table holds typeCode, in table order.
func (c *Classifier) Categorize(typeCode string) []Category {
	code := strings.ToUpper(strings.TrimSpace(typeCode))
	if code == "" {
		return nil
	}

	var cats []Category
	for i, rule := range c.tables.Categories {
		if c.typeSets[i][code] {
			cats = append(cats, rule.Category)
		}
	}
	return cats
}

// SpecialFlight returns the first special flight rule matching the
// trimmed callsign, or nil.
func (c *Classifier) SpecialFlight(callsign string) *SpecialFlight {
	callsign = strings.TrimSpace(callsign)
	if callsign == "" {
		return nil
	}
	for i := range c.tables.SpecialFlights {
		if c.tables.SpecialFlights[i].Match.Matches(callsign) {
			return &c.tables.SpecialFlights[i]
		}
	}
	return nil
}

// InterestingLabel returns the label of the first interesting callsign
// pattern matching the trimmed callsign, or "".
func (c *Classifier) InterestingLabel(callsign string) string {
	callsign = strings.TrimSpace(callsign)
	if callsign == "" {
		return ""
	}
	for _, ic := range c.tables.Interesting {
		if ic.Match.Matches(callsign) {
			return ic.Label
		}
	}
	return ""
}

// Classify evaluates every table for one aircraft. Special flights take
// precedence over interesting callsigns.
func (c *Classifier) Classify(ac adsb.Aircraft) Result {
	var r Result

	r.Categories = c.Categorize(ac.Type)
	if len(r.Categories) > 0 {
		r.Primary = r.Categories[0]
	}

	r.Special = c.SpecialFlight(ac.Flight)
	if r.Special == nil {
		r.Interesting = c.InterestingLabel(ac.Flight)
	}

	return r
}
