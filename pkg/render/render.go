// Package render turns a processed aircraft list into a report in one of
// five encodings: text, json, xml, html and yaml.
//
// Rendering never fails. Missing optional fields are left out and
// non-finite numbers are printed or dropped, never rejected.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/unklstewy/cyberairpatrol/pkg/classify"
	"github.com/unklstewy/cyberairpatrol/pkg/geo"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// Format is an output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	XML  Format = "xml"
	HTML Format = "html"
	YAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{Text, JSON, XML, HTML, YAML}

// ParseFormat maps a format name to a Format. Unknown names fall back to Text.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f
		}
	}
	return Text
}

// timestampLayout is ISO 8601 in UTC with milliseconds.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Renderer renders aircraft lists. It holds only read-only state and is
// safe for concurrent use.
type Renderer struct {
	classifier *classify.Classifier
	now        func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// New creates a renderer that classifies with c. A nil classifier uses
// the default tables.
func New(c *classify.Classifier, opts ...Option) *Renderer {
	if c == nil {
		c = classify.Default()
	}
	r := &Renderer{
		classifier: c,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classifier returns the classifier the renderer uses.
func (r *Renderer) Classifier() *classify.Classifier {
	return r.classifier
}

// Render encodes list in the given format. The observer position is used
// by the report headers.
func (r *Renderer) Render(list []tracking.EnrichedAircraft, format Format, observerLat, observerLon float64) string {
	switch format {
	case JSON:
		return r.renderJSON(list)
	case XML:
		return r.renderXML(list)
	case HTML:
		return r.renderHTML(list, observerLat, observerLon)
	case YAML:
		return r.renderYAML(list)
	default:
		return r.renderText(list, observerLat, observerLon)
	}
}

func (r *Renderer) timestamp() string {
	return r.now().UTC().Format(timestampLayout)
}

// formatETA renders seconds as M:SS.
func formatETA(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// formatDeclination renders a magnetic declination as degrees east or west.
func formatDeclination(d float64) string {
	if d < 0 {
		return fmt.Sprintf("%.1f°W", -d)
	}
	return fmt.Sprintf("%.1f°E", d)
}

// magneticVariation returns the declination at the observer for the
// report time.
func (r *Renderer) magneticVariation(lat, lon float64) string {
	return formatDeclination(geo.MagneticVariation(lat, lon, r.now()))
}
