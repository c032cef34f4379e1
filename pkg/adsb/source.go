package adsb

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/unklstewy/cyberairpatrol/pkg/logger"
)

// Source kinds accepted by Open.
const (
	SourceExchange      = "adsbexchange"
	SourceAirplanesLive = "airplanes.live"
	SourceLocal         = "local"
	SourceDemo          = "demo"
)

// SourceOptions selects and configures a DataSource.
type SourceOptions struct {
	// Kind is one of the Source* constants
	Kind string

	// BaseURL overrides the service's default API URL
	BaseURL string

	// APIKey authenticates against ADSBexchange
	APIKey string

	// Local is the aircraft.json path or URL for a local receiver
	Local string

	// MinInterval is the minimum time between API calls; 0 keeps the
	// client's default of one request per second
	MinInterval time.Duration
}

// Open builds the DataSource described by opts.
func Open(opts SourceOptions, log *logger.Logger) (DataSource, error) {
	var limit rate.Limit
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	switch opts.Kind {
	case SourceExchange:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("ADSBexchange API key required, set ADSB_API_KEY or use --api-key")
		}
		c := NewExchangeClient(opts.BaseURL, opts.APIKey)
		if limit > 0 {
			c.SetRateLimit(limit)
		}
		return c, nil
	case SourceAirplanesLive:
		c := NewAirplanesLiveClient(opts.BaseURL)
		if limit > 0 {
			c.SetRateLimit(limit)
		}
		return c, nil
	case SourceLocal:
		if opts.Local == "" {
			return nil, fmt.Errorf("local source requires an aircraft.json path or URL")
		}
		return NewLocalClient(opts.Local, log), nil
	case SourceDemo:
		return NewDemoSource(), nil
	default:
		return nil, fmt.Errorf("unknown ADS-B source: %q", opts.Kind)
	}
}
