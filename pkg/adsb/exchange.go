package adsb

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// DefaultExchangeURL is the ADSBexchange v2 API base URL.
const DefaultExchangeURL = "https://adsbexchange.com/api/aircraft/v2"

// ExchangeClient implements the DataSource interface for the ADSBexchange v2 API.
// Requests are authenticated with the "api-auth" header.
type ExchangeClient struct {
	feedClient
}

// NewExchangeClient creates a new ADSBexchange client.
// baseURL may be empty to use DefaultExchangeURL.
func NewExchangeClient(baseURL, apiKey string) *ExchangeClient {
	if baseURL == "" {
		baseURL = DefaultExchangeURL
	}
	c := &ExchangeClient{feedClient: newFeedClient(baseURL, rate.Limit(1))}
	c.header.Set("api-auth", apiKey)
	return c
}

// GetAircraft returns all aircraft within radiusMiles of a point.
// Uses the /lat/{lat}/lon/{lon}/dist/{range}/ endpoint.
func (c *ExchangeClient) GetAircraft(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]Aircraft, error) {
	path := fmt.Sprintf("/lat/%g/lon/%g/dist/%g/", centerLat, centerLon, radiusMiles)

	feed, _, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	return convertAll(feed.list()), nil
}

// GetAircraftByHex returns a specific aircraft by its ICAO hex code.
// Returns nil, nil when the aircraft is unknown (404 or empty list).
func (c *ExchangeClient) GetAircraftByHex(ctx context.Context, hex string) (*Aircraft, error) {
	feed, status, err := c.get(ctx, fmt.Sprintf("/hex/%s/", hex))
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	list := convertAll(feed.list())
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Ping issues a minimal area query and reports whether it succeeded.
func (c *ExchangeClient) Ping(ctx context.Context) error {
	if _, _, err := c.get(ctx, "/lat/0/lon/0/dist/1/"); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Close is a no-op; the client holds no persistent connections.
func (c *ExchangeClient) Close() error {
	return nil
}
