package adsb

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// DefaultAirplanesLiveURL is the airplanes.live API base URL.
const DefaultAirplanesLiveURL = "https://api.airplanes.live/v2"

// Conversion and API limits for airplanes.live.
const (
	milesToNauticalMiles = 0.868976
	maxRadiusNM          = 250.0
)

// AirplanesLiveClient implements the DataSource interface for airplanes.live API.
// API Documentation: https://airplanes.live/api-guide/
// Rate Limit: 1 request per second
type AirplanesLiveClient struct {
	feedClient
}

// NewAirplanesLiveClient creates a new airplanes.live API client.
// baseURL may be empty to use DefaultAirplanesLiveURL.
func NewAirplanesLiveClient(baseURL string) *AirplanesLiveClient {
	if baseURL == "" {
		baseURL = DefaultAirplanesLiveURL
	}
	return &AirplanesLiveClient{feedClient: newFeedClient(baseURL, rate.Limit(1))}
}

// GetAircraft returns all aircraft within radiusMiles of a point.
// Uses the /point/[lat]/[lon]/[radius] endpoint, whose radius is in
// nautical miles and capped at 250.
func (c *AirplanesLiveClient) GetAircraft(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]Aircraft, error) {
	radiusNM := radiusMiles * milesToNauticalMiles
	if radiusNM > maxRadiusNM {
		radiusNM = maxRadiusNM
	}

	path := fmt.Sprintf("/point/%.4f/%.4f/%.0f", centerLat, centerLon, radiusNM)
	feed, _, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	return convertAll(feed.list()), nil
}

// GetAircraftByHex returns a specific aircraft by its ICAO hex code.
// Uses the /hex/[hex] endpoint.
func (c *AirplanesLiveClient) GetAircraftByHex(ctx context.Context, hex string) (*Aircraft, error) {
	feed, status, err := c.get(ctx, "/hex/"+hex)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	list := convertAll(feed.list())
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Ping issues a minimal point query.
func (c *AirplanesLiveClient) Ping(ctx context.Context) error {
	if _, _, err := c.get(ctx, "/point/0.0000/0.0000/1"); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Close cleanly shuts down the client.
// For airplanes.live, this is a no-op as there are no persistent connections.
func (c *AirplanesLiveClient) Close() error {
	return nil
}
