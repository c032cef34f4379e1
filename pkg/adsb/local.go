package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/unklstewy/cyberairpatrol/pkg/geo"
	"github.com/unklstewy/cyberairpatrol/pkg/logger"
)

// LocalClient implements the DataSource interface for a local readsb or
// tar1090 receiver. The source is either a URL to aircraft.json
// (e.g. http://192.168.1.10/tar1090/data/aircraft.json) or a file path
// (e.g. /run/readsb/aircraft.json).
type LocalClient struct {
	source     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewLocalClient creates a client reading aircraft.json from source.
func NewLocalClient(source string, log *logger.Logger) *LocalClient {
	if log == nil {
		log = logger.Nop()
	}
	return &LocalClient{
		source: source,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: log.Named("adsb-local"),
	}
}

func (c *LocalClient) isURL() bool {
	return strings.HasPrefix(c.source, "http://") || strings.HasPrefix(c.source, "https://")
}

// fetch reads and decodes the full aircraft.json snapshot.
func (c *LocalClient) fetch(ctx context.Context) ([]Aircraft, error) {
	var body []byte

	if c.isURL() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
	} else {
		var err error
		body, err = os.ReadFile(c.source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", c.source, err)
		}
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	aircraft := convertAll(feed.list())
	c.logger.Debug("Read local ADS-B data",
		logger.String("source", c.source),
		logger.Bool("remote", c.isURL()),
		logger.Int("aircraft_count", len(aircraft)),
		logger.Int("message_count", feed.Messages),
	)

	return aircraft, nil
}

// GetAircraft returns the receiver's positioned aircraft within radiusMiles.
// A receiver reports everything it hears, so the radius is applied here.
func (c *LocalClient) GetAircraft(ctx context.Context, centerLat, centerLon, radiusMiles float64) ([]Aircraft, error) {
	all, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	inRange := make([]Aircraft, 0, len(all))
	for _, ac := range all {
		if !ac.HasPosition() {
			continue
		}
		if geo.Distance(centerLat, centerLon, *ac.Lat, *ac.Lon) <= radiusMiles {
			inRange = append(inRange, ac)
		}
	}
	return inRange, nil
}

// GetAircraftByHex returns the aircraft with the given address, or nil.
func (c *LocalClient) GetAircraftByHex(ctx context.Context, hex string) (*Aircraft, error) {
	all, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	hex = strings.ToLower(hex)
	for i := range all {
		if all[i].Hex == hex {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Ping reads the snapshot once.
func (c *LocalClient) Ping(ctx context.Context) error {
	if _, err := c.fetch(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Close is a no-op.
func (c *LocalClient) Close() error {
	return nil
}
