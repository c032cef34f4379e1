package adsb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// defaultTimeout bounds every feed request.
const defaultTimeout = 10 * time.Second

// feedResponse is the readsb-style JSON envelope shared by ADSBexchange v2,
// airplanes.live and a local receiver's aircraft.json. Some deployments use
// "aircraft" instead of "ac" for the list.
type feedResponse struct {
	AC       []wireAircraft `json:"ac"`
	Aircraft []wireAircraft `json:"aircraft"`

	// Total number of aircraft
	Total int `json:"total"`

	// Now is the server timestamp in seconds since the epoch
	Now float64 `json:"now"`

	// Messages is the receiver message count
	Messages int `json:"messages"`
}

func (r feedResponse) list() []wireAircraft {
	if len(r.AC) > 0 {
		return r.AC
	}
	return r.Aircraft
}

// wireAircraft is a single aircraft as it appears on the wire.
// Field documentation: https://airplanes.live/adsb-field-explanations/
type wireAircraft struct {
	Hex          string  `json:"hex"`
	Flight       *string `json:"flight"`
	Registration string  `json:"r"`
	Type         string  `json:"t"`
	Category     string  `json:"category"`
	Description  string  `json:"desc"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	// AltBaro and AltGeom can be the string "ground" or a number
	AltBaro any `json:"alt_baro"`
	AltGeom any `json:"alt_geom"`

	GS        *float64 `json:"gs"`
	TAS       *float64 `json:"tas"`
	Track     *float64 `json:"track"`
	TrackRate *float64 `json:"track_rate"`
	Roll      *float64 `json:"roll"`
	BaroRate  *float64 `json:"baro_rate"`
	GeomRate  *float64 `json:"geom_rate"`

	Emergency      string   `json:"emergency"`
	NavAltitudeMCP *float64 `json:"nav_altitude_mcp"`
	NavHeading     *float64 `json:"nav_heading"`
	Squawk         string   `json:"squawk"`

	Seen    *float64 `json:"seen"`
	SeenPos *float64 `json:"seen_pos"`
}

// convert maps a wire aircraft to our Aircraft type.
func (w wireAircraft) convert() Aircraft {
	ac := Aircraft{
		Hex:            strings.ToLower(strings.TrimSpace(w.Hex)),
		Registration:   strings.TrimSpace(w.Registration),
		Type:           strings.TrimSpace(w.Type),
		Category:       w.Category,
		Description:    w.Description,
		Lat:            w.Lat,
		Lon:            w.Lon,
		AltBaro:        parseAltitude(w.AltBaro),
		AltGeom:        parseAltitude(w.AltGeom),
		GS:             w.GS,
		TAS:            w.TAS,
		Track:          w.Track,
		TrackRate:      w.TrackRate,
		Roll:           w.Roll,
		BaroRate:       w.BaroRate,
		GeomRate:       w.GeomRate,
		NavAltitudeMCP: w.NavAltitudeMCP,
		NavHeading:     w.NavHeading,
		Squawk:         strings.TrimSpace(w.Squawk),
		Seen:           w.Seen,
		SeenPos:        w.SeenPos,
	}

	if w.Flight != nil {
		ac.Flight = strings.TrimSpace(*w.Flight)
	}

	// readsb reports "none" when there is no emergency
	if e := strings.TrimSpace(w.Emergency); e != "" && e != "none" {
		ac.Emergency = e
	}

	return ac
}

// convertAll converts a wire list, dropping entries without a hex address.
func convertAll(list []wireAircraft) []Aircraft {
	aircraft := make([]Aircraft, 0, len(list))
	for _, w := range list {
		if strings.TrimSpace(w.Hex) == "" {
			continue
		}
		aircraft = append(aircraft, w.convert())
	}
	return aircraft
}

// parseAltitude safely extracts altitude from a value which can be a number
// or a string. "ground" is reported as 0; anything unparseable is nil.
func parseAltitude(val any) *float64 {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case float64:
		return &v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		if v == "ground" {
			zero := 0.0
			return &zero
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// feedClient holds the transport pieces every HTTP-backed source shares.
type feedClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	header     http.Header
}

func newFeedClient(baseURL string, limit rate.Limit) feedClient {
	return feedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		header:  make(http.Header),
	}
}

// SetRateLimit replaces the politeness limit (requests per second).
// rate.Inf disables it.
func (c *feedClient) SetRateLimit(limit rate.Limit) {
	c.limiter.SetLimit(limit)
}

// get performs one request against the feed and decodes the envelope.
// It waits on the politeness limiter first and never retries.
func (c *feedClient) get(ctx context.Context, path string) (*feedResponse, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch aircraft data: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, resp.StatusCode, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "Rate limit exceeded",
			Headers:    extractRateLimitHeaders(resp.Header),
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse API response: %w", err)
	}

	return &feed, resp.StatusCode, nil
}

// RateLimitError represents an HTTP 429 rate limit error with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Headers    RateLimitHeaders
}

// RateLimitHeaders contains rate limit information from response headers.
type RateLimitHeaders struct {
	Limit     int       // X-Rate-Limit-Limit: Maximum requests allowed
	Remaining int       // X-Rate-Limit-Remaining: Requests remaining in current window
	Reset     time.Time // X-Rate-Limit-Reset: When the rate limit resets
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s, please wait before making more requests (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message + ", please wait before making more requests"
}

// IsRateLimitError checks if an error is, or wraps, a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value.
// Supports both delay-seconds and HTTP-date formats; returns 0 if absent.
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}

// headerInt reads the first of the given headers that parses as an integer.
func headerInt(headers http.Header, names ...string) (int64, bool) {
	for _, name := range names {
		if v := headers.Get(name); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// extractRateLimitHeaders extracts the X-Rate-Limit-* (or X-RateLimit-*)
// headers. Missing counts are -1.
func extractRateLimitHeaders(headers http.Header) RateLimitHeaders {
	rlh := RateLimitHeaders{
		Limit:     -1,
		Remaining: -1,
	}

	if n, ok := headerInt(headers, "X-Rate-Limit-Limit", "X-RateLimit-Limit"); ok {
		rlh.Limit = int(n)
	}
	if n, ok := headerInt(headers, "X-Rate-Limit-Remaining", "X-RateLimit-Remaining"); ok {
		rlh.Remaining = int(n)
	}
	if n, ok := headerInt(headers, "X-Rate-Limit-Reset", "X-RateLimit-Reset"); ok {
		rlh.Reset = time.Unix(n, 0)
	}

	return rlh
}
