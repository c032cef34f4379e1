package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/logger"
	"github.com/unklstewy/cyberairpatrol/pkg/render"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// Range limits in statute miles.
const (
	MinRangeMiles = 1.0
	MaxRangeMiles = 50.0
)

// Config represents the complete application configuration.
// It can be loaded from a JSON or TOML file; environment variables and
// command-line flags are applied on top.
type Config struct {
	Server   ServerConfig   `json:"server" toml:"server"`
	ADSB     ADSBConfig     `json:"adsb" toml:"adsb"`
	Observer ObserverConfig `json:"observer" toml:"observer"`
	Tracking TrackingConfig `json:"tracking" toml:"tracking"`
	Watch    WatchConfig    `json:"watch" toml:"watch"`
	Output   OutputConfig   `json:"output" toml:"output"`
	Alerts   AlertsConfig   `json:"alerts" toml:"alerts"`
	Logging  logger.Config  `json:"logging" toml:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port" toml:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host" toml:"host"`

	// CORSOrigins lists allowed browser origins for the API
	CORSOrigins []string `json:"cors_origins" toml:"cors_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ADSBConfig selects the aircraft data feed.
type ADSBConfig struct {
	// Source is one of "adsbexchange", "airplanes.live", "local", "demo"
	Source string `json:"source" toml:"source"`

	// BaseURL overrides the feed's default API URL
	BaseURL string `json:"base_url" toml:"base_url"`

	// APIKey for ADSBexchange (should be loaded from environment)
	APIKey string `json:"api_key" toml:"api_key"`

	// Local is the readsb aircraft.json path or URL for the "local" source
	Local string `json:"local" toml:"local"`

	// RateLimitSeconds is the minimum time between API calls
	RateLimitSeconds float64 `json:"rate_limit_seconds" toml:"rate_limit_seconds"`
}

// SourceOptions converts the feed settings for adsb.Open.
func (c ADSBConfig) SourceOptions() adsb.SourceOptions {
	return adsb.SourceOptions{
		Kind:        c.Source,
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Local:       c.Local,
		MinInterval: time.Duration(c.RateLimitSeconds * float64(time.Second)),
	}
}

// ObserverConfig contains the observer's location.
type ObserverConfig struct {
	// Name is a friendly identifier for this location
	Name string `json:"name" toml:"name"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude" toml:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude" toml:"longitude"`
}

// Observer returns the tracking observer for this location.
func (o ObserverConfig) Observer() *tracking.Observer {
	return &tracking.Observer{Lat: o.Latitude, Lon: o.Longitude}
}

// TrackingConfig contains the scan filter.
type TrackingConfig struct {
	// RangeMiles is the search radius in statute miles (1-50)
	RangeMiles float64 `json:"range_miles" toml:"range_miles"`

	// MinAltitude and MaxAltitude are optional inclusive bounds in feet
	MinAltitude *float64 `json:"min_altitude,omitempty" toml:"min_altitude,omitempty"`
	MaxAltitude *float64 `json:"max_altitude,omitempty" toml:"max_altitude,omitempty"`
}

// Filter returns the tracking filter.
func (t TrackingConfig) Filter() tracking.TrackingFilter {
	return tracking.TrackingFilter{
		Range:       t.RangeMiles,
		MinAltitude: t.MinAltitude,
		MaxAltitude: t.MaxAltitude,
	}
}

// WatchConfig controls continuous scanning.
type WatchConfig struct {
	// IntervalSeconds is the time between scans
	IntervalSeconds int `json:"interval_seconds" toml:"interval_seconds"`

	// HistoryLength is the number of positions kept per aircraft
	HistoryLength int `json:"history_length" toml:"history_length"`

	// PatternRadiusMiles and PatternTurns tune loiter detection
	PatternRadiusMiles float64 `json:"pattern_radius_miles" toml:"pattern_radius_miles"`
	PatternTurns       int     `json:"pattern_turns" toml:"pattern_turns"`
}

// Interval returns the scan interval.
func (w WatchConfig) Interval() time.Duration {
	return time.Duration(w.IntervalSeconds) * time.Second
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Format is text, json, xml, html or yaml
	Format string `json:"format" toml:"format"`

	// NoBanner suppresses the startup banner in text mode
	NoBanner bool `json:"no_banner" toml:"no_banner"`
}

// AlertsConfig contains alert thresholds.
type AlertsConfig struct {
	LowAltitudeFt          float64 `json:"low_altitude_ft" toml:"low_altitude_ft"`
	LowAltitudeMinSpeedKts float64 `json:"low_altitude_min_speed_kts" toml:"low_altitude_min_speed_kts"`
	AltitudeCriticalFt     float64 `json:"altitude_critical_ft" toml:"altitude_critical_ft"`
	AltitudeWarningFt      float64 `json:"altitude_warning_ft" toml:"altitude_warning_ft"`
	DistanceCriticalMi     float64 `json:"distance_critical_mi" toml:"distance_critical_mi"`
	DistanceWarningMi      float64 `json:"distance_warning_mi" toml:"distance_warning_mi"`
}

// Thresholds returns the alert thresholds.
func (a AlertsConfig) Thresholds() alerts.Thresholds {
	return alerts.Thresholds{
		LowAltitudeFt:          a.LowAltitudeFt,
		LowAltitudeMinSpeedKts: a.LowAltitudeMinSpeedKts,
		AltitudeCriticalFt:     a.AltitudeCriticalFt,
		AltitudeWarningFt:      a.AltitudeWarningFt,
		DistanceCriticalMi:     a.DistanceCriticalMi,
		DistanceWarningMi:      a.DistanceWarningMi,
	}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	th := alerts.DefaultThresholds()
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		ADSB: ADSBConfig{
			Source:           adsb.SourceExchange,
			RateLimitSeconds: 1.0,
		},
		Observer: ObserverConfig{
			Name:      "Default",
			Latitude:  41.0,
			Longitude: -95.0,
		},
		Tracking: TrackingConfig{
			RangeMiles: 10,
		},
		Watch: WatchConfig{
			IntervalSeconds:    30,
			HistoryLength:      tracking.DefaultHistoryLength,
			PatternRadiusMiles: 5,
			PatternTurns:       2,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Alerts: AlertsConfig{
			LowAltitudeFt:          th.LowAltitudeFt,
			LowAltitudeMinSpeedKts: th.LowAltitudeMinSpeedKts,
			AltitudeCriticalFt:     th.AltitudeCriticalFt,
			AltitudeWarningFt:      th.AltitudeWarningFt,
			DistanceCriticalMi:     th.DistanceCriticalMi,
			DistanceWarningMi:      th.DistanceWarningMi,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from a file.
// If the file doesn't exist, returns default configuration.
// Files ending in .toml are decoded as TOML, anything else as JSON.
// Values missing from the file keep their defaults. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		case isTOML(path):
			if _, err := toml.Decode(string(data), config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		default:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := config.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the configuration to a file, as TOML if the path ends in
// .toml and as indented JSON otherwise.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if isTOML(path) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Observer.Latitude < -90 || c.Observer.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %g", c.Observer.Latitude)
	}
	if c.Observer.Longitude < -180 || c.Observer.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %g", c.Observer.Longitude)
	}
	if c.Tracking.RangeMiles < MinRangeMiles || c.Tracking.RangeMiles > MaxRangeMiles {
		return fmt.Errorf("range must be between %g and %g miles, got %g", MinRangeMiles, MaxRangeMiles, c.Tracking.RangeMiles)
	}
	if lo, hi := c.Tracking.MinAltitude, c.Tracking.MaxAltitude; lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("min altitude %g is above max altitude %g", *lo, *hi)
	}

	switch c.ADSB.Source {
	case adsb.SourceExchange, adsb.SourceAirplanesLive, adsb.SourceLocal, adsb.SourceDemo:
	default:
		return fmt.Errorf("unknown ADS-B source: %q", c.ADSB.Source)
	}
	if c.ADSB.RateLimitSeconds < 0 {
		return fmt.Errorf("rate_limit_seconds cannot be negative")
	}

	if c.Watch.IntervalSeconds <= 0 {
		return fmt.Errorf("watch interval must be positive, got %d", c.Watch.IntervalSeconds)
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to config.
// Environment variables take precedence over config file values.
func (c *Config) applyEnvironmentOverrides() error {
	if key := os.Getenv("ADSB_API_KEY"); key != "" {
		c.ADSB.APIKey = key
	}
	if url := os.Getenv("ADSB_API_URL"); url != "" {
		c.ADSB.BaseURL = url
	}
	if port := os.Getenv("CAP_PORT"); port != "" {
		c.Server.Port = port
	}
	if level := os.Getenv("CAP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"DEFAULT_LAT", &c.Observer.Latitude},
		{"DEFAULT_LON", &c.Observer.Longitude},
		{"DEFAULT_RANGE", &c.Tracking.RangeMiles},
	}
	for _, f := range floats {
		v := os.Getenv(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = n
	}

	return nil
}

// NormalizeFormat lower-cases the output format and replaces an unknown
// one with text. It reports whether the format had to fall back.
func (c *Config) NormalizeFormat() bool {
	f := render.ParseFormat(c.Output.Format)
	fellBack := string(f) != strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Output.Format = string(f)
	return fellBack
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
