package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unklstewy/cyberairpatrol/internal/watch"
	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/config"
	"github.com/unklstewy/cyberairpatrol/pkg/logger"
)

// loadConfig reads the config file and environment, then applies every
// flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("lat") {
		cfg.Observer.Latitude = opts.lat
	}
	if flags.Changed("lon") {
		cfg.Observer.Longitude = opts.lon
	}
	if flags.Changed("range") {
		cfg.Tracking.RangeMiles = opts.rangeMi
	}
	if flags.Changed("min-alt") {
		v := opts.minAlt
		cfg.Tracking.MinAltitude = &v
	}
	if flags.Changed("max-alt") {
		v := opts.maxAlt
		cfg.Tracking.MaxAltitude = &v
	}
	if flags.Changed("api-key") {
		cfg.ADSB.APIKey = opts.apiKey
	}
	if flags.Changed("source") {
		cfg.ADSB.Source = strings.ToLower(opts.source)
	}
	if flags.Changed("local") {
		cfg.ADSB.Local = opts.local
		if !flags.Changed("source") {
			cfg.ADSB.Source = adsb.SourceLocal
		}
	}
	if opts.demo {
		cfg.ADSB.Source = adsb.SourceDemo
	}
	if flags.Changed("interval") {
		cfg.Watch.IntervalSeconds = opts.interval
	}
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("no-banner") {
		cfg.Output.NoBanner = opts.noBanner
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	requested := cfg.Output.Format
	if cfg.NormalizeFormat() {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("Unknown format %q, using text", requested)))
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// newRunner opens the configured feed and wraps it in a watch runner.
func newRunner(cfg *config.Config, log *logger.Logger) (*watch.Runner, adsb.DataSource, error) {
	src, err := adsb.Open(cfg.ADSB.SourceOptions(), log.Named("adsb"))
	if err != nil {
		return nil, nil, err
	}

	runner := watch.New(watch.Options{
		Source:             src,
		Observer:           *cfg.Observer.Observer(),
		Filter:             cfg.Tracking.Filter(),
		Thresholds:         cfg.Alerts.Thresholds(),
		Interval:           cfg.Watch.Interval(),
		HistoryLength:      cfg.Watch.HistoryLength,
		PatternRadiusMiles: cfg.Watch.PatternRadiusMiles,
		PatternTurns:       cfg.Watch.PatternTurns,
		Logger:             log.With(logger.String("source", cfg.ADSB.Source)),
	})
	return runner, src, nil
}
