// Package watch runs the scan cycle repeatedly: fetch from the feed, run
// the tracking pipeline, classify, raise alerts and hand the snapshot to a
// consumer (the text printer, the TUI or the websocket hub).
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/classify"
	"github.com/unklstewy/cyberairpatrol/pkg/geo"
	"github.com/unklstewy/cyberairpatrol/pkg/logger"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

// DefaultInterval is the time between cycles when Options.Interval is zero.
const DefaultInterval = 30 * time.Second

// Entry is one aircraft in a snapshot with its classification, bands and
// alerts attached.
type Entry struct {
	tracking.EnrichedAircraft

	Classification classify.Category   `json:"classification,omitempty"`
	Categories     []classify.Category `json:"categories,omitempty"`
	Special        string              `json:"special,omitempty"`
	Interesting    string              `json:"interesting,omitempty"`
	AltitudeBand   string              `json:"altitude_band,omitempty"`
	SpeedBand      string              `json:"speed_band,omitempty"`
	Alerts         []alerts.Alert      `json:"alerts,omitempty"`
	Loitering      bool                `json:"loitering,omitempty"`
}

// Snapshot is the outcome of one cycle.
type Snapshot struct {
	Time     time.Time                   `json:"time"`
	Observer tracking.Observer           `json:"observer"`
	Aircraft []tracking.EnrichedAircraft `json:"-"`
	Entries  []Entry                     `json:"aircraft"`
	Summary  alerts.Summary              `json:"summary"`
	Alerts   []alerts.Alert              `json:"alerts,omitempty"`
}

// Options configures a Runner.
type Options struct {
	Source     adsb.DataSource
	Observer   tracking.Observer
	Filter     tracking.TrackingFilter
	Classifier *classify.Classifier
	Thresholds alerts.Thresholds
	Interval   time.Duration

	// HistoryLength, PatternRadiusMiles and PatternTurns tune loiter
	// detection; zero values use the tracking and geo defaults
	HistoryLength      int
	PatternRadiusMiles float64
	PatternTurns       int

	Logger *logger.Logger

	// Clock is used for snapshot timestamps; nil means time.Now
	Clock func() time.Time
}

// Runner executes scan cycles. Cycles never overlap: Scan may be called
// from several goroutines but only one cycle runs at a time.
type Runner struct {
	opts    Options
	log     *logger.Logger
	history *tracking.History
	now     func() time.Time

	cycle  sync.Mutex
	mu     sync.RWMutex
	latest *Snapshot
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.Classifier == nil {
		opts.Classifier = classify.Default()
	}
	if opts.Thresholds == (alerts.Thresholds{}) {
		opts.Thresholds = alerts.DefaultThresholds()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PatternRadiusMiles <= 0 {
		opts.PatternRadiusMiles = geo.DefaultPatternRadiusMiles
	}
	if opts.PatternTurns <= 0 {
		opts.PatternTurns = geo.DefaultPatternTurns
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Runner{
		opts:    opts,
		log:     log.Named("watch"),
		history: tracking.NewHistory(opts.HistoryLength),
		now:     now,
	}
}

// Interval returns the time between cycles.
func (r *Runner) Interval() time.Duration {
	return r.opts.Interval
}

// Classifier returns the classifier used for snapshots.
func (r *Runner) Classifier() *classify.Classifier {
	return r.opts.Classifier
}

// Observer returns the observer position.
func (r *Runner) Observer() tracking.Observer {
	return r.opts.Observer
}

// Latest returns the most recent successful snapshot, or nil before the
// first one.
func (r *Runner) Latest() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Scan runs one complete cycle. The context bounds the fetch only; once
// aircraft are received the pipeline runs to completion.
func (r *Runner) Scan(ctx context.Context) (*Snapshot, error) {
	r.cycle.Lock()
	defer r.cycle.Unlock()

	obs := r.opts.Observer
	start := r.now()

	raw, err := r.opts.Source.GetAircraft(ctx, obs.Lat, obs.Lon, r.opts.Filter.Range)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft: %w", err)
	}

	list := tracking.Process(raw, &obs, r.opts.Filter)
	r.history.Update(list, start)

	loitering := make(map[string]bool)
	for _, hex := range r.history.Loitering(r.opts.PatternRadiusMiles, r.opts.PatternTurns) {
		loitering[hex] = true
	}

	snap := &Snapshot{
		Time:     start,
		Observer: obs,
		Aircraft: list,
		Entries:  make([]Entry, 0, len(list)),
		Summary:  alerts.Summarize(list, r.opts.Classifier),
	}
	for _, ac := range list {
		entry := NewEntry(ac, r.opts.Classifier, r.opts.Thresholds)
		entry.Loitering = loitering[ac.Hex]
		if entry.Loitering {
			r.log.Info("Aircraft circling",
				logger.String("hex", ac.Hex),
				logger.String("callsign", ac.Callsign()),
				logger.Int("positions", len(r.history.Trail(ac.Hex))))
		}
		snap.Alerts = append(snap.Alerts, entry.Alerts...)
		snap.Entries = append(snap.Entries, entry)
	}

	r.log.Debug("Cycle complete",
		logger.Int("received", len(raw)),
		logger.Int("in_range", len(list)),
		logger.Int("alerts", len(snap.Alerts)),
		logger.Int("tracked", r.history.Len()),
		logger.Time("at", snap.Time),
		logger.Duration("took", r.now().Sub(start)))

	r.mu.Lock()
	r.latest = snap
	r.mu.Unlock()

	return snap, nil
}

// Run scans immediately, then every interval until ctx is cancelled,
// passing each snapshot to handle. A failed cycle is logged and handed to
// onError when non-nil; the loop keeps going. Cancellation is checked
// between cycles.
func (r *Runner) Run(ctx context.Context, handle func(*Snapshot), onError func(error)) error {
	r.log.Info("Watch started",
		logger.Float64("lat", r.opts.Observer.Lat),
		logger.Float64("lon", r.opts.Observer.Lon),
		logger.Float64("range", r.opts.Filter.Range),
		logger.Duration("interval", r.opts.Interval))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Watch stopped")
			return ctx.Err()
		case <-timer.C:
		}

		snap, err := r.Scan(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			r.log.Info("Watch stopped")
			return ctx.Err()
		case err != nil:
			r.log.Warn("Cycle failed", logger.Error(err))
			if onError != nil {
				onError(err)
			}
		case handle != nil:
			handle(snap)
		}

		timer.Reset(r.opts.Interval)
	}
}

// NewEntry classifies one aircraft and evaluates its alerts.
func NewEntry(ac tracking.EnrichedAircraft, c *classify.Classifier, th alerts.Thresholds) Entry {
	result := c.Classify(ac.Aircraft)
	entry := Entry{
		EnrichedAircraft: ac,
		Classification:   result.Primary,
		Categories:       result.Categories,
		Interesting:      result.Interesting,
		AltitudeBand:     classify.AltitudeBand(ac.Altitude()),
		SpeedBand:        classify.SpeedBand(ac.GS),
		Alerts:           alerts.Evaluate(ac, result, th),
	}
	if result.Special != nil {
		entry.Special = result.Special.Message
	}
	return entry
}
