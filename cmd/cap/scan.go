package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/unklstewy/cyberairpatrol/internal/watch"
	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/render"
)

// runScan is the root command: one scan, or a loop with --watch/--tui.
func runScan(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	out := cmd.OutOrStdout()
	format := render.ParseFormat(cfg.Output.Format)
	text := format == render.Text && !opts.tui

	if text && !cfg.Output.NoBanner {
		fmt.Fprintln(out, bannerStyle.Render(banner))
	}

	runner, src, err := newRunner(cfg, log)
	if err != nil {
		if errors.Is(err, adsb.ErrUnauthorized) || cfg.ADSB.Source == adsb.SourceExchange {
			err = fmt.Errorf("%w\n\n%s", err, warnStyle.Render("Tip: Use --demo flag to see CAP in action with simulated aircraft"))
		}
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ADSB.Source == adsb.SourceDemo {
		if text {
			fmt.Fprintln(out, warnStyle.Render("🛩️  Running in DEMO mode - simulated aircraft"))
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Monitoring airspace around %g, %g", cfg.Observer.Latitude, cfg.Observer.Longitude)))
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Range: %g miles\n", cfg.Tracking.RangeMiles)))
		}
	} else if err := checkConnection(ctx, out, src, text); err != nil {
		return err
	}

	if opts.tui {
		return watch.RunTUI(ctx, runner)
	}

	renderer := render.New(runner.Classifier())
	show := func(snap *watch.Snapshot) {
		printSnapshot(out, renderer, snap, format)
	}

	if !opts.watch {
		if text {
			fmt.Fprint(out, dimStyle.Render(fmt.Sprintf("\nScanning airspace within %g miles of %.4f°, %.4f°... ",
				cfg.Tracking.RangeMiles, cfg.Observer.Latitude, cfg.Observer.Longitude)))
		}
		snap, err := runner.Scan(ctx)
		if err != nil {
			if text {
				fmt.Fprintln(out, errorStyle.Render("FAILED"))
			}
			return describeFeedError(err)
		}
		if text {
			fmt.Fprintln(out, okStyle.Render("DONE"))
		}
		show(snap)
		return nil
	}

	if text {
		fmt.Fprintln(out, bannerStyle.Render(fmt.Sprintf("\n👁️  Watch mode enabled. Updates every %s. Press Ctrl+C to exit.\n", cfg.Watch.Interval())))
	}

	first := true
	err = runner.Run(ctx, func(snap *watch.Snapshot) {
		if text && !first {
			fmt.Fprintln(out, dimStyle.Render("\n"+strings.Repeat("─", 80)+"\n"))
		}
		first = false
		show(snap)
	}, func(err error) {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("\nError: "+describeFeedError(err).Error()))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// checkConnection probes the feed once before scanning.
func checkConnection(ctx context.Context, out io.Writer, src adsb.DataSource, text bool) error {
	if text {
		fmt.Fprint(out, dimStyle.Render("Testing API connection... "))
	}
	if err := src.Ping(ctx); err != nil {
		if text {
			fmt.Fprintln(out, errorStyle.Render("FAILED"))
		}
		return fmt.Errorf("could not connect to the ADS-B feed, check your API key and network connection: %w", err)
	}
	if text {
		fmt.Fprintln(out, okStyle.Render("OK"))
	}
	return nil
}

// describeFeedError adds advice for the feed errors a user can act on.
func describeFeedError(err error) error {
	if rle, ok := adsb.IsRateLimitError(err); ok && rle.Headers.Remaining == 0 && !rle.Headers.Reset.IsZero() {
		return fmt.Errorf("%w (quota resets %s)", err, humanize.Time(rle.Headers.Reset))
	}
	return err
}

// printSnapshot writes the report and, in text mode, the cycle summary.
func printSnapshot(out io.Writer, renderer *render.Renderer, snap *watch.Snapshot, format render.Format) {
	obs := snap.Observer
	fmt.Fprintln(out, renderer.Render(snap.Aircraft, format, obs.Lat, obs.Lon))

	if format != render.Text || snap.Summary.Total == 0 {
		return
	}

	for _, a := range snap.Alerts {
		if a.Level != alerts.Critical {
			continue
		}
		fmt.Fprintln(out, alertStyle.Render("\n⚠️  "+strings.ToUpper(strings.ReplaceAll(string(a.Kind), "_", " "))+" ALERT!"))
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("%s: %s", displayName(a), a.Message)))
	}

	if n := snap.Summary.LowAltitude; n > 0 {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("\n⚠️  %d aircraft below %s detected!", n, humanize.Comma(int64(alerts.SummaryLowAltitudeFt))+"ft")))
	}
	if n := snap.Summary.Military; n > 0 {
		fmt.Fprintln(out, militaryLine.Render(fmt.Sprintf("\n🛩️  %d military aircraft in range", n)))
	}
	if n := snap.Summary.Emergencies; n > 0 {
		fmt.Fprintln(out, alertStyle.Render(fmt.Sprintf("\n🚨 %d aircraft declaring an emergency", n)))
	}
}

func displayName(a alerts.Alert) string {
	if a.Callsign != "" {
		return a.Callsign
	}
	return strings.ToUpper(a.Hex)
}
