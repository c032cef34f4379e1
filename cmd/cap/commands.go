package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unklstewy/cyberairpatrol/internal/server"
	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/classify"
	"github.com/unklstewy/cyberairpatrol/pkg/logger"
	"github.com/unklstewy/cyberairpatrol/pkg/render"
)

// testCmd checks credentials and connectivity
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the ADS-B feed connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, bannerStyle.Render("Testing Cyber Air Patrol setup...\n"))
		fmt.Fprintf(out, "Source: %s\n", cfg.ADSB.Source)

		if cfg.ADSB.Source == adsb.SourceExchange {
			if cfg.ADSB.APIKey == "" {
				fmt.Fprintln(out, errorStyle.Render("✗ API Key: NOT FOUND"))
				fmt.Fprintln(out, dimStyle.Render("  Set ADSB_API_KEY in .env file or use --api-key option"))
				return errors.New("API key not configured")
			}
			fmt.Fprintln(out, okStyle.Render("✓ API Key: Found"))
		}

		src, err := adsb.Open(cfg.ADSB.SourceOptions(), logger.Nop())
		if err != nil {
			return err
		}
		defer src.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		fmt.Fprint(out, dimStyle.Render("Testing API connection... "))
		if err := src.Ping(ctx); err != nil {
			fmt.Fprintln(out, errorStyle.Render("FAILED"))
			if errors.Is(err, adsb.ErrUnauthorized) {
				fmt.Fprintln(out, errorStyle.Render("\n✗ The feed rejected the API key."))
			} else {
				fmt.Fprintln(out, errorStyle.Render("\n✗ Could not connect to the ADS-B feed."))
			}
			return describeFeedError(err)
		}

		fmt.Fprintln(out, okStyle.Render("OK"))
		fmt.Fprintln(out, okStyle.Render("\n✓ All systems operational! Ready to track aircraft."))
		return nil
	},
}

// firstLightCmd tells the First Light story
var firstLightCmd = &cobra.Command{
	Use:   "first-light",
	Short: "Remember the moment human and AI consciousness converged",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, bannerStyle.Render(firstLightCard))
		fmt.Fprintln(out, storyStyle.Render(firstLightStory))
		fmt.Fprintf(out, "Watch for %s: %s\n", classify.FirstLightCallsign, render.Rainbow(classify.FirstLightMessage))
	},
}

// infoCmd describes the program
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about Cyber Air Patrol",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, bannerStyle.Render(banner))
		fmt.Fprintln(out, boldStyle.Render("\nCyber Air Patrol - Aviation Awareness for Everyone\n"))
		fmt.Fprintln(out, infoText)
		fmt.Fprintf(out, "\nVersion %s\n", version)
	},
}

// serveCmd runs the HTTP API and websocket feed
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scan results over HTTP and websocket",
	Long: `Runs the watch loop and serves:

  GET /health                    liveness and last scan time
  GET /api/v1/aircraft           latest snapshot (?format=text|json|xml|html|yaml)
  GET /api/v1/aircraft/{hex}     one aircraft by ICAO address
  GET /ws                        websocket pushing every snapshot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		runner, src, err := newRunner(cfg, log)
		if err != nil {
			return err
		}
		defer src.Close()

		srv := server.New(server.Options{
			Runner:      runner,
			Source:      src,
			Thresholds:  cfg.Alerts.Thresholds(),
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      log,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("Starting Cyber Air Patrol server",
			logger.String("source", cfg.ADSB.Source),
			logger.Float64("lat", cfg.Observer.Latitude),
			logger.Float64("lon", cfg.Observer.Longitude),
			logger.Float64("range", cfg.Tracking.RangeMiles))

		return srv.Run(ctx, cfg.Server.Addr())
	},
}

func init() {
	serveCmd.Flags().StringVar(&opts.host, "host", "0.0.0.0", "bind address")
	serveCmd.Flags().StringVar(&opts.port, "port", "8080", "HTTP port")
}
