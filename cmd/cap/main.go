// Cyber Air Patrol - real-time aircraft awareness from ADS-B feeds.
//
// The root command scans the airspace around an observer once (or
// continuously with --watch / --tui) and prints a report in text, JSON,
// XML, HTML or YAML. Subcommands test the feed, serve the results over
// HTTP and websocket, and print program information.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unklstewy/cyberairpatrol/pkg/config"
)

var version = "0.1.0"

// options holds every command-line flag. Flags only override the config
// file and environment when they are set explicitly.
type options struct {
	configPath string
	envFile    string

	lat      float64
	lon      float64
	rangeMi  float64
	format   string
	minAlt   float64
	maxAlt   float64
	apiKey   string
	source   string
	local    string
	demo     bool
	noBanner bool
	watch    bool
	tui      bool
	interval int
	logLevel string

	host string
	port string
}

var opts options

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cap",
	Short: "Cyber Air Patrol - Real-time aircraft tracking for aviation awareness",
	Long: `Cyber Air Patrol scans the airspace around you using live ADS-B data,
classifies what it finds and warns about low-flying, military and special
flights.

Examples:
  cap --demo
  cap --lat 41.26 --lon -95.94 --range 25
  cap -f json --min-alt 500 --max-alt 10000
  cap --source airplanes.live --watch --interval 15
  cap --source local --local http://raspberrypi:8080/data/aircraft.json --tui
  cap serve --port 8080`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a JSON or TOML config file")
	pf.StringVar(&opts.envFile, "env-file", ".env", "path to a .env file with ADSB_API_KEY etc.")
	pf.Float64VarP(&opts.lat, "lat", "l", 41.0, "observer latitude")
	pf.Float64VarP(&opts.lon, "lon", "n", -95.0, "observer longitude")
	pf.Float64VarP(&opts.rangeMi, "range", "r", 10, "search radius in miles (1-50)")
	pf.StringVar(&opts.apiKey, "api-key", "", "ADSBexchange API key (or set ADSB_API_KEY env var)")
	pf.StringVar(&opts.source, "source", "", "ADS-B source: adsbexchange, airplanes.live, local, demo")
	pf.StringVar(&opts.local, "local", "", "aircraft.json path or URL for the local source")
	pf.BoolVar(&opts.demo, "demo", false, "run in demo mode with simulated aircraft")
	pf.Float64Var(&opts.minAlt, "min-alt", 0, "minimum altitude filter (feet)")
	pf.Float64Var(&opts.maxAlt, "max-alt", 0, "maximum altitude filter (feet)")
	pf.IntVar(&opts.interval, "interval", 30, "seconds between scans in watch mode")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	f := rootCmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "text", "output format: text, json, xml, html, yaml")
	f.BoolVar(&opts.noBanner, "no-banner", false, "suppress banner display")
	f.BoolVar(&opts.watch, "watch", false, "continuous monitoring mode")
	f.BoolVar(&opts.tui, "tui", false, "interactive full-screen monitoring")

	rootCmd.AddCommand(testCmd, firstLightCmd, infoCmd, serveCmd)
}

func main() {
	cobra.OnInitialize(func() {
		if err := config.LoadEnvFile(opts.envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
