package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cenalian/CFPS-Parsing/internal/airports"
	"github.com/Cenalian/CFPS-Parsing/internal/cfps"
	"github.com/Cenalian/CFPS-Parsing/internal/config"
	"github.com/Cenalian/CFPS-Parsing/internal/geolocate"
	"github.com/Cenalian/CFPS-Parsing/internal/logger"
	"github.com/Cenalian/CFPS-Parsing/internal/report"
	"github.com/Cenalian/CFPS-Parsing/internal/upperwind"
)

// options holds command-line flags
type options struct {
	configPath string
	noColor    bool
	showURL    bool
	logLevel   string
	radius     float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cfps [location] [report-type]",
		Short: "Query NAV CANADA CFPS weather for an FIR or aerodrome",
		Long: `Queries the NAV CANADA Collaborative Flight Planning Services weather API.

The location is one of the seven FIRs (CZEG, CZQM, CZQX, CZUL, CZVR, CZWG,
CZYZ), an aerodrome identifier from the coordinate table, or AUTO for the
aerodrome nearest to you. Report types: sigmet, airmet, notam, metar, taf,
pirep, upperwind.`,
		Example:       "  cfps CYKF upperwind\n  cfps CZYZ sigmet",
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a TOML config file (default ./"+config.DefaultPath+" if present)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable color output")
	flags.BoolVar(&opts.showURL, "show-url", false, "Print the query URL before fetching")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.Float64Var(&opts.radius, "radius", 0, "Search radius in miles for AUTO (default 50)")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return reportErr(cmd, err)
	}
	if opts.noColor {
		cfg.NoColor = true
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.radius > 0 {
		cfg.RadiusMiles = opts.radius
	}
	if cfg.NoColor {
		color.NoColor = true // disables colorized output globally
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return reportErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	location, reportType, err := readArgs(args, cmd.InOrStdin(), out)
	if err != nil {
		return reportErr(cmd, err)
	}

	table := airports.Embedded()
	if cfg.AirportsPath != "" {
		table = airports.OpenFile(cfg.AirportsPath)
	}

	if strings.EqualFold(location, autoLocation) {
		geo := geolocate.NewClient(cfg.GeolocateURL, cfg.RequestTimeout())
		location, err = resolveAutoLocation(ctx, out, geo, table, cfg.RadiusMiles)
		if err != nil {
			return reportErr(cmd, err)
		}
	}

	fmt.Fprintf(out, "Location: %s\n", location)
	fmt.Fprintf(out, "Type of data: %s\n", reportType)

	builder := cfps.NewBuilder(cfg.BaseURL, table)
	queryURL, err := builder.BuildURL(location, reportType)
	if err != nil {
		return reportErr(cmd, err)
	}
	log.Debug("Built query URL", zap.String("url", queryURL))
	if opts.showURL {
		fmt.Fprintln(out, queryURL)
	}

	client := cfps.NewClient(cfg.RequestTimeout(), cfg.MaxRetries, log)
	dispatcher := report.NewDispatcher(upperwind.NewDecoder(client), log)

	outcome, err := dispatcher.Dispatch(ctx, reportType, queryURL)
	if errors.Is(err, report.ErrUnsupportedType) {
		fmt.Fprintf(out, "%s is not currently supported as an option for querying\n", reportType)
		return nil
	}
	if err != nil {
		return reportErr(cmd, err)
	}

	fmt.Fprint(out, FormatOutcome(outcome, clock.Now()))
	return nil
}

// reportErr prints err to the command's error stream and returns it so the
// process exits non-zero.
func reportErr(cmd *cobra.Command, err error) error {
	w := cmd.ErrOrStderr()
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
	return err
}
