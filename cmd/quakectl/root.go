package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-feed-service/internal/adapter/phivolcs"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	file     string
	url      string
	timezone string
	timeout  time.Duration
	format   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quakectl",
		Short: "Inspect the PHIVOLCS earthquake bulletin",
		Long: `quakectl fetches the PHIVOLCS latest earthquake page (or reads a saved copy),
extracts the seismic records, and prints them or their statistics.

Records are ordered newest first, the same as the HTTP API serves them.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.file, "file", "", "Read the bulletin from a saved HTML file instead of fetching it")
	flags.StringVar(&opts.url, "url", config.DefaultSourceURL, "Bulletin page URL")
	flags.StringVar(&opts.timezone, "timezone", "Asia/Manila", "IANA zone the bulletin's dates are written in")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Fetch timeout")
	flags.StringVar(&opts.format, "format", string(FormatJSON), "Output format (json, human)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(newExtractCmd(opts), newStatsCmd(opts), newLatestCmd(opts))
	return cmd
}

// loadRecords reads the bulletin from --file or --url and returns its records
// newest first.
func (o *rootOptions) loadRecords(cmd *cobra.Command) ([]domain.SeismicRecord, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid --timezone: %w", err)
	}
	logger := observability.NewCLILogger(cmd.ErrOrStderr(), o.logLevel)
	extractor := phivolcs.NewExtractor(loc, logger, nil)

	var records []domain.SeismicRecord
	if o.file != "" {
		f, err := os.Open(o.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if records, err = extractor.ExtractFrom(f); err != nil {
			return nil, err
		}
	} else {
		client := phivolcs.NewClient(o.url, config.DefaultUserAgent, o.timeout, logger)
		body, err := client.Fetch(cmd.Context())
		if err != nil {
			return nil, err
		}
		if records, err = extractor.Extract(body); err != nil {
			return nil, err
		}
	}

	domain.SortNewestFirst(records)
	logger.Debug("bulletin loaded", "records", len(records))
	return records, nil
}
