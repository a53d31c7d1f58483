package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the records extracted from the bulletin",
		Long: `Print the seismic records extracted from the bulletin, newest first.

Examples:
  quakectl extract
  quakectl extract --limit 10 --format human
  quakectl extract --file saved.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			records, err := opts.loadRecords(cmd)
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			if format == FormatHuman {
				return writeRecordsHuman(cmd.OutOrStdout(), records)
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to print (0 prints all)")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print magnitude and depth statistics for the bulletin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			records, err := opts.loadRecords(cmd)
			if err != nil {
				return err
			}
			summary, ok := domain.Summarize(records)
			if !ok {
				return domain.ErrNoRecords
			}
			if format == FormatHuman {
				return writeSummaryHuman(cmd.OutOrStdout(), summary)
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newLatestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent event in the bulletin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			records, err := opts.loadRecords(cmd)
			if err != nil {
				return err
			}
			latest, ok := domain.Latest(records)
			if !ok {
				return errors.New("no earthquake data available")
			}
			if format == FormatHuman {
				return writeRecordsHuman(cmd.OutOrStdout(), []domain.SeismicRecord{latest})
			}
			return writeJSON(cmd.OutOrStdout(), latest)
		},
	}
}
