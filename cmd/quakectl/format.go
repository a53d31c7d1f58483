package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatJSON, FormatHuman:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeRecordsHuman(w io.Writer, records []domain.SeismicRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tMAG\tDEPTH\tLAT\tLON\tLOCATION")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%.2f\t%.2f\t%s\n",
			r.SequenceID, when(r), r.Magnitude, r.DepthLabel, r.Latitude, r.Longitude, r.Location)
	}
	return tw.Flush()
}

func writeSummaryHuman(w io.Writer, s domain.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Events:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Regions:\t%d\n", s.RegionsCount)
	fmt.Fprintf(tw, "Magnitude:\tavg %.2f, min %.1f, max %.1f\n", s.AverageMagnitude, s.MinMagnitude, s.MaxMagnitude)
	m := s.ByMagnitudeRange
	fmt.Fprintf(tw, "By magnitude:\tminor %d, light %d, moderate %d, strong %d, major %d\n",
		m.Minor, m.Light, m.Moderate, m.Strong, m.Major)
	d := s.ByDepth
	fmt.Fprintf(tw, "By depth:\tshallow %d, intermediate %d, deep %d\n", d.Shallow, d.Intermediate, d.Deep)
	return tw.Flush()
}

func when(r domain.SeismicRecord) string {
	if r.OccurredAt == nil {
		return r.Date + " " + r.Time
	}
	return time.UnixMilli(*r.OccurredAt).UTC().Format(time.RFC3339)
}
