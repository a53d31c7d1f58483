package phivolcs

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

var manila = time.FixedZone("PST", 8*60*60)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExtractor() *Extractor {
	return NewExtractor(manila, discardLogger(), observability.NewMetricsForTesting())
}

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/bulletin.html")
	require.NoError(t, err)
	return data
}

func millis(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func table(rows ...string) []byte {
	return []byte("<html><body><table><tr><th>Date</th></tr>" + strings.Join(rows, "") + "</table></body></html>")
}

func TestExtract_Fixture(t *testing.T) {
	records, err := testExtractor().Extract(loadFixture(t))
	require.NoError(t, err)

	want := []domain.SeismicRecord{
		{
			SequenceID: 1, Date: "2026-10-15", Time: "14:32:10",
			Latitude: 12.87, Longitude: 120.83, DepthLabel: "010", Magnitude: 4.1,
			Location:   "012 km N 45° E of Sablayan (Occidental Mindoro)",
			OriginType: "Tectonic", IntensityLabel: "III",
			OccurredAt: millis(time.Date(2026, 10, 15, 14, 32, 10, 0, manila)),
		},
		{
			SequenceID: 2, Date: "2026-10-15", Time: "13:05:44",
			Latitude: 9.75, Longitude: 126.42, DepthLabel: "112 km", Magnitude: 3.2,
			Location:   "034 km S 72° E of General Luna (Surigao Del Norte)",
			OriginType: "Tectonic", IntensityLabel: "",
			OccurredAt: millis(time.Date(2026, 10, 15, 13, 5, 44, 0, manila)),
		},
		{
			SequenceID: 5, Date: "2026-10-15", Time: "09:18:02",
			Latitude: 14.11, Longitude: 120.71, DepthLabel: "005", Magnitude: 2.4,
			Location:   "006 km S 21° W of Calatagan (Batangas)",
			OriginType: "Tectonic",
			OccurredAt: millis(time.Date(2026, 10, 15, 9, 18, 2, 0, manila)),
		},
		{
			SequenceID: 6, Date: "Unverified", Time: "--:--",
			Latitude: 6.02, Longitude: 125.98, DepthLabel: "350", Magnitude: 6.3,
			Location: "Davao Occidental offshore", OriginType: "Tectonic", IntensityLabel: "V",
		},
	}

	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_SkipsShortRowsAndKeepsNumberingGap(t *testing.T) {
	doc := table(
		row("2026-10-15", "10:00", "12.1", "121.1", "10", "3.0", "A", "Tectonic", "I"),
		row("a", "b", "c", "d", "e"),
		row("2026-10-15", "09:00", "13.1", "122.1", "20", "2.0", "B", "Tectonic", "II"),
	)

	records, err := testExtractor().Extract(doc)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].SequenceID)
	assert.Equal(t, 3, records[1].SequenceID)
}

func TestExtract_ShortRowsNeverProduceRecords(t *testing.T) {
	for n := 0; n < domain.MinRowCells; n++ {
		cells := make([]string, n)
		for i := range cells {
			cells[i] = "12.5"
		}
		records, err := testExtractor().Extract(table(row(cells...)))
		require.NoError(t, err)
		assert.Empty(t, records, "cells=%d", n)
	}
}

func TestExtract_AllRecordsHaveNonZeroCoordinates(t *testing.T) {
	doc := table(
		row("d", "t", "0", "121.1", "10", "3.0", "A", "o", "i"),
		row("d", "t", "12.1", "0.0", "10", "3.0", "A", "o", "i"),
		row("d", "t", "n/a", "121.1", "10", "3.0", "A", "o", "i"),
		row("d", "t", "12.1", "121.1", "10", "3.0", "A", "o", "i"),
	)

	records, err := testExtractor().Extract(doc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	for _, r := range records {
		assert.NotZero(t, r.Latitude)
		assert.NotZero(t, r.Longitude)
	}
	assert.Equal(t, 4, records[0].SequenceID)
}

func TestExtract_ExtraCellsIgnored(t *testing.T) {
	doc := table(row("2026-10-15", "10:00", "12.1", "121.1", "10", "3.0", "A", "Tectonic", "I", "extra", "more"))

	records, err := testExtractor().Extract(doc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "I", records[0].IntensityLabel)
}

func TestExtract_EmptyAndMalformedDocuments(t *testing.T) {
	inputs := map[string][]byte{
		"empty":       nil,
		"no table":    []byte("<html><body><p>Service unavailable</p></body></html>"),
		"header only": table(),
		"garbage":     []byte("<<<not html>>> <table><tr><td>"),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			records, err := testExtractor().Extract(input)
			require.NoError(t, err)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestExtract_RecordsSkipMetrics(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	e := NewExtractor(manila, discardLogger(), metrics)

	_, err := e.Extract(loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("too_few_cells")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("invalid_coordinates")))
}

func TestExtract_NilMetrics(t *testing.T) {
	e := NewExtractor(manila, discardLogger(), nil)
	records, err := e.Extract(loadFixture(t))
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestExtract_DebugLogsSkippedRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewExtractor(manila, logger, nil)

	_, err := e.Extract(loadFixture(t))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "reason=too_few_cells")
	assert.Contains(t, buf.String(), "reason=invalid_coordinates")
	assert.Contains(t, buf.String(), "row=3")
	assert.Contains(t, buf.String(), "row=4")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestExtractFrom_ReadError(t *testing.T) {
	_, err := testExtractor().ExtractFrom(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
