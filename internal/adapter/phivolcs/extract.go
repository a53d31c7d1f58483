package phivolcs

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// Extractor turns a bulletin page into seismic records. It implements
// pipeline.Extractor.
type Extractor struct {
	loc     *time.Location
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExtractor creates an extractor that reads bulletin timestamps in loc.
// metrics may be nil.
func NewExtractor(loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{loc: loc, logger: logger, metrics: metrics}
}

// Extract parses body as HTML and returns the valid records in page order.
func (e *Extractor) Extract(body []byte) ([]domain.SeismicRecord, error) {
	return e.ExtractFrom(bytes.NewReader(body))
}

// ExtractFrom parses an HTML stream. Malformed markup is not an error; only a
// failure to read r is.
func (e *Extractor) ExtractFrom(r io.Reader) ([]domain.SeismicRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse bulletin document: %w", err)
	}
	return e.ExtractDocument(doc), nil
}

// ExtractDocument walks every "table tr" in the document. The first row is
// the header. Remaining rows are numbered from 1 whether or not they survive.
func (e *Extractor) ExtractDocument(doc *goquery.Document) []domain.SeismicRecord {
	records := make([]domain.SeismicRecord, 0)

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		seq := i

		cells := row.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})

		record, verdict := domain.ParseRow(seq, cells, e.loc)
		if verdict != domain.RowAccepted {
			e.logger.Debug("bulletin row skipped",
				"row", seq,
				"reason", verdict.String(),
				"cells", len(cells),
			)
			if e.metrics != nil {
				e.metrics.RowsSkipped.WithLabelValues(verdict.String()).Inc()
			}
			return
		}
		records = append(records, record)
	})

	return records
}
