package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFetchFailed marks a network, timeout, or non-2xx failure reaching the source.
	ErrFetchFailed = errors.New("fetch source document")

	// ErrNoRecords marks a document that parsed but yielded no valid records.
	ErrNoRecords = errors.New("source document contained no valid records")
)

// SeismicRecord is one event extracted from a bulletin row. JSON names match
// the payload the dashboard has always consumed.
type SeismicRecord struct {
	SequenceID     int     `json:"id"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DepthLabel     string  `json:"depth"`
	Magnitude      float64 `json:"magnitude"`
	Location       string  `json:"location"`
	OriginType     string  `json:"origin"`
	IntensityLabel string  `json:"intensity"`

	// OccurredAt is epoch milliseconds, nil when Date+Time could not be parsed.
	OccurredAt *int64 `json:"timestamp"`
}

// Key returns a deterministic identifier built from the fields PHIVOLCS uses
// to distinguish events. Unlike SequenceID it is stable across fetches.
func (r SeismicRecord) Key() string {
	input := fmt.Sprintf("%s|%s|%.4f|%.4f|%g", r.Date, r.Time, r.Latitude, r.Longitude, r.Magnitude)
	hash := sha256.Sum256([]byte(input))
	return "eq-" + hex.EncodeToString(hash[:8])
}

// Snapshot is the record set handed to API handlers by the orchestrator.
type Snapshot struct {
	Records    []SeismicRecord
	Cached     bool
	LastUpdate time.Time

	// Err is set only when a refresh failed and stale records are being served.
	Err error
}

// Fresh reports whether the snapshot came from a fetch made for this request.
func (s Snapshot) Fresh() bool {
	return !s.Cached
}
