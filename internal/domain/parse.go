package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinRowCells is the number of cells a bulletin row needs to carry a record.
const MinRowCells = 9

// numberPrefixRe matches the longest leading decimal number, optionally signed
// and with an exponent, e.g. "-12.5 km" -> "-12.5".
var numberPrefixRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// timestampLayouts are tried in order against "<date> <time>".
var timestampLayouts = []string{
	"02 January 2006 03:04 PM",
	"2 January 2006 03:04 PM",
	"02 January 2006 3:04 PM",
	"2 January 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 03:04 PM",
	"02 Jan 2006 03:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 03:04 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 03:04 PM",
}

// Number is the result of a lenient numeric parse. Valid is false when the
// input carried no numeric prefix; Value is then zero.
type Number struct {
	Value float64
	Valid bool
}

// OrZero returns the parsed value, or 0 when the input was unparsed.
func (n Number) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// ParseNumber parses the longest leading decimal prefix of s after trimming.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	m := numberPrefixRe.FindString(s)
	if m == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// RowVerdict tags why a bulletin row was or was not turned into a record.
type RowVerdict int

const (
	RowAccepted RowVerdict = iota
	RowTooFewCells
	RowInvalidCoordinates
)

func (v RowVerdict) String() string {
	switch v {
	case RowAccepted:
		return "accepted"
	case RowTooFewCells:
		return "too_few_cells"
	case RowInvalidCoordinates:
		return "invalid_coordinates"
	default:
		return "unknown"
	}
}

// CheckCellCount requires at least MinRowCells cells.
func CheckCellCount(cells []string) RowVerdict {
	if len(cells) < MinRowCells {
		return RowTooFewCells
	}
	return RowAccepted
}

// CheckCoordinates rejects unparsed or zero coordinates.
func CheckCoordinates(lat, lon Number) RowVerdict {
	if lat.OrZero() == 0 || lon.OrZero() == 0 {
		return RowInvalidCoordinates
	}
	return RowAccepted
}

// ParseRow turns the trimmed cells of one bulletin row into a record.
// seq is the row's 1-based position among all non-header rows. The record is
// only meaningful when the verdict is RowAccepted.
func ParseRow(seq int, cells []string, loc *time.Location) (SeismicRecord, RowVerdict) {
	if v := CheckCellCount(cells); v != RowAccepted {
		return SeismicRecord{}, v
	}

	lat := ParseNumber(cells[2])
	lon := ParseNumber(cells[3])
	if v := CheckCoordinates(lat, lon); v != RowAccepted {
		return SeismicRecord{}, v
	}

	return SeismicRecord{
		SequenceID:     seq,
		Date:           cells[0],
		Time:           cells[1],
		Latitude:       lat.Value,
		Longitude:      lon.Value,
		DepthLabel:     cells[4],
		Magnitude:      ParseNumber(cells[5]).OrZero(),
		Location:       cells[6],
		OriginType:     cells[7],
		IntensityLabel: cells[8],
		OccurredAt:     ParseOccurredAt(cells[0], cells[1], loc),
	}, RowAccepted
}

// ParseOccurredAt combines a date and a time cell into epoch milliseconds.
// Returns nil when no layout matches. A nil loc means UTC.
func ParseOccurredAt(date, clock string, loc *time.Location) *int64 {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.Join(strings.Fields(date+" "+clock), " ")
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			ms := t.UnixMilli()
			return &ms
		}
	}
	return nil
}
