package domain

import (
	"math"
	"sort"
)

// MagnitudeRanges counts records per magnitude band.
type MagnitudeRanges struct {
	Minor    int `json:"minor"`    // < 3
	Light    int `json:"light"`    // 3 to < 4
	Moderate int `json:"moderate"` // 4 to < 5
	Strong   int `json:"strong"`   // 5 to < 6
	Major    int `json:"major"`    // >= 6
}

// DepthRanges counts records per depth band in kilometres. Records whose
// depth label does not parse are not counted in any band.
type DepthRanges struct {
	Shallow      int `json:"shallow"`      // <= 70
	Intermediate int `json:"intermediate"` // > 70 and <= 300
	Deep         int `json:"deep"`         // > 300
}

// Summary holds aggregate statistics for a record set.
type Summary struct {
	Total            int             `json:"total"`
	AverageMagnitude float64         `json:"averageMagnitude"`
	MaxMagnitude     float64         `json:"maxMagnitude"`
	MinMagnitude     float64         `json:"minMagnitude"`
	RegionsCount     int             `json:"regionsCount"`
	ByMagnitudeRange MagnitudeRanges `json:"byMagnitudeRange"`
	ByDepth          DepthRanges     `json:"byDepth"`
}

// Latest returns the first record of the set. The set is expected to be
// ordered newest first already; Latest does not sort. Returns false when empty.
func Latest(records []SeismicRecord) (SeismicRecord, bool) {
	if len(records) == 0 {
		return SeismicRecord{}, false
	}
	return records[0], true
}

// Summarize computes aggregate statistics. Returns false for an empty set
// rather than a summary with undefined extrema.
func Summarize(records []SeismicRecord) (Summary, bool) {
	if len(records) == 0 {
		return Summary{}, false
	}

	s := Summary{
		Total:        len(records),
		MaxMagnitude: records[0].Magnitude,
		MinMagnitude: records[0].Magnitude,
	}
	regions := make(map[string]struct{}, len(records))
	var sum float64

	for _, r := range records {
		sum += r.Magnitude
		s.MaxMagnitude = math.Max(s.MaxMagnitude, r.Magnitude)
		s.MinMagnitude = math.Min(s.MinMagnitude, r.Magnitude)
		regions[r.Location] = struct{}{}
		s.ByMagnitudeRange.add(r.Magnitude)
		if depth := ParseNumber(r.DepthLabel); depth.Valid {
			s.ByDepth.add(depth.Value)
		}
	}

	s.AverageMagnitude = roundTo(sum/float64(len(records)), 2)
	s.RegionsCount = len(regions)
	return s, true
}

func (m *MagnitudeRanges) add(mag float64) {
	switch {
	case mag < 3:
		m.Minor++
	case mag < 4:
		m.Light++
	case mag < 5:
		m.Moderate++
	case mag < 6:
		m.Strong++
	default:
		m.Major++
	}
}

func (d *DepthRanges) add(km float64) {
	switch {
	case km <= 70:
		d.Shallow++
	case km <= 300:
		d.Intermediate++
	default:
		d.Deep++
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// SortNewestFirst orders records by OccurredAt descending in place. Records
// without a timestamp go last; ties keep their source order.
func SortNewestFirst(records []SeismicRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].OccurredAt, records[j].OccurredAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
