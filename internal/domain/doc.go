// Package domain models PHIVOLCS earthquake bulletin data.
//
// # Data Source
//
// Records originate from the "Latest Earthquake Information" page published
// by the Philippine Institute of Volcanology and Seismology (PHIVOLCS). The
// page renders recent events as an HTML table; the service scrapes it on
// demand and keeps the extracted set in a short-lived cache.
//
// # Source Conventions
//
// Row layout (after the header row), one cell per column:
//
//	date | time | latitude | longitude | depth | magnitude | location | origin | intensity
//
// Rows with fewer than nine cells are layout rows (banners, spacer rows,
// nested headers) and are skipped.
//
// Numbers are parsed leniently: the longest leading decimal prefix is used,
// so "10 km" reads as 10 and "012" reads as 12. A cell without a numeric
// prefix is unparsed, see [Number].
//
// Coordinates:
//
//	Zero latitude or longitude is treated as an extraction failure, not as an
//	equatorial or prime-meridian reading. PHIVOLCS never reports events on
//	either line, so the row is dropped. See [CheckCoordinates].
//
// Date and time:
//
//	Rendered in Philippine Standard Time using a handful of formats over the
//	years ("02 January 2006" + "03:04 PM", ISO "2006-01-02" + "15:04:05").
//	The combined string is parsed against [timestampLayouts] in the configured
//	source location. An unparseable combination leaves OccurredAt nil.
//
// Depth:
//
//	Free text, usually kilometres, sometimes with a unit suffix. Kept verbatim
//	on the record; [Summarize] derives a numeric depth when bucketing.
//
// # Sequence IDs
//
// SequenceID is the 1-based position of the row among every non-header row of
// the page, including rows that were later dropped. IDs therefore have gaps
// and are not stable across fetches.
package domain
