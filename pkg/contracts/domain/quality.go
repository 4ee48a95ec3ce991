package domain

import "time"

// Severity classifies quality observations. Fatal conditions are not
// observations; they abort the run as errors before export.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ObservationCode identifies the kind of quality event recorded during a run.
type ObservationCode string

const (
	// ObsSheetFallback: no sheet alias matched and the first sheet was used.
	ObsSheetFallback ObservationCode = "SHEET_FALLBACK"
	// ObsColumnAmbiguity: more than one header cell matched a column rule and
	// the first match was chosen.
	ObsColumnAmbiguity ObservationCode = "COLUMN_AMBIGUITY"
	// ObsSentinelValue: a non-empty cell coerced to null (e.g. "NC", "N/A").
	ObsSentinelValue ObservationCode = "SENTINEL_VALUE"
	// ObsMissingSource: a configured source file was absent or unreadable.
	ObsMissingSource ObservationCode = "MISSING_SOURCE"
	// ObsSourceFailed: a source file opened but could not be parsed.
	ObsSourceFailed ObservationCode = "SOURCE_FAILED"
	// ObsEmptyJoinKey: a joined row carried an empty school identifier and
	// was dropped from the canonical set.
	ObsEmptyJoinKey ObservationCode = "EMPTY_JOIN_KEY"
	// ObsLowCompleteness: a numeric field's non-null percentage fell below
	// the configured warning threshold.
	ObsLowCompleteness ObservationCode = "LOW_COMPLETENESS"
)

// Observation is one structured quality event. Every fallback, ambiguity,
// coerced sentinel, dropped row, and missing source produces one.
type Observation struct {
	Severity Severity        `json:"severity"`
	Code     ObservationCode `json:"code"`
	Category Category        `json:"category,omitempty"`
	Year     YearLabel       `json:"year,omitempty"`
	Detail   string          `json:"detail"`
}

// ObservationSink receives quality observations as a run executes.
type ObservationSink interface {
	Observe(Observation)
}

// ObservationLog is the slice-backed sink shared by all pipeline stages of a
// single run. The pipeline is strictly sequential, so no locking is needed.
type ObservationLog struct {
	observations []Observation
}

// Observe appends one observation.
func (l *ObservationLog) Observe(o Observation) {
	l.observations = append(l.observations, o)
}

// All returns the recorded observations in emission order.
func (l *ObservationLog) All() []Observation {
	out := make([]Observation, len(l.observations))
	copy(out, l.observations)
	return out
}

// Count returns how many observations carry the given code.
func (l *ObservationLog) Count(code ObservationCode) int {
	n := 0
	for _, o := range l.observations {
		if o.Code == code {
			n++
		}
	}
	return n
}

// FieldCompleteness reports how many records populate one numeric field.
// Year is empty for the all-years rollup.
type FieldCompleteness struct {
	Field     string    `json:"field"`
	Year      YearLabel `json:"year,omitempty"`
	Populated int       `json:"populated"`
	Total     int       `json:"total"`
}

// Percent returns the populated share as a percentage.
func (c FieldCompleteness) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Populated) / float64(c.Total) * 100
}

// QualityReport is the read-only summary the validator produces for one run.
type QualityReport struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	TotalRecords  int                 `json:"total_records"`
	UniqueSchools int                 `json:"unique_schools"`
	Years         []YearLabel         `json:"years"`
	Completeness  []FieldCompleteness `json:"completeness"`
	DroppedRows   int                 `json:"dropped_rows"`
	Observations  []Observation       `json:"observations"`
}
