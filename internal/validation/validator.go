package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"edupulse/internal/errors"
	"edupulse/pkg/contracts/domain"
)

// fieldAccessors maps canonical numeric field names to their getters, in
// report column order.
var fieldAccessors = []struct {
	name string
	get  func(domain.CanonicalRecord) *float64
}{
	{"enrollment", func(r domain.CanonicalRecord) *float64 { return r.Enrollment }},
	{"value_added_composite", func(r domain.CanonicalRecord) *float64 { return r.ValueAddedComposite }},
	{"performance_index_score", func(r domain.CanonicalRecord) *float64 { return r.PerformanceIndexScore }},
}

// Validator checks the canonical record set against the run invariants and
// assembles the quality report. It never mutates its input.
type Validator struct {
	districtID       string
	years            []domain.YearLabel
	warnBelowPercent float64
	logger           *slog.Logger
}

// New creates a validator for one district and the configured year set.
func New(districtID string, years []domain.YearLabel, warnBelowPercent float64, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		districtID:       districtID,
		years:            years,
		warnBelowPercent: warnBelowPercent,
		logger:           logger,
	}
}

// Validate runs the invariant checks and returns the quality report. A nil
// error means the record set is safe to export; a non-nil error is an
// invariant violation and the caller must not write any canonical output.
// Completeness below the warning threshold is reported, never fatal.
func (v *Validator) Validate(runID string, records []domain.CanonicalRecord, log *domain.ObservationLog) (*domain.QualityReport, error) {
	if err := v.checkDuplicates(records); err != nil {
		return nil, err
	}
	if err := v.checkYearSet(records); err != nil {
		return nil, err
	}
	if err := v.checkScope(records); err != nil {
		return nil, err
	}

	completeness := v.measureCompleteness(records, log)

	schools := make(map[string]bool, len(records))
	for _, rec := range records {
		schools[rec.SchoolID] = true
	}

	report := &domain.QualityReport{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		TotalRecords:  len(records),
		UniqueSchools: len(schools),
		Years:         sortedYears(v.years),
		Completeness:  completeness,
		DroppedRows:   log.Count(domain.ObsEmptyJoinKey),
		Observations:  log.All(),
	}

	v.logger.Info("validation passed",
		slog.Int("records", report.TotalRecords),
		slog.Int("unique_schools", report.UniqueSchools),
		slog.Int("observations", len(report.Observations)))

	return report, nil
}

// checkDuplicates enforces (school_id, year) uniqueness. A duplicate means a
// consolidator defect and halts the run before export.
func (v *Validator) checkDuplicates(records []domain.CanonicalRecord) error {
	seen := make(map[domain.RecordKey]bool, len(records))
	for _, rec := range records {
		key := rec.Key()
		if seen[key] {
			return errors.NewValidationError(fmt.Sprintf(
				"duplicate record for school %s year %s", key.SchoolID, key.Year))
		}
		seen[key] = true
	}
	return nil
}

// checkYearSet enforces that the distinct years in the output exactly equal
// the configured set.
func (v *Validator) checkYearSet(records []domain.CanonicalRecord) error {
	expected := make(map[domain.YearLabel]bool, len(v.years))
	for _, y := range v.years {
		expected[y] = false
	}
	for _, rec := range records {
		covered, ok := expected[rec.Year]
		if !ok {
			return errors.NewValidationError(fmt.Sprintf(
				"unexpected year %q on school %s", rec.Year, rec.SchoolID))
		}
		if !covered {
			expected[rec.Year] = true
		}
	}
	for year, covered := range expected {
		if !covered {
			return errors.NewValidationError(fmt.Sprintf(
				"configured year %q missing from output", year))
		}
	}
	return nil
}

// checkScope re-checks the district filter. Readers already filtered; a
// record from another district here means a reader regression.
func (v *Validator) checkScope(records []domain.CanonicalRecord) error {
	for _, rec := range records {
		if rec.DistrictID != v.districtID {
			return errors.NewValidationError(fmt.Sprintf(
				"school %s year %s carries district %q, expected %q",
				rec.SchoolID, rec.Year, rec.DistrictID, v.districtID))
		}
	}
	return nil
}

// measureCompleteness computes non-null percentages per field, overall and
// per year, and records a warning for every measure below the threshold.
func (v *Validator) measureCompleteness(records []domain.CanonicalRecord, log *domain.ObservationLog) []domain.FieldCompleteness {
	var out []domain.FieldCompleteness

	for _, field := range fieldAccessors {
		overall := domain.FieldCompleteness{Field: field.name}
		for _, rec := range records {
			overall.Total++
			if field.get(rec) != nil {
				overall.Populated++
			}
		}
		out = append(out, overall)

		for _, year := range sortedYears(v.years) {
			perYear := domain.FieldCompleteness{Field: field.name, Year: year}
			for _, rec := range records {
				if rec.Year != year {
					continue
				}
				perYear.Total++
				if field.get(rec) != nil {
					perYear.Populated++
				}
			}
			out = append(out, perYear)
		}
	}

	for _, c := range out {
		if c.Total == 0 || c.Percent() >= v.warnBelowPercent {
			continue
		}
		scope := "all years"
		if c.Year != "" {
			scope = string(c.Year)
		}
		v.logger.Warn("field completeness below threshold",
			slog.String("field", c.Field),
			slog.String("scope", scope),
			slog.Float64("percent", c.Percent()))
		log.Observe(domain.Observation{
			Severity: domain.SeverityWarning,
			Code:     domain.ObsLowCompleteness,
			Year:     c.Year,
			Detail: fmt.Sprintf("%s is %.1f%% complete for %s (%d of %d), threshold %.0f%%",
				c.Field, c.Percent(), scope, c.Populated, c.Total, v.warnBelowPercent),
		})
	}

	return out
}

func sortedYears(years []domain.YearLabel) []domain.YearLabel {
	out := make([]domain.YearLabel, len(years))
	copy(out, years)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
