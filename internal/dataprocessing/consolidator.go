package dataprocessing

import (
	"fmt"
	"log/slog"
	"sort"

	"edupulse/pkg/contracts/domain"
)

// namePrecedence ranks categories by how much their school_name spelling is
// trusted when sources disagree. This is a policy choice, not a derived
// fact: the enrollment extract spells names most carefully, then
// achievement, then growth.
var namePrecedence = map[domain.Category]int{
	domain.CategoryEnrollment:  0,
	domain.CategoryAchievement: 1,
	domain.CategoryGrowth:      2,
}

// Consolidator performs the full outer join of the three normalized row sets
// on (school_id, year).
type Consolidator struct {
	districtID string
	logger     *slog.Logger
}

// NewConsolidator creates a consolidator scoped to one district.
func NewConsolidator(districtID string, logger *slog.Logger) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{districtID: districtID, logger: logger}
}

// Consolidate joins all normalized rows into the canonical record set. A
// school present in only one category still produces a record with the other
// metrics null: partial reporting must not drop a school from the
// consolidated view. Rows with an empty school identifier are dropped,
// counted, and reported, never silently discarded. Output ordering is stable
// (school_name, year, school_id) so repeated runs diff cleanly.
func (c *Consolidator) Consolidate(rows []domain.NormalizedRow, sink domain.ObservationSink) []domain.CanonicalRecord {
	type entry struct {
		record   domain.CanonicalRecord
		nameRank int
	}

	index := make(map[domain.RecordKey]*entry)
	dropped := 0

	for _, row := range rows {
		if row.SchoolID == "" {
			dropped++
			sink.Observe(domain.Observation{
				Severity: domain.SeverityWarning,
				Code:     domain.ObsEmptyJoinKey,
				Category: row.Category,
				Year:     row.Year,
				Detail:   fmt.Sprintf("row named %q carried no school identifier, dropped", row.SchoolName),
			})
			continue
		}

		key := domain.RecordKey{SchoolID: row.SchoolID, Year: row.Year}
		e, ok := index[key]
		if !ok {
			e = &entry{
				record: domain.CanonicalRecord{
					SchoolID:   row.SchoolID,
					Year:       row.Year,
					DistrictID: row.DistrictID,
				},
				nameRank: len(namePrecedence),
			}
			index[key] = e
		}

		switch row.Category {
		case domain.CategoryEnrollment:
			e.record.Enrollment = row.Value
		case domain.CategoryGrowth:
			e.record.ValueAddedComposite = row.Value
		case domain.CategoryAchievement:
			e.record.PerformanceIndexScore = row.Value
		}

		if row.SchoolName != "" {
			if rank := namePrecedence[row.Category]; rank < e.nameRank {
				e.record.SchoolName = row.SchoolName
				e.nameRank = rank
			}
		}
	}

	records := make([]domain.CanonicalRecord, 0, len(index))
	for _, e := range index {
		records = append(records, e.record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].SchoolName != records[j].SchoolName {
			return records[i].SchoolName < records[j].SchoolName
		}
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].SchoolID < records[j].SchoolID
	})

	c.logger.Info("consolidation complete",
		slog.Int("input_rows", len(rows)),
		slog.Int("records", len(records)),
		slog.Int("dropped_rows", dropped))

	return records
}
