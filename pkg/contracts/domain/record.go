package domain

// Category identifies one of the three extract families published by the
// state education-reporting portal.
type Category string

const (
	CategoryEnrollment  Category = "enrollment"
	CategoryGrowth      Category = "growth"
	CategoryAchievement Category = "achievement"
)

// Categories lists all source categories in processing order.
var Categories = []Category{CategoryEnrollment, CategoryGrowth, CategoryAchievement}

// YearLabel identifies one school year, e.g. "2016-2017".
type YearLabel string

// NormalizedRow is the uniform row shape every source reader emits after
// schema reconciliation. It is created once per source row and never mutated.
type NormalizedRow struct {
	SchoolID   string
	SchoolName string
	DistrictID string
	Year       YearLabel
	Category   Category
	Value      *float64
}

// RecordKey is the join key of the canonical dataset.
type RecordKey struct {
	SchoolID string
	Year     YearLabel
}

// CanonicalRecord is one row of the consolidated district dataset: one
// (school, year) combination with whatever subset of the three metrics the
// sources reported. Sparse fields are expected and valid.
type CanonicalRecord struct {
	SchoolName            string    `json:"school_name"`
	SchoolID              string    `json:"school_id"`
	Year                  YearLabel `json:"year"`
	Enrollment            *float64  `json:"enrollment"`
	ValueAddedComposite   *float64  `json:"value_added_composite"`
	PerformanceIndexScore *float64  `json:"performance_index_score"`

	// DistrictID records the origin scope so the validator can re-check the
	// district filter. It is not one of the exported dataset columns.
	DistrictID string `json:"-"`
}

// Key returns the (school_id, year) join key for the record.
func (r CanonicalRecord) Key() RecordKey {
	return RecordKey{SchoolID: r.SchoolID, Year: r.Year}
}
