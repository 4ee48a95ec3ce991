package schema

import (
	"strings"

	"edupulse/pkg/contracts/domain"
)

// Field names one semantic column a source reader must locate.
type Field string

const (
	FieldSchoolID   Field = "school_id"
	FieldSchoolName Field = "school_name"
	FieldDistrictID Field = "district_id"
	FieldValue      Field = "value"
)

// ColumnRule maps one semantic field to the header strings that identify it
// in a given source year. Matching is case-insensitive substring; aliases are
// consulted in order only to build the candidate set, selection among
// candidates is always leftmost column.
type ColumnRule struct {
	Field    Field
	Aliases  []string
	Required bool
}

// SourceSchema is the reconciliation contract for one (category, year)
// source file: which sheet to pick and how to find each semantic column.
type SourceSchema struct {
	Category     domain.Category
	Year         domain.YearLabel
	SheetAliases []string
	Columns      []ColumnRule
}

// Table holds every per-year source schema: category → year → schema.
// It exists to keep the volatile header drift out of the join logic.
type Table map[domain.Category]map[domain.YearLabel]SourceSchema

// Lookup returns the schema for one category and year.
func (t Table) Lookup(category domain.Category, year domain.YearLabel) (SourceSchema, bool) {
	byYear, ok := t[category]
	if !ok {
		return SourceSchema{}, false
	}
	s, ok := byYear[year]
	return s, ok
}

// Default builds the alias table for the given school years. The aliases
// encode the header drift observed in the portal extracts: identifier and
// name columns are stable-ish, the achievement value column embeds the
// abbreviated year, and enrollment headers gained a "Total" prefix over time.
func Default(years []domain.YearLabel) Table {
	t := Table{
		domain.CategoryEnrollment:  map[domain.YearLabel]SourceSchema{},
		domain.CategoryGrowth:      map[domain.YearLabel]SourceSchema{},
		domain.CategoryAchievement: map[domain.YearLabel]SourceSchema{},
	}

	for _, year := range years {
		t[domain.CategoryEnrollment][year] = SourceSchema{
			Category:     domain.CategoryEnrollment,
			Year:         year,
			SheetAliases: []string{"overview", "building"},
			Columns: []ColumnRule{
				{Field: FieldSchoolID, Aliases: []string{"building irn", "org irn"}, Required: true},
				{Field: FieldSchoolName, Aliases: []string{"building name", "organization name", "school name"}},
				{Field: FieldDistrictID, Aliases: []string{"district irn", "district number"}, Required: true},
				{Field: FieldValue, Aliases: []string{"total enrollment", "enrollment"}, Required: true},
			},
		}

		t[domain.CategoryGrowth][year] = SourceSchema{
			Category:     domain.CategoryGrowth,
			Year:         year,
			SheetAliases: []string{"va", "overall", "composite"},
			Columns: []ColumnRule{
				{Field: FieldSchoolID, Aliases: []string{"building irn", "org irn"}, Required: true},
				{Field: FieldSchoolName, Aliases: []string{"building name", "organization name", "school name"}},
				{Field: FieldDistrictID, Aliases: []string{"district irn", "district number"}, Required: true},
				{Field: FieldValue, Aliases: []string{"overall composite", "value-added composite", "value added composite", "composite"}, Required: true},
			},
		}

		t[domain.CategoryAchievement][year] = SourceSchema{
			Category:     domain.CategoryAchievement,
			Year:         year,
			SheetAliases: []string{"performance", "index"},
			Columns: []ColumnRule{
				{Field: FieldSchoolID, Aliases: []string{"building irn", "org irn"}, Required: true},
				{Field: FieldSchoolName, Aliases: []string{"building name", "organization name", "school name"}},
				{Field: FieldDistrictID, Aliases: []string{"district irn", "district number"}, Required: true},
				{Field: FieldValue, Aliases: []string{
					ShortYear(year) + " performance index score",
					"performance index score",
					"performance index",
				}, Required: true},
			},
		}
	}

	return t
}

// ShortYear abbreviates a year label the way portal headers do:
// "2015-2016" becomes "2015-16".
func ShortYear(year domain.YearLabel) string {
	parts := strings.SplitN(string(year), "-", 2)
	if len(parts) != 2 || len(parts[1]) < 2 {
		return string(year)
	}
	return parts[0] + "-" + parts[1][len(parts[1])-2:]
}
