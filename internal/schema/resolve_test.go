package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edupulse/pkg/contracts/domain"
)

var testYears = []domain.YearLabel{"2015-2016", "2016-2017", "2017-2018"}

func TestSelectSheet(t *testing.T) {
	spec := SourceSchema{
		Category:     domain.CategoryEnrollment,
		Year:         "2015-2016",
		SheetAliases: []string{"overview", "building"},
	}

	tests := []struct {
		name        string
		sheets      []string
		expectSheet string
		expectFell  bool
		expectError bool
	}{
		{
			name:        "alias match",
			sheets:      []string{"Notes", "Building_Overview"},
			expectSheet: "Building_Overview",
		},
		{
			name:        "case insensitive match",
			sheets:      []string{"BUILDING OVERVIEW"},
			expectSheet: "BUILDING OVERVIEW",
		},
		{
			name:        "fallback to first sheet",
			sheets:      []string{"Sheet1", "Sheet2"},
			expectSheet: "Sheet1",
			expectFell:  true,
		},
		{
			name:        "no sheets",
			sheets:      nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, fellBack, err := SelectSheet(spec, tt.sheets)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectSheet, sheet)
			assert.Equal(t, tt.expectFell, fellBack)
		})
	}
}

func TestResolveFindsHeaderBelowBanner(t *testing.T) {
	table := Default(testYears)
	spec, ok := table.Lookup(domain.CategoryEnrollment, "2016-2017")
	require.True(t, ok)

	rows := [][]string{
		{"Building Overview Report"},
		{},
		{"District IRN", "District Name", "Building IRN", "Building Name", "Enrollment"},
		{"043786", "Riverbend Local", "000123", "Adams Elementary", "450"},
	}

	res, err := Resolve(spec, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, res.HeaderRow)
	assert.Equal(t, 0, res.Columns[FieldDistrictID])
	assert.Equal(t, 2, res.Columns[FieldSchoolID])
	assert.Equal(t, 3, res.Columns[FieldSchoolName])
	assert.Equal(t, 4, res.Columns[FieldValue])
	assert.Empty(t, res.Ambiguities)
}

func TestResolveMissingRequiredColumn(t *testing.T) {
	table := Default(testYears)
	spec, ok := table.Lookup(domain.CategoryGrowth, "2015-2016")
	require.True(t, ok)

	// No composite column anywhere.
	rows := [][]string{
		{"District IRN", "Building IRN", "Building Name"},
		{"043786", "000123", "Adams Elementary"},
	}

	_, err := Resolve(spec, rows)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required columns")
}

func TestResolveAmbiguityPicksLeftmost(t *testing.T) {
	table := Default(testYears)
	spec, ok := table.Lookup(domain.CategoryAchievement, "2015-2016")
	require.True(t, ok)

	rows := [][]string{
		{"District IRN", "Building IRN", "Building Name", "2015-16 Performance Index Score", "Performance Index Letter Grade"},
	}

	res, err := Resolve(spec, rows)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Columns[FieldValue])
	require.Len(t, res.Ambiguities, 1)
	amb := res.Ambiguities[0]
	assert.Equal(t, FieldValue, amb.Field)
	assert.Equal(t, "2015-16 Performance Index Score", amb.Chosen)
	assert.Len(t, amb.Candidates, 2)
}

func TestResolveHeaderBeyondScanLimit(t *testing.T) {
	table := Default(testYears)
	spec, ok := table.Lookup(domain.CategoryEnrollment, "2015-2016")
	require.True(t, ok)

	rows := make([][]string, 0, maxHeaderScan+2)
	for i := 0; i < maxHeaderScan; i++ {
		rows = append(rows, []string{"banner"})
	}
	rows = append(rows, []string{"District IRN", "Building IRN", "Building Name", "Enrollment"})

	_, err := Resolve(spec, rows)
	assert.Error(t, err)
}

func TestDefaultCoversAllCategoriesAndYears(t *testing.T) {
	table := Default(testYears)

	for _, category := range domain.Categories {
		for _, year := range testYears {
			spec, ok := table.Lookup(category, year)
			require.True(t, ok, "missing schema for %s/%s", category, year)
			assert.NotEmpty(t, spec.SheetAliases)
			assert.NotEmpty(t, spec.Columns)
		}
	}

	_, ok := table.Lookup(domain.CategoryEnrollment, "2019-2020")
	assert.False(t, ok)
}

func TestShortYear(t *testing.T) {
	assert.Equal(t, "2015-16", ShortYear("2015-2016"))
	assert.Equal(t, "2017-18", ShortYear("2017-2018"))
	assert.Equal(t, "2018", ShortYear("2018"))
}
