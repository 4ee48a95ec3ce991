package dataprocessing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"edupulse/internal/schema"
	"edupulse/internal/shared/testutil"
	"edupulse/pkg/contracts/domain"
)

const testDistrict = "043786"

var readerYears = []domain.YearLabel{"2015-2016", "2016-2017", "2017-2018"}

// writeWorkbook builds a one-sheet xlsx fixture.
func writeWorkbook(t *testing.T, path, sheetName string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheetName))
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cell, value))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func newTestReader(t *testing.T) *Reader {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewReader(schema.Default(readerYears), testDistrict, logger)
}

func TestReadSourceEnrollment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrollment_1617.xlsx")
	writeWorkbook(t, path, "Building_Overview", [][]string{
		{"Building Overview Report"},
		{},
		{"District IRN", "District Name", "Building IRN", "Building Name", "Enrollment"},
		{"043786", "Riverbend Local", "000123", "Adams Elementary", "450"},
		{"043786", "Riverbend Local", "000456", "Briggs Middle", "1,204"},
		{"099999", "Other City", "000789", "Elsewhere High", "800"},
	})

	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	rows, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryEnrollment,
		Year:     "2016-2017",
		Path:     path,
	}, log)
	require.NoError(t, err)

	// The other-district row is filtered by the scope check.
	require.Len(t, rows, 2)

	assert.Equal(t, "000123", rows[0].SchoolID)
	assert.Equal(t, "Adams Elementary", rows[0].SchoolName)
	assert.Equal(t, testDistrict, rows[0].DistrictID)
	assert.Equal(t, domain.YearLabel("2016-2017"), rows[0].Year)
	assert.Equal(t, domain.CategoryEnrollment, rows[0].Category)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 450.0, *rows[0].Value)

	require.NotNil(t, rows[1].Value)
	assert.Equal(t, 1204.0, *rows[1].Value)

	assert.Empty(t, log.All())
}

func TestReadSourceSentinelBecomesNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "va_1516.xlsx")
	writeWorkbook(t, path, "Overall_VA", [][]string{
		{"District IRN", "Building IRN", "Building Name", "Overall Composite"},
		{"043786", "000123", "Adams Elementary", "NC"},
		{"043786", "000456", "Briggs Middle", "-1.83"},
	})

	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	rows, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryGrowth,
		Year:     "2015-2016",
		Path:     path,
	}, log)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Value)
	require.NotNil(t, rows[1].Value)
	assert.Equal(t, -1.83, *rows[1].Value)

	assert.Equal(t, 1, log.Count(domain.ObsSentinelValue))
}

func TestReadSourceSheetFallbackIsObserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pi_1718.xlsx")
	// Sheet name matches no achievement alias.
	writeWorkbook(t, path, "Data", [][]string{
		{"District IRN", "Building IRN", "Building Name", "2017-18 Performance Index Score"},
		{"043786", "000123", "Adams Elementary", "93.4"},
	})

	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	rows, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryAchievement,
		Year:     "2017-2018",
		Path:     path,
	}, log)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 93.4, *rows[0].Value)

	require.Equal(t, 1, log.Count(domain.ObsSheetFallback))
	obs := log.All()[0]
	assert.Equal(t, domain.SeverityWarning, obs.Severity)
	assert.Contains(t, obs.Detail, "Data")
}

func TestReadSourceColumnAmbiguityIsObserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pi_1516.xlsx")
	writeWorkbook(t, path, "Performance_Index", [][]string{
		{"District IRN", "Building IRN", "Building Name", "2015-16 Performance Index Score", "Performance Index Letter Grade"},
		{"043786", "000123", "Adams Elementary", "88.1", "B"},
	})

	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	rows, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryAchievement,
		Year:     "2015-2016",
		Path:     path,
	}, log)
	require.NoError(t, err)

	// The leftmost matching column wins, deterministically.
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 88.1, *rows[0].Value)
	assert.Equal(t, 1, log.Count(domain.ObsColumnAmbiguity))
}

func TestReadSourceEmptyJoinKeyRowsPassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrollment_1516.xlsx")
	writeWorkbook(t, path, "Building_Overview", [][]string{
		{"District IRN", "District Name", "Building IRN", "Building Name", "Enrollment"},
		{"043786", "Riverbend Local", "", "Annex Program", "35"},
	})

	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	rows, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryEnrollment,
		Year:     "2015-2016",
		Path:     path,
	}, log)
	require.NoError(t, err)

	// Rows without an identifier are not dropped here; the consolidator
	// counts and drops them.
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].SchoolID)
	assert.Equal(t, "Annex Program", rows[0].SchoolName)
}

func TestReadSourceMissingFile(t *testing.T) {
	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	_, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryEnrollment,
		Year:     "2015-2016",
		Path:     filepath.Join(t.TempDir(), "nope.xlsx"),
	}, log)
	assert.Error(t, err)
}

func TestReadSourceMissingRequiredColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	writeWorkbook(t, path, "Building_Overview", [][]string{
		{"District IRN", "Building Name", "Headcount"},
		{"043786", "Adams Elementary", "450"},
	})

	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	_, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryEnrollment,
		Year:     "2015-2016",
		Path:     path,
	}, log)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "header resolution failed")
}

func TestReadSourceUnknownYear(t *testing.T) {
	reader := newTestReader(t)
	log := &domain.ObservationLog{}
	_, err := reader.ReadSource(SourceFile{
		Category: domain.CategoryEnrollment,
		Year:     "2019-2020",
		Path:     "irrelevant.xlsx",
	}, log)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no source schema")
}
