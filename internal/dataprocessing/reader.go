package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"edupulse/internal/errors"
	"edupulse/internal/schema"
	"edupulse/pkg/contracts/domain"
)

// SourceFile names one spreadsheet contribution: a category, the school year
// it reports, and the resolved path configuration assigned to it.
type SourceFile struct {
	Category domain.Category
	Year     domain.YearLabel
	Path     string
}

// Reader parses portal source workbooks into normalized rows. One Reader
// serves all three categories; the schema table supplies the per-year
// reconciliation contract. Files are opened one at a time and always closed
// before the next is touched.
type Reader struct {
	schemas    schema.Table
	districtID string
	logger     *slog.Logger
}

// NewReader creates a source reader scoped to one district.
func NewReader(schemas schema.Table, districtID string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		schemas:    schemas,
		districtID: districtID,
		logger:     logger,
	}
}

// ReadSource parses one source workbook into normalized rows for its category
// and year. Rows for other districts are filtered out here; sheet fallbacks,
// column ambiguities, and sentinel coercions are reported through sink. A
// returned error means this file contributes nothing, it never aborts the
// other sources.
func (r *Reader) ReadSource(src SourceFile, sink domain.ObservationSink) ([]domain.NormalizedRow, error) {
	spec, ok := r.schemas.Lookup(src.Category, src.Year)
	if !ok {
		return nil, errors.NewConfigError(
			fmt.Sprintf("no source schema for %s/%s", src.Category, src.Year), nil)
	}

	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("failed to open %s workbook for %s", src.Category, src.Year), err)
	}
	defer f.Close()

	sheetName, fellBack, err := schema.SelectSheet(spec, f.GetSheetList())
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("no usable sheet in %s workbook for %s", src.Category, src.Year), err)
	}
	if fellBack {
		r.logger.Warn("no sheet alias matched, using first sheet",
			slog.String("category", string(src.Category)),
			slog.String("year", string(src.Year)),
			slog.String("sheet", sheetName))
		sink.Observe(domain.Observation{
			Severity: domain.SeverityWarning,
			Code:     domain.ObsSheetFallback,
			Category: src.Category,
			Year:     src.Year,
			Detail:   fmt.Sprintf("no sheet alias matched, fell back to first sheet %q", sheetName),
		})
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("failed to read sheet %q", sheetName), err)
	}

	res, err := schema.Resolve(spec, rows)
	if err != nil {
		return nil, errors.NewParsingError("header resolution failed", err)
	}
	for _, amb := range res.Ambiguities {
		r.logger.Warn("column resolution ambiguity",
			slog.String("category", string(src.Category)),
			slog.String("year", string(src.Year)),
			slog.String("field", string(amb.Field)),
			slog.String("chosen", amb.Chosen))
		sink.Observe(domain.Observation{
			Severity: domain.SeverityWarning,
			Code:     domain.ObsColumnAmbiguity,
			Category: src.Category,
			Year:     src.Year,
			Detail: fmt.Sprintf("field %s matched columns %s, picked %q",
				amb.Field, strings.Join(amb.Candidates, ", "), amb.Chosen),
		})
	}

	normalized := make([]domain.NormalizedRow, 0, len(rows))
	for i := res.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]

		id := cellAt(row, res.Columns, schema.FieldSchoolID)
		name := cellAt(row, res.Columns, schema.FieldSchoolName)
		rawValue := cellAt(row, res.Columns, schema.FieldValue)
		district := cellAt(row, res.Columns, schema.FieldDistrictID)

		if id == "" && name == "" && rawValue == "" {
			continue // padding row below the data block
		}

		// Scope filter: string comparison, leading zeros are significant.
		if district != r.districtID {
			continue
		}

		value := ParseNumericCell(rawValue)
		if value == nil && rawValue != "" {
			sink.Observe(domain.Observation{
				Severity: domain.SeverityInfo,
				Code:     domain.ObsSentinelValue,
				Category: src.Category,
				Year:     src.Year,
				Detail:   fmt.Sprintf("school %q reported %q, coerced to null", id, rawValue),
			})
		}

		normalized = append(normalized, domain.NormalizedRow{
			SchoolID:   id,
			SchoolName: name,
			DistrictID: district,
			Year:       src.Year,
			Category:   src.Category,
			Value:      value,
		})
	}

	r.logger.Info("source parsed",
		slog.String("category", string(src.Category)),
		slog.String("year", string(src.Year)),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(normalized)))

	return normalized, nil
}

// cellAt returns the trimmed cell for a resolved field, tolerating the short
// rows excelize produces when trailing cells are empty.
func cellAt(row []string, columns map[schema.Field]int, field schema.Field) string {
	idx, ok := columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
