package exporter

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"edupulse/internal/errors"
	"edupulse/pkg/contracts/domain"
)

// DatasetSheet is the sheet name of the spreadsheet export.
const DatasetSheet = "Canonical"

// WorkbookWriter writes the canonical dataset as an xlsx workbook.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer instance
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteDataset writes the canonical records to a single-sheet workbook with
// the same columns and ordering as the CSV export. Null metrics stay empty
// cells so spreadsheet consumers see blanks, not zeros.
func (w *WorkbookWriter) WriteDataset(path string, records []domain.CanonicalRecord) error {
	w.logger.Info("writing canonical dataset workbook",
		slog.String("path", path),
		slog.Int("records", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DatasetSheet); err != nil {
		return errors.NewStorageError("failed to name dataset sheet", err)
	}

	for col, header := range DatasetHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.NewStorageError("failed to compute header cell", err)
		}
		if err := f.SetCellValue(DatasetSheet, cell, header); err != nil {
			return errors.NewStorageError("failed to write header cell", err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.SchoolName,
			rec.SchoolID,
			string(rec.Year),
			numericCell(rec.Enrollment),
			numericCell(rec.ValueAddedComposite),
			numericCell(rec.PerformanceIndexScore),
		}
		for col, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return errors.NewStorageError("failed to compute data cell", err)
			}
			if err := f.SetCellValue(DatasetSheet, cell, value); err != nil {
				return errors.NewStorageError("failed to write data cell", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save dataset workbook", err)
	}
	return nil
}

func numericCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
