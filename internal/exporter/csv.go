package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"edupulse/internal/errors"
	"edupulse/pkg/contracts/domain"
)

// DatasetHeaders is the canonical column order shared by every export format.
var DatasetHeaders = []string{
	"school_name",
	"school_id",
	"year",
	"enrollment",
	"value_added_composite",
	"performance_index_score",
}

// CSVWriter writes the canonical dataset as delimited text.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteDataset writes the canonical records to path with a header row and a
// UTF-8 BOM for Excel compatibility. Records are written in the order given;
// the consolidator already sorted them, so unchanged input produces
// byte-identical output.
func (w *CSVWriter) WriteDataset(path string, records []domain.CanonicalRecord) error {
	w.logger.Info("writing canonical dataset CSV",
		slog.String("path", path),
		slog.Int("records", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create dataset CSV", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.NewStorageError("failed to write BOM", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(DatasetHeaders); err != nil {
		return errors.NewStorageError("failed to write header row", err)
	}
	for i, rec := range records {
		if err := writer.Write(recordFields(rec)); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadDataset reads a canonical dataset CSV back into records. Downstream
// consumers and the round-trip tests use this; numeric origin information
// (district scope) is not part of the file and is left empty.
func ReadDataset(path string) ([]domain.CanonicalRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open dataset CSV", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read dataset CSV", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError("dataset CSV is empty", nil)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) != len(DatasetHeaders) {
		return nil, errors.NewParsingError(fmt.Sprintf(
			"expected %d columns, got %d", len(DatasetHeaders), len(header)), nil)
	}
	for i, want := range DatasetHeaders {
		if header[i] != want {
			return nil, errors.NewParsingError(fmt.Sprintf(
				"unexpected column %d: %q", i, header[i]), nil)
		}
	}

	records := make([]domain.CanonicalRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(DatasetHeaders) {
			return nil, errors.NewParsingError(fmt.Sprintf(
				"row %d has %d columns", i+1, len(row)), nil)
		}
		enrollment, err := parseField(row[3])
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("row %d enrollment", i+1), err)
		}
		composite, err := parseField(row[4])
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("row %d value_added_composite", i+1), err)
		}
		index, err := parseField(row[5])
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("row %d performance_index_score", i+1), err)
		}
		records = append(records, domain.CanonicalRecord{
			SchoolName:            row[0],
			SchoolID:              row[1],
			Year:                  domain.YearLabel(row[2]),
			Enrollment:            enrollment,
			ValueAddedComposite:   composite,
			PerformanceIndexScore: index,
		})
	}
	return records, nil
}

// recordFields renders one record in DatasetHeaders order.
func recordFields(rec domain.CanonicalRecord) []string {
	return []string{
		rec.SchoolName,
		rec.SchoolID,
		string(rec.Year),
		formatNumeric(rec.Enrollment),
		formatNumeric(rec.ValueAddedComposite),
		formatNumeric(rec.PerformanceIndexScore),
	}
}

// formatNumeric renders a sparse numeric field: empty for null, shortest
// exact decimal otherwise.
func formatNumeric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseField is the inverse of formatNumeric.
func parseField(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
