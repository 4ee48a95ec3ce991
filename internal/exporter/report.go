package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"edupulse/internal/errors"
	"edupulse/pkg/contracts/domain"
)

// RenderReport renders the quality report as the human-readable text
// artifact. Rendering is a pure function of the report so the output is
// reproducible for a fixed report value.
func RenderReport(rep *domain.QualityReport) string {
	var b strings.Builder

	b.WriteString("District Data Quality Report\n")
	b.WriteString("============================\n\n")

	years := make([]string, 0, len(rep.Years))
	for _, y := range rep.Years {
		years = append(years, string(y))
	}

	fmt.Fprintf(&b, "Records:        %d\n", rep.TotalRecords)
	fmt.Fprintf(&b, "Unique schools: %d\n", rep.UniqueSchools)
	fmt.Fprintf(&b, "Years:          %s\n", strings.Join(years, ", "))
	fmt.Fprintf(&b, "Dropped rows:   %d\n\n", rep.DroppedRows)

	b.WriteString("Field completeness\n")
	b.WriteString("------------------\n")
	for _, c := range rep.Completeness {
		scope := "all years"
		if c.Year != "" {
			scope = string(c.Year)
		}
		fmt.Fprintf(&b, "%-24s %-10s %d/%d (%.1f%%)\n",
			c.Field, scope, c.Populated, c.Total, c.Percent())
	}

	b.WriteString("\nObservations\n")
	b.WriteString("------------\n")
	if len(rep.Observations) == 0 {
		b.WriteString("none\n")
	}
	for _, o := range rep.Observations {
		fmt.Fprintf(&b, "- [%s] %s", o.Severity, o.Code)
		if o.Category != "" {
			fmt.Fprintf(&b, " %s", o.Category)
		}
		if o.Year != "" {
			fmt.Fprintf(&b, " %s", o.Year)
		}
		fmt.Fprintf(&b, ": %s\n", o.Detail)
	}

	fmt.Fprintf(&b, "\nGenerated %s run %s\n",
		rep.GeneratedAt.UTC().Format(time.RFC3339), rep.RunID)

	return b.String()
}

// ReportWriter writes the quality report text artifact.
type ReportWriter struct {
	logger *slog.Logger
}

// NewReportWriter creates a new report writer instance
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{logger: logger}
}

// WriteReport renders the report and writes it to path.
func (w *ReportWriter) WriteReport(path string, rep *domain.QualityReport) error {
	w.logger.Info("writing quality report",
		slog.String("path", path),
		slog.Int("observations", len(rep.Observations)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err)
	}
	if err := os.WriteFile(path, []byte(RenderReport(rep)), 0644); err != nil {
		return errors.NewStorageError("failed to write quality report", err)
	}
	return nil
}
