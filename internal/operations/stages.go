package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"edupulse/internal/dataprocessing"
	"edupulse/internal/exporter"
	"edupulse/internal/files"
	"edupulse/internal/validation"
	"edupulse/pkg/contracts/domain"
)

// ReadSourcesStage parses every configured source workbook. Failures are
// isolated per file: a missing or unparseable source is recorded and the
// stage moves on, it never fabricates rows for the failed source.
type ReadSourcesStage struct {
	reader  *dataprocessing.Reader
	checker *files.Checker
	sources []dataprocessing.SourceFile
	logger  *slog.Logger
}

// NewReadSourcesStage creates the source reading stage.
func NewReadSourcesStage(reader *dataprocessing.Reader, checker *files.Checker, sources []dataprocessing.SourceFile, logger *slog.Logger) *ReadSourcesStage {
	return &ReadSourcesStage{reader: reader, checker: checker, sources: sources, logger: logger}
}

func (s *ReadSourcesStage) ID() string   { return "read_sources" }
func (s *ReadSourcesStage) Name() string { return "Read Sources" }

// Execute parses each source in category order, then year order.
func (s *ReadSourcesStage) Execute(ctx context.Context, state *RunState) error {
	for _, src := range s.sources {
		if err := s.checker.CheckSource(src.Path); err != nil {
			s.logger.WarnContext(ctx, "source file unavailable",
				slog.String("category", string(src.Category)),
				slog.String("year", string(src.Year)),
				slog.String("path", src.Path),
				slog.String("error", err.Error()))
			if siblings, listErr := s.checker.FindExcelFiles(filepath.Dir(src.Path)); listErr == nil {
				s.logger.DebugContext(ctx, "spreadsheets present in source directory",
					slog.String("dir", filepath.Dir(src.Path)),
					slog.String("files", strings.Join(siblings, ", ")))
			}
			state.Observations.Observe(domain.Observation{
				Severity: domain.SeverityWarning,
				Code:     domain.ObsMissingSource,
				Category: src.Category,
				Year:     src.Year,
				Detail:   err.Error(),
			})
			continue
		}

		rows, err := s.reader.ReadSource(src, state.Observations)
		if err != nil {
			s.logger.WarnContext(ctx, "source file failed to parse",
				slog.String("category", string(src.Category)),
				slog.String("year", string(src.Year)),
				slog.String("path", src.Path),
				slog.String("error", err.Error()))
			state.Observations.Observe(domain.Observation{
				Severity: domain.SeverityWarning,
				Code:     domain.ObsSourceFailed,
				Category: src.Category,
				Year:     src.Year,
				Detail:   err.Error(),
			})
			continue
		}
		state.Rows = append(state.Rows, rows...)
	}

	s.logger.InfoContext(ctx, "all sources read",
		slog.Int("sources", len(s.sources)),
		slog.Int("rows", len(state.Rows)))
	return nil
}

// ConsolidateStage outer-joins the normalized rows into canonical records.
type ConsolidateStage struct {
	consolidator *dataprocessing.Consolidator
}

// NewConsolidateStage creates the consolidation stage.
func NewConsolidateStage(consolidator *dataprocessing.Consolidator) *ConsolidateStage {
	return &ConsolidateStage{consolidator: consolidator}
}

func (s *ConsolidateStage) ID() string   { return "consolidate" }
func (s *ConsolidateStage) Name() string { return "Consolidate" }

func (s *ConsolidateStage) Execute(ctx context.Context, state *RunState) error {
	state.Records = s.consolidator.Consolidate(state.Rows, state.Observations)
	return nil
}

// ValidateStage checks invariants and assembles the quality report. A
// returned error is fatal: the run halts and nothing is exported.
type ValidateStage struct {
	validator *validation.Validator
}

// NewValidateStage creates the validation stage.
func NewValidateStage(validator *validation.Validator) *ValidateStage {
	return &ValidateStage{validator: validator}
}

func (s *ValidateStage) ID() string   { return "validate" }
func (s *ValidateStage) Name() string { return "Validate" }

func (s *ValidateStage) Execute(ctx context.Context, state *RunState) error {
	report, err := s.validator.Validate(state.ID, state.Records, state.Observations)
	if err != nil {
		return err
	}
	state.Report = report
	return nil
}

// ExportStage writes the canonical dataset (CSV and workbook) and the
// quality report. It only ever runs after validation passed.
type ExportStage struct {
	csv      *exporter.CSVWriter
	workbook *exporter.WorkbookWriter
	report   *exporter.ReportWriter
	checker  *files.Checker

	csvPath      string
	workbookPath string
	reportPath   string
}

// NewExportStage creates the export stage.
func NewExportStage(csv *exporter.CSVWriter, workbook *exporter.WorkbookWriter, report *exporter.ReportWriter, checker *files.Checker, csvPath, workbookPath, reportPath string) *ExportStage {
	return &ExportStage{
		csv:          csv,
		workbook:     workbook,
		report:       report,
		checker:      checker,
		csvPath:      csvPath,
		workbookPath: workbookPath,
		reportPath:   reportPath,
	}
}

func (s *ExportStage) ID() string   { return "export" }
func (s *ExportStage) Name() string { return "Export" }

func (s *ExportStage) Execute(ctx context.Context, state *RunState) error {
	if state.Report == nil {
		return fmt.Errorf("export reached without a validated report")
	}
	if err := s.checker.EnsureOutputDir(filepath.Dir(s.csvPath)); err != nil {
		return err
	}
	if err := s.csv.WriteDataset(s.csvPath, state.Records); err != nil {
		return err
	}
	if err := s.workbook.WriteDataset(s.workbookPath, state.Records); err != nil {
		return err
	}
	return s.report.WriteReport(s.reportPath, state.Report)
}
