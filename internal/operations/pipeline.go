package operations

import (
	"context"
	"fmt"
	"log/slog"

	"edupulse/internal/config"
	"edupulse/internal/dataprocessing"
	"edupulse/internal/exporter"
	"edupulse/internal/files"
	"edupulse/internal/infrastructure"
	"edupulse/internal/schema"
	"edupulse/internal/validation"
	"edupulse/pkg/contracts/domain"
)

// Pipeline wires the sequential stages of one consolidation run:
// Readers → Consolidator → Validator → Exporter.
type Pipeline struct {
	logger *slog.Logger
	stages []Stage
}

// NewPipeline builds a pipeline from the loaded configuration.
func NewPipeline(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	years := cfg.YearLabels()
	schemas := schema.Default(years)
	checker := files.NewChecker(logger)

	reader := dataprocessing.NewReader(schemas, cfg.District.ID, logger)
	consolidator := dataprocessing.NewConsolidator(cfg.District.ID, logger)
	validator := validation.New(cfg.District.ID, years, cfg.Quality.CompletenessWarnPercent, logger)

	return &Pipeline{
		logger: logger,
		stages: []Stage{
			NewReadSourcesStage(reader, checker, sourceList(cfg), logger),
			NewConsolidateStage(consolidator),
			NewValidateStage(validator),
			NewExportStage(
				exporter.NewCSVWriter(logger),
				exporter.NewWorkbookWriter(logger),
				exporter.NewReportWriter(logger),
				checker,
				cfg.DatasetCSVPath(),
				cfg.DatasetXLSXPath(),
				cfg.ReportPath(),
			),
		},
	}
}

// Run executes the stages strictly in order and returns the final run state.
// A stage error is fatal: later stages never run, so invalid canonical
// output is never written.
func (p *Pipeline) Run(ctx context.Context) (*RunState, error) {
	state := NewRunState()
	ctx = infrastructure.WithRunID(ctx, state.ID)

	p.logger.InfoContext(ctx, "pipeline starting",
		slog.Int("stages", len(p.stages)))

	for _, stage := range p.stages {
		stageState := state.TrackStage(stage.ID(), stage.Name())
		stageState.Start()

		p.logger.InfoContext(ctx, "stage starting",
			slog.String("stage", stage.ID()))

		if err := stage.Execute(ctx, state); err != nil {
			stageState.Fail(err)
			p.logger.ErrorContext(ctx, "stage failed",
				slog.String("stage", stage.ID()),
				slog.Duration("duration", stageState.Duration()),
				slog.String("error", err.Error()))
			return state, fmt.Errorf("stage %s: %w", stage.ID(), err)
		}

		stageState.Complete()
		p.logger.InfoContext(ctx, "stage completed",
			slog.String("stage", stage.ID()),
			slog.Duration("duration", stageState.Duration()))
	}

	p.logger.InfoContext(ctx, "pipeline completed",
		slog.Int("records", len(state.Records)))
	return state, nil
}

// sourceList flattens the configured category/year path maps into parse
// order: category order, then the configured year order within a category.
func sourceList(cfg *config.Config) []dataprocessing.SourceFile {
	var sources []dataprocessing.SourceFile
	for _, category := range domain.Categories {
		paths := cfg.SourcePaths(category)
		for _, year := range cfg.District.Years {
			path, ok := paths[year]
			if !ok {
				continue
			}
			sources = append(sources, dataprocessing.SourceFile{
				Category: category,
				Year:     domain.YearLabel(year),
				Path:     path,
			})
		}
	}
	return sources
}
