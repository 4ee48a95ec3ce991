package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"edupulse/internal/config"
	"edupulse/internal/infrastructure"
	"edupulse/internal/operations"
	"edupulse/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration (defaults to config.yaml lookup)")
	outDir := flag.String("out", "", "override output directory")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	logger.Info("starting consolidation run",
		slog.String("version", contracts.Version),
		slog.String("district", cfg.District.ID),
		slog.Any("years", cfg.District.Years))

	pipeline := operations.NewPipeline(cfg, logger)
	state, err := pipeline.Run(context.Background())
	if err != nil {
		logger.Error("run failed, no canonical output written", "error", err)
		os.Exit(1)
	}

	logger.Info("run finished",
		slog.String("run_id", state.ID),
		slog.Int("records", len(state.Records)),
		slog.Int("observations", len(state.Report.Observations)),
		slog.String("dataset_csv", cfg.DatasetCSVPath()),
		slog.String("dataset_xlsx", cfg.DatasetXLSXPath()),
		slog.String("quality_report", cfg.ReportPath()))
}
