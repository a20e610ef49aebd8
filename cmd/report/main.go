// Command report runs the reporting pipeline once over local feed files
// and writes the full report to disk, no server required.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"enrollapi/internal/config"
	"enrollapi/internal/exporter"
	"enrollapi/internal/infrastructure"
	"enrollapi/internal/services"
)

func main() {
	var (
		dataDir = flag.String("data", "", "feed directory (overrides config)")
		output  = flag.String("out", "enrollment-report.xlsx", "output file (.xlsx or .csv)")
	)
	flag.Parse()

	if err := run(*dataDir, *output); err != nil {
		slog.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dataDir, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		cfg.Feeds.DataDir = dataDir
		cfg.Feeds.ApplicationURL = ""
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	metrics := infrastructure.NewMetrics(prometheus.NewRegistry())
	service, err := services.NewDashboardService(cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("create dashboard service: %w", err)
	}

	data, err := service.Run(context.Background())
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	report := exporter.BuildReport(data)
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(output)) {
	case ".csv":
		err = exporter.WriteCSV(f, report)
	default:
		err = exporter.WriteXLSX(f, report)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("report written",
		slog.String("path", output),
		slog.String("semester", data.Semester),
		slog.Float64("ntr_total", data.NTR.TotalNTR))
	return nil
}
