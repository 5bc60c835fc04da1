package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

const renderTimeout = 2 * time.Minute

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger())
	logger := cli.SetupLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("chart-worker exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the chart worker")
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend does not share data with the web process; charts will be empty")
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Starting chart-worker", "queue", cfg.AMQPQueue, "chart_dir", cfg.ChartDir)

	be, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	client, err := cli.NewAMQPClient(logger, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	reports := services.NewReportService(be,
		report.NewRenderer(report.Config{AppName: cfg.AppName}),
		services.NewChartStore(cfg.ChartDir),
		services.Options{AnalyticsWindow: cfg.AnalyticsWindow(), Logger: logger})
	w := worker.NewChartWorker(reports, renderTimeout)

	err = client.ConsumeChartRender(ctx, w.HandleChartRender)
	if errors.Is(err, context.Canceled) {
		logger.Info("chart-worker stopped")
		return nil
	}
	return err
}
