package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger())
	logger := cli.SetupLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("fintrack exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Starting fintrack",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"chart_dir", cfg.ChartDir)

	be, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	opts := services.Options{
		AnalyticsWindow:  cfg.AnalyticsWindow(),
		ExportWindowDays: cfg.ExportWindowDays,
		SheetName:        cfg.GoogleExportSheetName,
		Logger:           logger,
	}

	amqpClient, err := cli.NewAMQPClient(logger, cfg)
	if err != nil {
		return err
	}
	if amqpClient != nil {
		defer amqpClient.Close()
		opts.Publisher = amqpClient
	}

	if cfg.GoogleSpreadsheetID != "" {
		var rows sheets.RowWriter
		rows, err = gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID)
		if err != nil {
			return err
		}
		opts.Sheets = rows
		logger.Info("Google Sheets export enabled", "sheet", cfg.GoogleExportSheetName)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	renderer := report.NewRenderer(report.Config{AppName: cfg.AppName})
	reports := services.NewReportService(be, renderer, services.NewChartStore(cfg.ChartDir), opts)
	ledger := services.NewLedgerService(be, reports, logger.WithComponent(log.ComponentStorage))

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      cfg.RateLimit,
	}, reports, ledger, be, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
