package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ErrSheetsDisabled is returned by ExportToSheets when no spreadsheet is configured.
var ErrSheetsDisabled = sheets.ErrNotConfigured

const (
	DefaultAnalyticsWindow  = 180 * 24 * time.Hour
	DefaultExportWindowDays = 30
	DefaultSheetName        = "Transactions"

	recentWindowDays = 30
)

// Options configures a ReportService. Zero values select the defaults.
type Options struct {
	AnalyticsWindow  time.Duration
	ExportWindowDays int
	SheetName        string

	// Now is the clock used for windows and filenames.
	Now func() time.Time

	// Publisher queues chart renders; nil renders inline.
	Publisher ChartPublisher
	// Sheets receives ExportToSheets rows; nil disables the export.
	Sheets sheets.RowWriter

	Logger *log.Logger
}

// Artifact is a rendered download.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService turns a user's stored transactions into analytics, charts
// and exports.
type ReportService struct {
	source   storage.TransactionSource
	renderer *report.Renderer
	charts   *ChartStore
	opts     Options
	logger   *log.Logger
	events   *log.StructuredLogger
}

func NewReportService(source storage.TransactionSource, renderer *report.Renderer, charts *ChartStore, opts Options) *ReportService {
	if opts.AnalyticsWindow <= 0 {
		opts.AnalyticsWindow = DefaultAnalyticsWindow
	}
	if opts.ExportWindowDays <= 0 {
		opts.ExportWindowDays = DefaultExportWindowDays
	}
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentReport)
	return &ReportService{
		source:   source,
		renderer: renderer,
		charts:   charts,
		opts:     opts,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
	}
}

func (s *ReportService) now() time.Time {
	return s.opts.Now().UTC()
}

func (s *ReportService) window(ctx context.Context, userID string, since time.Time) ([]core.Transaction, error) {
	if userID == "" {
		return nil, core.ErrEmptyUser
	}
	txs, err := s.source.ListTransactions(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Analytics aggregates the analytics window. Transactions are fed oldest
// first so the monthly series read chronologically.
func (s *ReportService) Analytics(ctx context.Context, userID string) (core.AnalyticsSummary, error) {
	txs, err := s.window(ctx, userID, s.now().Add(-s.opts.AnalyticsWindow))
	if err != nil {
		return core.AnalyticsSummary{}, err
	}
	summary := analytics.Aggregate(oldestFirst(txs))
	s.logger.DebugContext(ctx, "Analytics aggregated",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpAggregate,
		log.FieldRows, summary.TotalTransactions)
	return summary, nil
}

// Export renders the last days of transactions in format f. days <= 0
// selects the configured export window.
func (s *ReportService) Export(ctx context.Context, userID string, f report.Format, days int) (Artifact, error) {
	if days <= 0 {
		days = s.opts.ExportWindowDays
	}
	now := s.now()
	txs, err := s.window(ctx, userID, now.AddDate(0, 0, -days))
	if err != nil {
		return Artifact{}, err
	}
	body, err := s.renderer.Render(f, txs)
	if err != nil {
		return Artifact{}, err
	}
	s.events.LogRender(ctx, userID, string(f), len(txs), len(body))
	return Artifact{
		Filename:    report.ExportFilename(s.renderer.AppName(), now, f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

// RenderChart redraws the user's spending chart over the analytics window.
// ok is false when there is no spending to draw.
func (s *ReportService) RenderChart(ctx context.Context, userID string) (path string, ok bool, err error) {
	path, png, err := s.renderChart(ctx, userID)
	return path, png != nil, err
}

func (s *ReportService) renderChart(ctx context.Context, userID string) (string, []byte, error) {
	if userID == "" {
		return "", nil, core.ErrEmptyUser
	}
	return s.charts.Store(ctx, userID, func() ([]byte, error) {
		txs, err := s.window(ctx, userID, s.now().Add(-s.opts.AnalyticsWindow))
		if err != nil {
			return nil, err
		}
		png, err := s.renderer.SpendingPie(txs)
		if err != nil {
			return nil, err
		}
		if png != nil {
			s.events.LogRender(ctx, userID, string(report.FormatPNG), len(txs), len(png))
		}
		return png, nil
	})
}

// Chart redraws the user's chart from the current window and returns it.
// It returns nil bytes when the user has no spending.
func (s *ReportService) Chart(ctx context.Context, userID string) ([]byte, error) {
	_, png, err := s.renderChart(ctx, userID)
	return png, err
}

// RequestChart queues a chart render when a publisher is configured. It falls
// back to rendering inline when there is none or publishing fails.
func (s *ReportService) RequestChart(ctx context.Context, userID string) (queued bool, err error) {
	if s.opts.Publisher != nil {
		err := s.opts.Publisher.PublishChartRender(ctx, userID)
		if err == nil {
			return true, nil
		}
		s.logger.WarnContext(ctx, "Chart render publish failed, rendering inline",
			log.FieldUserID, userID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err.Error())
	}
	if _, _, err := s.RenderChart(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// Dashboard summarizes the current month and lists the latest transactions of
// the last 30 days.
func (s *ReportService) Dashboard(ctx context.Context, userID string) (core.DashboardSummary, error) {
	now := s.now()
	month := core.MonthKeyOf(now)
	recentSince := now.AddDate(0, 0, -recentWindowDays)
	since := month.Start(time.UTC)
	if recentSince.Before(since) {
		since = recentSince
	}

	txs, err := s.window(ctx, userID, since)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	summary := core.Dashboard(month, txs)
	for i, t := range summary.Recent {
		if t.Date.Before(recentSince) {
			summary.Recent = summary.Recent[:i]
			break
		}
	}
	return summary, nil
}

// ExportToSheets replaces the configured sheet tab with the export window.
func (s *ReportService) ExportToSheets(ctx context.Context, userID string, days int) (int, error) {
	if s.opts.Sheets == nil {
		return 0, ErrSheetsDisabled
	}
	if days <= 0 {
		days = s.opts.ExportWindowDays
	}
	txs, err := s.window(ctx, userID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, report.Columns)
	for _, t := range report.SortMostRecentFirst(txs) {
		rows = append(rows, report.Record(t))
	}
	written, err := s.opts.Sheets.ReplaceRows(ctx, s.opts.SheetName, rows)
	if err != nil {
		return 0, fmt.Errorf("export to sheets: %w", err)
	}
	s.events.LogExport(ctx, userID, s.opts.SheetName, days, len(txs))
	return written, nil
}

func oldestFirst(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		out[len(txs)-1-i] = t
	}
	return out
}
