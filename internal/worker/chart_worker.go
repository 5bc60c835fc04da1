package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
)

// ChartRenderer redraws one user's spending chart.
type ChartRenderer interface {
	RenderChart(ctx context.Context, userID string) (path string, ok bool, err error)
}

// ChartWorker handles chart render requests delivered over AMQP.
type ChartWorker struct {
	renderer ChartRenderer
	timeout  time.Duration
}

// NewChartWorker bounds each render by timeout; zero means no limit.
func NewChartWorker(renderer ChartRenderer, timeout time.Duration) *ChartWorker {
	return &ChartWorker{renderer: renderer, timeout: timeout}
}

// HandleChartRender renders the chart for the message's user. A returned
// error makes the consumer requeue the message.
func (w *ChartWorker) HandleChartRender(ctx context.Context, msg *amqp.ChartRenderMessage) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	slog.InfoContext(ctx, "Processing chart render message",
		"component", "worker",
		"user_id", msg.UserID,
		"requested_at", msg.Timestamp)

	path, ok, err := w.renderer.RenderChart(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("render chart for %s: %w", msg.UserID, err)
	}

	if !ok {
		slog.InfoContext(ctx, "No spending to chart, stale chart removed",
			"component", "worker",
			"user_id", msg.UserID)
		return nil
	}
	slog.InfoContext(ctx, "Chart rendered",
		"component", "worker",
		"user_id", msg.UserID,
		"path", path,
		"duration", time.Since(start).String())
	return nil
}
