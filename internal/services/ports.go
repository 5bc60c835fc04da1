package services

import (
	"context"

	"fintrack/internal/storage"
)

// Ports used by the services layer.
type (
	// ChartPublisher queues a background chart render for a user.
	ChartPublisher interface {
		PublishChartRender(ctx context.Context, userID string) error
	}

	// ChartRequester refreshes a user's chart, queued or inline.
	ChartRequester interface {
		RequestChart(ctx context.Context, userID string) (queued bool, err error)
	}

	// LedgerStore is the write side used by LedgerService.
	LedgerStore interface {
		storage.UserProvisioner
		storage.CategoryReader
		storage.TransactionWriter
	}
)
