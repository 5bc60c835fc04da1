package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// LedgerService records transactions and keeps the user's chart current.
type LedgerService struct {
	store  LedgerStore
	charts ChartRequester
	events *log.StructuredLogger
	logger *log.Logger
}

// NewLedgerService wires the store with an optional chart requester.
func NewLedgerService(store LedgerStore, charts ChartRequester, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		store:  store,
		charts: charts,
		events: log.NewStructuredLogger(logger),
		logger: logger,
	}
}

// Categories returns the user's categories, provisioning the user first.
func (s *LedgerService) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	if err := s.store.EnsureUser(ctx, userID, userID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return s.store.ListCategories(ctx, userID)
}

// AddTransaction saves n and then asks for a chart refresh. A failed refresh
// is logged and does not fail the call: the transaction is already stored.
func (s *LedgerService) AddTransaction(ctx context.Context, n core.NewTransaction) (int64, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}
	if err := s.store.EnsureUser(ctx, n.UserID, n.UserID); err != nil {
		return 0, fmt.Errorf("ensure user: %w", err)
	}
	id, err := s.store.AddTransaction(ctx, n)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	s.events.LogTransactionCreated(ctx, n.UserID, id, n.Type.String(), n.Amount.String())

	if s.charts == nil || n.Type != core.Expense {
		return id, nil
	}
	if _, err := s.charts.RequestChart(ctx, n.UserID); err != nil {
		s.logger.ErrorContext(ctx, "Chart refresh failed",
			log.FieldUserID, n.UserID,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
	}
	return id, nil
}
