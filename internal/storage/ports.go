package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Ports implemented by every data backend.
type (
	// TransactionSource returns a user's transactions dated at or after since,
	// most recent first, with category names resolved.
	TransactionSource interface {
		ListTransactions(ctx context.Context, userID string, since time.Time) ([]core.Transaction, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	}

	// TransactionWriter rejects an unknown type, a negative amount, or a
	// category that is not the user's own or does not match the type.
	TransactionWriter interface {
		AddTransaction(ctx context.Context, n core.NewTransaction) (int64, error)
	}

	// UserProvisioner creates a user on first sight and seeds default categories.
	UserProvisioner interface {
		EnsureUser(ctx context.Context, id, name string) error
	}
)
