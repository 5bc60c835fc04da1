package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// timestampLayout is how occurred_at is stored. Values are always UTC so
// lexical order matches chronological order.
const timestampLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := MigrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	slog.Debug("SQLite schema ready", "db_path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureUser creates the user when missing and seeds the default categories.
// Calling it again for an existing user is a no-op.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, id, name string) error {
	if id == "" {
		return core.ErrEmptyUser
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ensure user: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO users (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	seed := func(names []string, typ core.TransactionType) error {
		for _, n := range names {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO categories (user_id, name, type) VALUES (?, ?, ?)`,
				id, n, string(typ)); err != nil {
				return fmt.Errorf("seed category %s: %w", n, err)
			}
		}
		return nil
	}
	if err := seed(core.DefaultExpenseCategories, core.Expense); err != nil {
		return err
	}
	if err := seed(core.DefaultIncomeCategories, core.Income); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ensure user: %w", err)
	}

	slog.InfoContext(ctx, "User created with default categories",
		"user_id", id,
		"categories", len(core.DefaultExpenseCategories)+len(core.DefaultIncomeCategories))
	return nil
}

// ListTransactions returns the user's transactions dated at or after since,
// most recent first, with category names resolved.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, since time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.occurred_at, t.amount, t.type, c.name, t.description
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.occurred_at >= ?
		ORDER BY t.occurred_at DESC, t.id DESC`,
		userID, since.UTC().Format(timestampLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			occurredAt string
			amount     string
			typ        string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &occurredAt, &amount, &typ, &t.Category, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = time.ParseInLocation(timestampLayout, occurredAt, time.UTC); err != nil {
			return nil, fmt.Errorf("parse occurred_at of transaction %d: %w", t.ID, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount of transaction %d: %w", t.ID, err)
		}
		t.Type = core.TransactionType(typ)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListCategories returns the user's categories, expenses first, then by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type FROM categories
		WHERE user_id = ?
		ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c   core.Category
			typ string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// AddTransaction validates n against the user's categories and stores it.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, n core.NewTransaction) (int64, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}

	var categoryType string
	err := r.db.QueryRowContext(ctx,
		`SELECT type FROM categories WHERE id = ? AND user_id = ?`,
		n.CategoryID, n.UserID).Scan(&categoryType)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrUnknownCategory
	}
	if err != nil {
		return 0, fmt.Errorf("lookup category: %w", err)
	}
	if core.TransactionType(categoryType) != n.Type {
		return 0, core.ErrCategoryMismatch
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, category_id, type, amount, description, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.CategoryID, string(n.Type), n.Amount.String(), n.Description,
		n.Date.UTC().Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", n.UserID,
		"type", n.Type,
		"amount", n.Amount.String())
	return id, nil
}
