package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "fintrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func categoryID(t *testing.T, repo *SQLiteRepository, user, name string) int64 {
	t.Helper()
	cats, err := repo.ListCategories(context.Background(), user)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	for _, c := range cats {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not found in %v", name, cats)
	return 0
}

func TestEnsureUserSeedsOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.EnsureUser(ctx, "u1", "Ada"); err != nil {
			t.Fatalf("ensure user (call %d): %v", i, err)
		}
	}

	cats, err := repo.ListCategories(ctx, "u1")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	want := len(core.DefaultExpenseCategories) + len(core.DefaultIncomeCategories)
	if len(cats) != want {
		t.Fatalf("got %d categories, want %d", len(cats), want)
	}
	if cats[0].Type != core.Expense || cats[len(cats)-1].Type != core.Income {
		t.Errorf("expected expense categories first, got %v ... %v", cats[0], cats[len(cats)-1])
	}

	if err := repo.EnsureUser(ctx, "", ""); !errors.Is(err, core.ErrEmptyUser) {
		t.Errorf("empty user: got %v", err)
	}
}

func TestAddAndListTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.EnsureUser(ctx, "u1", ""); err != nil {
		t.Fatal(err)
	}
	food := categoryID(t, repo, "u1", "Food")
	salary := categoryID(t, repo, "u1", "Salary")

	day := func(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }
	inputs := []core.NewTransaction{
		{UserID: "u1", Date: day(2), Amount: decimal.RequireFromString("12.34"), Type: core.Expense, CategoryID: food, Description: "lunch"},
		{UserID: "u1", Date: day(10), Amount: decimal.NewFromInt(1000), Type: core.Income, CategoryID: salary},
		{UserID: "u1", Date: day(5), Amount: decimal.NewFromInt(7), Type: core.Expense, CategoryID: food},
	}
	for _, n := range inputs {
		if _, err := repo.AddTransaction(ctx, n); err != nil {
			t.Fatalf("add %+v: %v", n, err)
		}
	}

	txs, err := repo.ListTransactions(ctx, "u1", day(3))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2 inside the window", len(txs))
	}
	if !txs[0].Date.Equal(day(10)) || txs[0].Category != "Salary" || txs[0].Type != core.Income {
		t.Errorf("unexpected first row: %+v", txs[0])
	}
	if !txs[1].Amount.Equal(decimal.NewFromInt(7)) || txs[1].Description != "" {
		t.Errorf("unexpected second row: %+v", txs[1])
	}

	all, err := repo.ListTransactions(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[2].Amount.String() != "12.34" || all[2].Description != "lunch" {
		t.Errorf("unexpected full window: %+v", all)
	}

	other, err := repo.ListTransactions(ctx, "u2", time.Time{})
	if err != nil || len(other) != 0 {
		t.Errorf("other user should see nothing: %v %v", other, err)
	}
}

func TestAddTransactionRejects(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, u := range []string{"u1", "u2"} {
		if err := repo.EnsureUser(ctx, u, ""); err != nil {
			t.Fatal(err)
		}
	}
	food := categoryID(t, repo, "u1", "Food")
	foreign := categoryID(t, repo, "u2", "Food")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   core.NewTransaction
		want error
	}{
		{"bad type", core.NewTransaction{UserID: "u1", Date: now, Amount: decimal.NewFromInt(1), Type: "refund", CategoryID: food}, core.ErrInvalidType},
		{"negative", core.NewTransaction{UserID: "u1", Date: now, Amount: decimal.NewFromInt(-1), Type: core.Expense, CategoryID: food}, core.ErrInvalidAmount},
		{"unknown category", core.NewTransaction{UserID: "u1", Date: now, Amount: decimal.NewFromInt(1), Type: core.Expense, CategoryID: 9999}, core.ErrUnknownCategory},
		{"other user's category", core.NewTransaction{UserID: "u1", Date: now, Amount: decimal.NewFromInt(1), Type: core.Expense, CategoryID: foreign}, core.ErrUnknownCategory},
		{"type mismatch", core.NewTransaction{UserID: "u1", Date: now, Amount: decimal.NewFromInt(1), Type: core.Income, CategoryID: food}, core.ErrCategoryMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.AddTransaction(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMigrateSchemaIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	repo.Close()

	version, err := MigrateSchema(path)
	if err != nil {
		t.Fatalf("second migration: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}
