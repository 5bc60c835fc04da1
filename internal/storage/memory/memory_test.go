package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreAddAndList(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food", "Rent", "Food"}, []string{"Salary"})
	if err := s.EnsureUser(ctx, "u1", ""); err != nil {
		t.Fatal(err)
	}
	cats, err := s.ListCategories(ctx, "u1")
	if err != nil || len(cats) != 3 {
		t.Fatalf("unexpected categories: %v err=%v", cats, err)
	}
	food, salary := cats[0], cats[2]
	if food.Name != "Food" || salary.Type != core.Income {
		t.Fatalf("unexpected category order: %v", cats)
	}

	day := func(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }
	for _, n := range []core.NewTransaction{
		{UserID: "u1", Date: day(1), Amount: decimal.NewFromInt(5), Type: core.Expense, CategoryID: food.ID},
		{UserID: "u1", Date: day(3), Amount: decimal.NewFromInt(9), Type: core.Income, CategoryID: salary.ID},
		{UserID: "u1", Date: day(1), Amount: decimal.NewFromInt(6), Type: core.Expense, CategoryID: food.ID},
	} {
		if _, err := s.AddTransaction(ctx, n); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	txs, err := s.ListTransactions(ctx, "u1", day(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d rows", len(txs))
	}
	if txs[0].Category != "Salary" || txs[1].Amount.IntPart() != 6 || txs[2].Amount.IntPart() != 5 {
		t.Errorf("unexpected order: %+v", txs)
	}

	if _, err := s.AddTransaction(ctx, core.NewTransaction{
		UserID: "u1", Date: day(1), Amount: decimal.NewFromInt(1), Type: core.Income, CategoryID: food.ID,
	}); !errors.Is(err, core.ErrCategoryMismatch) {
		t.Errorf("mismatch: got %v", err)
	}
	if _, err := s.AddTransaction(ctx, core.NewTransaction{
		UserID: "u2", Date: day(1), Amount: decimal.NewFromInt(1), Type: core.Expense, CategoryID: food.ID,
	}); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("foreign category: got %v", err)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := NewFromFiles(dir)
	if err := s.EnsureUser(ctx, "u", ""); err != nil {
		t.Fatal(err)
	}
	cats, _ := s.ListCategories(ctx, "u")
	if want := len(core.DefaultExpenseCategories) + len(core.DefaultIncomeCategories); len(cats) != want {
		t.Fatalf("expected defaults when files missing, got %d", len(cats))
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_expense_categories.txt", "# header\nA\nB\nA\n\n")
	mustWrite("seed_income_categories.txt", "# header\nX\nX\n\n")

	s = NewFromFiles(dir)
	if err := s.EnsureUser(ctx, "u", ""); err != nil {
		t.Fatal(err)
	}
	cats, _ = s.ListCategories(ctx, "u")
	if len(cats) != 3 || cats[0].Name != "A" || cats[1].Name != "B" || cats[2].Name != "X" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}
