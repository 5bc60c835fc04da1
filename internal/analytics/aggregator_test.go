package analytics

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date string, amount string, typ core.TransactionType, category string) core.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{Date: d, Amount: decimal.RequireFromString(amount), Type: typ, Category: category}
}

func TestAggregate_Scenario(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-05", "50", core.Expense, "Food"),
		tx("2024-02-10", "30", core.Expense, "Food"),
		tx("2024-01-20", "1000", core.Income, "Salary"),
	}

	got := Aggregate(txs)

	require.Equal(t, []string{"2024-01", "2024-02"}, got.MonthlySpending.Keys())
	assertAmount(t, got.MonthlySpending, "2024-01", "50")
	assertAmount(t, got.MonthlySpending, "2024-02", "30")

	require.Equal(t, []string{"2024-01"}, got.MonthlyIncome.Keys())
	assertAmount(t, got.MonthlyIncome, "2024-01", "1000")

	require.Equal(t, []string{"Food"}, got.CategorySpending.Keys())
	assertAmount(t, got.CategorySpending, "Food", "80")

	assert.Equal(t, 3, got.TotalTransactions)
	assert.True(t, got.TotalIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, got.TotalExpenses.Equal(decimal.NewFromInt(80)))
}

func TestAggregate_EmptyIsValidNotError(t *testing.T) {
	got := Aggregate(nil)

	assert.True(t, got.IsEmpty())
	assert.Empty(t, got.MonthlySpending)
	assert.Empty(t, got.MonthlyIncome)
	assert.Empty(t, got.CategorySpending)
	assert.Equal(t, 0, got.TotalTransactions)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"monthly_spending":{},"monthly_income":{},"category_spending":{},"total_income":0,"total_expenses":0,"total_transactions":0}`, string(b))
}

func TestAggregate_MonthOrderFollowsInput(t *testing.T) {
	// Date-descending input yields date-descending months: no sort is applied.
	txs := []core.Transaction{
		tx("2024-03-01", "1", core.Expense, "Food"),
		tx("2024-01-01", "2", core.Expense, "Food"),
		tx("2024-02-01", "3", core.Expense, "Food"),
		tx("2024-03-15", "4", core.Expense, "Rent"),
	}

	got := Aggregate(txs)

	assert.Equal(t, []string{"2024-03", "2024-01", "2024-02"}, got.MonthlySpending.Keys())
	assertAmount(t, got.MonthlySpending, "2024-03", "5")
}

func TestAggregate_CategoryRankingTiesKeepFirstSeen(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-01", "10", core.Expense, "Travel"),
		tx("2024-01-02", "25", core.Expense, "Rent"),
		tx("2024-01-03", "10", core.Expense, "Food"),
		tx("2024-01-04", "99", core.Income, "Salary"),
		tx("2024-01-05", "5", core.Expense, "Travel"),
	}

	got := Aggregate(txs)

	// Travel=15, Rent=25, Food=10.
	assert.Equal(t, []string{"Rent", "Travel", "Food"}, got.CategorySpending.Keys())

	tied := Aggregate([]core.Transaction{
		tx("2024-01-01", "10", core.Expense, "B"),
		tx("2024-01-02", "10", core.Expense, "A"),
		tx("2024-01-03", "10", core.Expense, "C"),
	})
	assert.Equal(t, []string{"B", "A", "C"}, tied.CategorySpending.Keys())
}

func TestAggregate_IncomeOnly(t *testing.T) {
	got := Aggregate([]core.Transaction{tx("2024-05-01", "10", core.Income, "Gift")})

	assert.False(t, got.IsEmpty())
	assert.Empty(t, got.MonthlySpending)
	assert.Empty(t, got.CategorySpending)
	assert.Equal(t, 1, got.TotalTransactions)
}

func TestAggregate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"Food", "Rent", "Travel", "Shopping", "Salary"}
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	for round := 0; round < 50; round++ {
		n := rng.Intn(40)
		txs := make([]core.Transaction, n)
		expenseSum := decimal.Zero
		for i := range txs {
			typ := core.Expense
			if rng.Intn(3) == 0 {
				typ = core.Income
			}
			amount := decimal.New(rng.Int63n(100000), -2)
			txs[i] = core.Transaction{
				Date:     start.AddDate(0, 0, rng.Intn(180)),
				Amount:   amount,
				Type:     typ,
				Category: categories[rng.Intn(len(categories))],
			}
			if typ == core.Expense {
				expenseSum = expenseSum.Add(amount)
			}
		}

		got := Aggregate(txs)

		require.True(t, got.MonthlySpending.Total().Equal(expenseSum), "monthly spending must sum to expense total")
		require.True(t, got.CategorySpending.Total().Equal(expenseSum), "category spending must sum to expense total")
		require.Equal(t, n, got.TotalTransactions)
		for i := 1; i < len(got.CategorySpending); i++ {
			require.False(t, got.CategorySpending[i].Amount.GreaterThan(got.CategorySpending[i-1].Amount),
				"category spending must be non-increasing")
		}
	}
}

func TestRankDescendingDoesNotMutateInput(t *testing.T) {
	in := core.OrderedAmounts{
		{Key: "a", Amount: decimal.NewFromInt(1)},
		{Key: "b", Amount: decimal.NewFromInt(2)},
	}
	out := RankDescending(in)

	assert.Equal(t, []string{"b", "a"}, out.Keys())
	assert.Equal(t, []string{"a", "b"}, in.Keys())
}

func TestCategoryTotalsEncounterOrder(t *testing.T) {
	got := CategoryTotals([]core.Transaction{
		tx("2024-01-01", "1", core.Expense, "Small"),
		tx("2024-01-02", "100", core.Expense, "Big"),
		tx("2024-01-03", "7", core.Income, "Salary"),
	})
	assert.Equal(t, []string{"Small", "Big"}, got.Keys())
}

func assertAmount(t *testing.T, o core.OrderedAmounts, key, want string) {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok, "missing key %s", key)
	assert.True(t, v.Equal(decimal.RequireFromString(want)), "%s: got %s want %s", key, v, want)
}
