// Package analytics folds a transaction window into the dashboard aggregates.
//
// Aggregation is a pure function of its input: there is no caching and no
// shared state between calls.
package analytics

import (
	"sort"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Aggregate builds the analytics summary for one user's transaction window.
//
// Monthly series keep the order in which each month is first seen in txs; they
// are chronological only when the caller supplies date ordered input. Category
// spending is ranked by amount, largest first, with ties kept in first seen
// order. An empty window yields EmptyAnalytics.
func Aggregate(txs []core.Transaction) core.AnalyticsSummary {
	if len(txs) == 0 {
		return core.EmptyAnalytics()
	}

	expenses := filter(txs, core.Transaction.IsExpense)
	income := filter(txs, core.Transaction.IsIncome)

	summary := core.AnalyticsSummary{
		MonthlySpending:   fold(expenses, monthOf),
		MonthlyIncome:     fold(income, monthOf),
		CategorySpending:  RankDescending(fold(expenses, categoryOf)),
		TotalTransactions: len(txs),
	}
	summary.TotalExpenses = summary.MonthlySpending.Total()
	summary.TotalIncome = summary.MonthlyIncome.Total()
	return summary
}

// CategoryTotals sums expense amounts per category in encounter order.
func CategoryTotals(txs []core.Transaction) core.OrderedAmounts {
	return fold(filter(txs, core.Transaction.IsExpense), categoryOf)
}

// RankDescending returns a copy of amounts sorted by value, largest first.
// The sort is stable so equal amounts keep their relative order.
func RankDescending(amounts core.OrderedAmounts) core.OrderedAmounts {
	ranked := make(core.OrderedAmounts, len(amounts))
	copy(ranked, amounts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.GreaterThan(ranked[j].Amount)
	})
	return ranked
}

func monthOf(t core.Transaction) string {
	return core.MonthKeyOf(t.Date).String()
}

func categoryOf(t core.Transaction) string {
	return t.Category
}

func filter(txs []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// fold sums amounts per key; entries appear in first seen order.
func fold(txs []core.Transaction, key func(core.Transaction) string) core.OrderedAmounts {
	out := core.OrderedAmounts{}
	index := make(map[string]int)
	for _, t := range txs {
		k := key(t)
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, core.KeyedAmount{Key: k, Amount: decimal.Zero})
			i = len(out) - 1
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}
