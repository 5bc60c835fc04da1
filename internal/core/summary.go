package core

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// KeyedAmount is one entry of an ordered key to amount mapping.
type KeyedAmount struct {
	Key    string
	Amount decimal.Decimal
}

// OrderedAmounts is a key to amount mapping that remembers entry order.
// It encodes to JSON as an object whose members keep that order.
type OrderedAmounts []KeyedAmount

// Get returns the amount stored under key.
func (o OrderedAmounts) Get(key string) (decimal.Decimal, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

// Keys returns the keys in entry order.
func (o OrderedAmounts) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

// Total sums every amount.
func (o OrderedAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range o {
		total = total.Add(e.Amount)
	}
	return total
}

func (o OrderedAmounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(e.Amount.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object back into entries, preserving member order.
func (o *OrderedAmounts) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := OrderedAmounts{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return err
		}
		amount, err := decimal.NewFromString(n.String())
		if err != nil {
			return err
		}
		out = append(out, KeyedAmount{Key: key, Amount: amount})
	}
	*o = out
	return nil
}

// AnalyticsSummary is the aggregate view of one transaction window.
type AnalyticsSummary struct {
	MonthlySpending   OrderedAmounts  `json:"monthly_spending"`
	MonthlyIncome     OrderedAmounts  `json:"monthly_income"`
	CategorySpending  OrderedAmounts  `json:"category_spending"`
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	TotalTransactions int             `json:"total_transactions"`
}

// EmptyAnalytics is the valid result for a window without transactions.
func EmptyAnalytics() AnalyticsSummary {
	return AnalyticsSummary{
		MonthlySpending:  OrderedAmounts{},
		MonthlyIncome:    OrderedAmounts{},
		CategorySpending: OrderedAmounts{},
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.Zero,
	}
}

// IsEmpty reports whether the summary was built from zero transactions.
func (s AnalyticsSummary) IsEmpty() bool {
	return s.TotalTransactions == 0
}

// MarshalJSON writes totals as JSON numbers, matching the ordered mappings.
func (s AnalyticsSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MonthlySpending   OrderedAmounts `json:"monthly_spending"`
		MonthlyIncome     OrderedAmounts `json:"monthly_income"`
		CategorySpending  OrderedAmounts `json:"category_spending"`
		TotalIncome       json.Number    `json:"total_income"`
		TotalExpenses     json.Number    `json:"total_expenses"`
		TotalTransactions int            `json:"total_transactions"`
	}{
		MonthlySpending:   nonNil(s.MonthlySpending),
		MonthlyIncome:     nonNil(s.MonthlyIncome),
		CategorySpending:  nonNil(s.CategorySpending),
		TotalIncome:       json.Number(s.TotalIncome.String()),
		TotalExpenses:     json.Number(s.TotalExpenses.String()),
		TotalTransactions: s.TotalTransactions,
	})
}

func nonNil(o OrderedAmounts) OrderedAmounts {
	if o == nil {
		return OrderedAmounts{}
	}
	return o
}

// ReportSummary holds the totals printed at the top of exported reports.
type ReportSummary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

func (r ReportSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalIncome   json.Number `json:"total_income"`
		TotalExpenses json.Number `json:"total_expenses"`
		Balance       json.Number `json:"balance"`
	}{
		TotalIncome:   json.Number(r.TotalIncome.String()),
		TotalExpenses: json.Number(r.TotalExpenses.String()),
		Balance:       json.Number(r.Balance.String()),
	})
}

// Summarize totals a window. Balance is income minus expenses over every
// transaction supplied.
func Summarize(txs []Transaction) ReportSummary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return ReportSummary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
	}
}

// RecentLimit caps the transactions listed on the dashboard.
const RecentLimit = 5

// DashboardSummary is the landing view: month to date totals plus the latest
// transactions.
type DashboardSummary struct {
	Month  MonthKey      `json:"month"`
	Totals ReportSummary `json:"totals"`
	Recent []Transaction `json:"recent"`
}

// Dashboard builds the summary for month from txs, which must be sorted most
// recent first. Totals only count transactions dated inside month.
func Dashboard(month MonthKey, txs []Transaction) DashboardSummary {
	var inMonth []Transaction
	for _, t := range txs {
		if MonthKeyOf(t.Date) == month {
			inMonth = append(inMonth, t)
		}
	}
	recent := txs
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	return DashboardSummary{
		Month:  month,
		Totals: Summarize(inMonth),
		Recent: append([]Transaction{}, recent...),
	}
}
