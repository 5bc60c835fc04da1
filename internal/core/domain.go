package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a single income or expense entry with its category name
	// already resolved. The sign of a movement is carried by Type, never by Amount.
	Transaction struct {
		ID          int64           `json:"id"`
		UserID      string          `json:"-"`
		Date        time.Time       `json:"date"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"` // empty when absent
	}

	Category struct {
		ID     int64           `json:"id"`
		UserID string          `json:"-"`
		Name   string          `json:"name"`
		Type   TransactionType `json:"type"`
	}

	// NewTransaction is the input accepted by transaction writers. The category
	// is referenced by id and must belong to the same user and type.
	NewTransaction struct {
		UserID      string
		Date        time.Time
		Amount      decimal.Decimal
		Type        TransactionType
		CategoryID  int64
		Description string
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyUser        = errors.New("empty user id")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCategoryMismatch = errors.New("category type does not match transaction type")
)

// DefaultExpenseCategories and DefaultIncomeCategories are seeded for every new user.
var (
	DefaultExpenseCategories = []string{"Food", "Rent", "Travel", "Shopping", "Utilities", "Entertainment"}
	DefaultIncomeCategories  = []string{"Salary", "Freelance", "Investment", "Gift"}
)

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the capitalized form used in exports ("Income", "Expense").
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (t TransactionType) String() string {
	return string(t)
}

// IsExpense reports whether the transaction counts toward spending.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

// IsIncome reports whether the transaction counts toward income.
func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return ErrEmptyUser
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	if n.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if n.Date.IsZero() {
		return ErrInvalidDate
	}
	if n.CategoryID <= 0 {
		return ErrUnknownCategory
	}
	if len(n.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
