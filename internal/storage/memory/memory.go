// Package memory is a process-local data backend, used for development and tests.
package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
)

type Store struct {
	mu      sync.Mutex
	expense []string
	income  []string

	users  map[string]string
	cats   []core.Category
	items  []core.NewTransaction
	nextID int64
}

// New returns a store that seeds each new user with the given category names.
func New(expense, income []string) *Store {
	return &Store{
		expense: dedupe(expense),
		income:  dedupe(income),
		users:   map[string]string{},
	}
}

// NewFromFiles reads seed_expense_categories.txt and seed_income_categories.txt
// from base, one name per line. Missing files fall back to the defaults.
func NewFromFiles(base string) *Store {
	expense := readLines(filepath.Join(base, "seed_expense_categories.txt"))
	income := readLines(filepath.Join(base, "seed_income_categories.txt"))
	if len(expense) == 0 {
		expense = core.DefaultExpenseCategories
	}
	if len(income) == 0 {
		income = core.DefaultIncomeCategories
	}
	return New(expense, income)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) EnsureUser(_ context.Context, id, name string) error {
	if id == "" {
		return core.ErrEmptyUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; ok {
		return nil
	}
	s.users[id] = name
	for _, n := range s.expense {
		s.addCategory(id, n, core.Expense)
	}
	for _, n := range s.income {
		s.addCategory(id, n, core.Income)
	}
	return nil
}

func (s *Store) addCategory(user, name string, typ core.TransactionType) {
	s.nextID++
	s.cats = append(s.cats, core.Category{ID: s.nextID, UserID: user, Name: name, Type: typ})
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.cats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) AddTransaction(_ context.Context, n core.NewTransaction) (int64, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.category(n.UserID, n.CategoryID)
	if !ok {
		return 0, core.ErrUnknownCategory
	}
	if cat.Type != n.Type {
		return 0, core.ErrCategoryMismatch
	}
	s.items = append(s.items, n)
	return int64(len(s.items)), nil
}

// ListTransactions returns the window most recent first. Rows sharing a date
// are ordered by descending id, like the SQLite backend.
func (s *Store) ListTransactions(_ context.Context, userID string, since time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if n.UserID != userID || n.Date.Before(since) {
			continue
		}
		cat, _ := s.category(n.UserID, n.CategoryID)
		out = append(out, core.Transaction{
			ID:          int64(i + 1),
			UserID:      n.UserID,
			Date:        n.Date,
			Amount:      n.Amount,
			Type:        n.Type,
			Category:    cat.Name,
			Description: n.Description,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) category(user string, id int64) (core.Category, bool) {
	for _, c := range s.cats {
		if c.ID == id && c.UserID == user {
			return c, true
		}
	}
	return core.Category{}, false
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, keeping first occurrence order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
