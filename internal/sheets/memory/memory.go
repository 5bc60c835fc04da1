// Package memory keeps exported sheet tabs in process, for development
// without a Google account and for tests.
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

func New() *Store {
	return &Store{tabs: map[string][][]string{}}
}

// ReplaceRows stores a copy of rows under sheet.
func (s *Store) ReplaceRows(_ context.Context, sheet string, rows [][]string) (int, error) {
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[sheet] = cp
	return len(cp), nil
}

// Rows returns the last rows written to sheet.
func (s *Store) Rows(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[sheet]
}
