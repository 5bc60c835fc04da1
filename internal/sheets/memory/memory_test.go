package memory

import (
	"context"
	"testing"
)

func TestReplaceRowsOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.ReplaceRows(ctx, "T", [][]string{{"a"}, {"b"}, {"c"}}); err != nil {
		t.Fatal(err)
	}
	rows := [][]string{{"Date"}, {"2024-01-01"}}
	n, err := s.ReplaceRows(ctx, "T", rows)
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	rows[1][0] = "mutated"

	got := s.Rows("T")
	if len(got) != 2 || got[1][0] != "2024-01-01" {
		t.Fatalf("unexpected rows: %v", got)
	}
	if s.Rows("missing") != nil {
		t.Error("unknown tab should be empty")
	}
}
