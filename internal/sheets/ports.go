package sheets

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no spreadsheet export target is set up.
var ErrNotConfigured = errors.New("sheets export not configured")

// Ports for outbound adapters.
type (
	// RowWriter replaces the contents of a sheet tab with rows, header first.
	RowWriter interface {
		ReplaceRows(ctx context.Context, sheet string, rows [][]string) (written int, err error)
	}
)
