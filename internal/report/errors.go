package report

import (
	"errors"
	"fmt"
)

// ErrRenderFailed matches every error produced while encoding an artifact.
// A failed render never returns partial bytes.
var ErrRenderFailed = errors.New("render failed")

// RenderError records which artifact failed and why.
type RenderError struct {
	Format Format
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRenderFailed
}

func renderFailed(f Format, err error) error {
	return &RenderError{Format: f, Err: err}
}
