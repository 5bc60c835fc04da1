// Package report renders transaction windows into downloadable artifacts:
// a spending pie chart (PNG), CSV, PDF and XLSX.
//
// Every renderer is a pure function of the transactions it is given. Rows are
// always listed most recent first and empty windows always produce a valid
// artifact, except the pie chart which is absent when there is no spending.
package report

import (
	"fmt"

	"fintrack/internal/core"
)

// Config controls titles and dimensions of rendered artifacts.
type Config struct {
	AppName    string
	Title      string
	ChartTitle string
	ChartSize  int

	// Font overrides for the PDF renderer, TrueType data. Nil selects the Go fonts.
	RegularFont []byte
	BoldFont    []byte
}

// DefaultConfig returns the FinTrack defaults.
func DefaultConfig() Config {
	return Config{
		AppName:    "FinTrack",
		Title:      "FinTrack - Transaction Report",
		ChartTitle: "Spending by Category",
		ChartSize:  800,
	}
}

// Renderer produces artifacts using a fixed Config.
type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.AppName == "" {
		cfg.AppName = def.AppName
	}
	if cfg.Title == "" {
		cfg.Title = cfg.AppName + " - Transaction Report"
	}
	if cfg.ChartTitle == "" {
		cfg.ChartTitle = def.ChartTitle
	}
	if cfg.ChartSize <= 0 {
		cfg.ChartSize = def.ChartSize
	}
	return &Renderer{cfg: cfg}
}

// AppName is used to build export filenames.
func (r *Renderer) AppName() string {
	return r.cfg.AppName
}

// Render dispatches to the renderer for f.
func (r *Renderer) Render(f Format, txs []core.Transaction) ([]byte, error) {
	switch f {
	case FormatCSV:
		return r.CSV(txs)
	case FormatPDF:
		return r.PDF(txs)
	case FormatXLSX:
		return r.XLSX(txs)
	}
	return nil, renderFailed(f, fmt.Errorf("unsupported format"))
}
