package report

import (
	"fmt"
	"strings"
	"time"
)

// Format names a downloadable artifact type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatPNG  Format = "png"
)

// ParseFormat accepts the export formats offered for download.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

func (f Format) Extension() string {
	return string(f)
}

// ExportFilename builds "<app>_export_<YYYYMMDD>.<ext>", e.g. fintrack_export_20240105.csv.
func ExportFilename(app string, now time.Time, f Format) string {
	app = strings.ToLower(strings.Join(strings.Fields(app), "_"))
	if app == "" {
		app = "fintrack"
	}
	return fmt.Sprintf("%s_export_%s.%s", app, now.Format("20060102"), f.Extension())
}
