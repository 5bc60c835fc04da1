package report

import (
	"bytes"

	"fintrack/internal/core"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Document is the layout of the PDF report before it is drawn.
type Document struct {
	Title   string
	Summary [][2]string
	Header  []string
	Rows    [][]string
}

// BuildDocument lays out the report for txs. Summary totals cover the whole
// window regardless of how many pages the table spans.
func BuildDocument(title string, txs []core.Transaction) Document {
	s := core.Summarize(txs)
	doc := Document{
		Title: title,
		Summary: [][2]string{
			{"Total Income", core.FormatCurrency(s.TotalIncome)},
			{"Total Expenses", core.FormatCurrency(s.TotalExpenses)},
			{"Balance", core.FormatCurrency(s.Balance)},
		},
		Header: Columns,
		Rows:   make([][]string, 0, len(txs)),
	}
	for _, t := range SortMostRecentFirst(txs) {
		doc.Rows = append(doc.Rows, DisplayRecord(t))
	}
	return doc
}

type rgb struct{ r, g, b uint8 }

var (
	colorLightGrey  = rgb{211, 211, 211}
	colorGrey       = rgb{128, 128, 128}
	colorWhiteSmoke = rgb{245, 245, 245}
	colorBeige      = rgb{245, 245, 220}
	colorBlack      = rgb{0, 0, 0}
)

const (
	fontRegular = "regular"
	fontBold    = "bold"

	pageMargin  = 54.0
	cellPadding = 4.0

	summaryRowHeight = 26.0
	headerRowHeight  = 22.0
	bodyRowHeight    = 15.0
)

var (
	summaryColWidths = []float64{200, 100}
	tableColWidths   = []float64{70, 60, 80, 60, 150}
)

// PDF draws the report on US Letter pages: title, summary block, then the
// transaction table. The table header is repeated on every page.
func (r *Renderer) PDF(txs []core.Transaction) ([]byte, error) {
	doc := BuildDocument(r.cfg.Title, txs)

	p := &pdfWriter{pdf: &gopdf.GoPdf{}, page: *gopdf.PageSizeLetter}
	p.pdf.Start(gopdf.Config{PageSize: p.page})

	regular, bold := r.cfg.RegularFont, r.cfg.BoldFont
	if regular == nil {
		regular = goregular.TTF
	}
	if bold == nil {
		bold = gobold.TTF
	}
	if err := p.pdf.AddTTFFontData(fontRegular, regular); err != nil {
		return nil, renderFailed(FormatPDF, err)
	}
	if err := p.pdf.AddTTFFontData(fontBold, bold); err != nil {
		return nil, renderFailed(FormatPDF, err)
	}

	if err := p.draw(doc); err != nil {
		return nil, renderFailed(FormatPDF, err)
	}

	var buf bytes.Buffer
	if err := p.pdf.Write(&buf); err != nil {
		return nil, renderFailed(FormatPDF, err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf  *gopdf.GoPdf
	page gopdf.Rect
	y    float64
}

func (p *pdfWriter) draw(doc Document) error {
	p.newPage()

	if err := p.pdf.SetFont(fontBold, "", 20); err != nil {
		return err
	}
	p.pdf.SetTextColor(colorBlack.r, colorBlack.g, colorBlack.b)
	p.pdf.SetXY(pageMargin, p.y)
	if err := p.pdf.CellWithOption(&gopdf.Rect{W: p.page.W - 2*pageMargin, H: 30}, doc.Title,
		gopdf.CellOption{Align: gopdf.Center | gopdf.Middle}); err != nil {
		return err
	}
	p.y += 30 + 12

	for _, row := range doc.Summary {
		err := p.row(summaryColWidths, row[:], summaryRowHeight, rowStyle{
			font: fontBold, size: 12, fill: colorLightGrey, text: colorBlack,
		})
		if err != nil {
			return err
		}
	}
	p.y += 20

	header := rowStyle{font: fontBold, size: 10, fill: colorGrey, text: colorWhiteSmoke}
	body := rowStyle{font: fontRegular, size: 9, fill: colorBeige, text: colorBlack}

	if err := p.row(tableColWidths, doc.Header, headerRowHeight, header); err != nil {
		return err
	}
	for _, cells := range doc.Rows {
		if p.y+bodyRowHeight > p.page.H-pageMargin {
			p.newPage()
			if err := p.row(tableColWidths, doc.Header, headerRowHeight, header); err != nil {
				return err
			}
		}
		if err := p.row(tableColWidths, cells, bodyRowHeight, body); err != nil {
			return err
		}
	}
	return nil
}

type rowStyle struct {
	font string
	size float64
	fill rgb
	text rgb
}

func (p *pdfWriter) newPage() {
	p.pdf.AddPage()
	p.y = pageMargin
}

// row draws one table row centred horizontally on the page.
func (p *pdfWriter) row(widths []float64, cells []string, height float64, st rowStyle) error {
	total := 0.0
	for _, w := range widths {
		total += w
	}
	x := (p.page.W - total) / 2

	p.pdf.SetFillColor(st.fill.r, st.fill.g, st.fill.b)
	p.pdf.RectFromUpperLeftWithStyle(x, p.y, total, height, "F")

	if err := p.pdf.SetFont(st.font, "", st.size); err != nil {
		return err
	}
	p.pdf.SetTextColor(st.text.r, st.text.g, st.text.b)
	for i, w := range widths {
		if i >= len(cells) || cells[i] == "" {
			x += w
			continue
		}
		text, err := p.fit(cells[i], w-2*cellPadding)
		if err != nil {
			return err
		}
		p.pdf.SetXY(x+cellPadding, p.y)
		if err := p.pdf.CellWithOption(&gopdf.Rect{W: w - 2*cellPadding, H: height}, text,
			gopdf.CellOption{Align: gopdf.Left | gopdf.Middle}); err != nil {
			return err
		}
		x += w
	}
	p.y += height
	return nil
}

// fit truncates text with a trailing "..." so it fits within width.
func (p *pdfWriter) fit(text string, width float64) (string, error) {
	w, err := p.pdf.MeasureTextWidth(text)
	if err != nil || w <= width {
		return text, err
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, err = p.pdf.MeasureTextWidth(candidate); err != nil {
			return "", err
		}
		if w <= width {
			return candidate, nil
		}
	}
	return "", nil
}
