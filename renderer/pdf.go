package renderer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	finkitty "github.com/jeanflower/FinKitty-sub001"
)

// pdfText maps UTF-8 currency signs to the Latin-1 bytes the standard PDF
// fonts expect.
func pdfText(s string) string {
	s = strings.ReplaceAll(s, "£", "\xa3")
	s = strings.ReplaceAll(s, "€", "\xa4")
	return s
}

const (
	pdfMargin       = 15.0
	pdfContentWidth = 210 - 2*pdfMargin // A4 portrait
)

// ReportPDF renders the evaluation report to a PDF document: a title page
// with the settings in force, then one table page per report section.
func ReportPDF(r *finkitty.Report, title string, opts Options) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(pdfContentWidth, 14, pdfText(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(pdfContentWidth, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(r.Settings) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(pdfContentWidth, 8, "Settings", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, s := range r.Settings {
			pdf.CellFormat(pdfContentWidth/2, 7, pdfText(s.Name), "LB", 0, "L", false, 0, "")
			pdf.CellFormat(pdfContentWidth/2, 7, pdfText(s.Value), "RB", 1, "R", false, 0, "")
		}
	}

	pdfSeriesPage(pdf, "assets", r.Assets, opts)
	pdfSeriesPage(pdf, "debts", r.Debts, opts)
	pdfSeriesPage(pdf, "incomes", r.Incomes, opts)
	pdfSeriesPage(pdf, "expenses", r.Expenses, opts)
	pdfSeriesPage(pdf, "tax", r.Tax, opts)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfSeriesPage(pdf *fpdf.Fpdf, kind string, series []finkitty.ChartSeries, opts Options) {
	if len(series) == 0 {
		return
	}
	labels, names, cells := seriesColumns(series)

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(pdfContentWidth, 10, sectionTitle(kind), "", 1, "L", false, 0, "")

	labelWidth := 40.0
	colWidth := (pdfContentWidth - labelWidth) / float64(len(names))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelWidth, 7, "Date", "1", 0, "L", true, 0, "")
	for _, name := range names {
		pdf.CellFormat(colWidth, 7, pdfText(name), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, label := range labels {
		pdf.CellFormat(labelWidth, 6, pdfText(label), "1", 0, "L", false, 0, "")
		for _, name := range names {
			pdf.CellFormat(colWidth, 6, pdfText(opts.Amount(cells[name][i])), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
