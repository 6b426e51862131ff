package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// PDFIllustrationReport renders an illustration, its rate table and a rate grid
type PDFIllustrationReport struct {
	pdf          *fpdf.Fpdf
	illustration Illustration
	rates        RateTable
	grid         RateGrid
	generated    time.Time
}

// GenerateIllustrationPDF creates the PDF document for an illustration
func GenerateIllustrationPDF(ill Illustration, rates RateTable, grid RateGrid) ([]byte, error) {
	report := &PDFIllustrationReport{
		pdf:          fpdf.New("P", "mm", "A4", ""),
		illustration: ill,
		rates:        rates,
		grid:         grid,
		generated:    time.Now(),
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetTitle("Value over time", true)

	report.addSummaryPage()
	report.addRateTable()
	report.addRateGrid()

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFIllustrationReport) addSummaryPage() {
	r.pdf.AddPage()
	ill := r.illustration

	r.pdf.SetFont("Arial", "B", 24)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(20)
	r.pdf.CellFormat(contentWidth, 12, "Value over time", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", r.generated.Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(15)

	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.drawValueBox(fmt.Sprintf("Value in %d", ill.State.HistoricalYear), ill.HistoricalText,
		fmt.Sprintf("Adjusted with historical KPI, cumulative factor %s", ill.HistoricalFactor))
	r.drawValueBox(fmt.Sprintf("Amount in %d", ill.ReferenceYear), ill.PresentText, "Selected amount")
	r.drawValueBox(fmt.Sprintf("Value in %d", ill.State.FutureYear), ill.FutureText,
		fmt.Sprintf("Assumed %s per year, factor %.6f", FormatRate(ill.State.RatePercent), ill.FutureFactor))

	r.pdf.Ln(10)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"This illustration is for informational purposes only. Historical values use published "+
			"consumer price index changes; future values assume a constant annual rate and are not a forecast.",
		"", "C", false)
}

func (r *PDFIllustrationReport) drawValueBox(title, value, note string) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, title, "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "B", 18)
	r.pdf.SetTextColor(30, 30, 30)
	r.pdf.CellFormat(contentWidth, 12, value, "LR", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.CellFormat(contentWidth, 6, note, "LRB", 1, "C", true, 0, "")
	r.pdf.Ln(6)
}

func (r *PDFIllustrationReport) addRateTable() {
	r.pdf.AddPage()
	r.drawSectionHeader("Historical KPI")

	widths := []float64{40, 40}
	r.drawTableHeader([]string{"Year", "Change"}, widths)
	for _, e := range r.rates.Entries() {
		r.drawTableRow([]string{fmt.Sprintf("%d", e.Year), e.Rate.StringFixed(1) + "%"}, widths, false)
	}
}

func (r *PDFIllustrationReport) addRateGrid() {
	if len(r.grid.Rates) == 0 || len(r.grid.Years) == 0 {
		return
	}
	r.pdf.Ln(10)
	r.drawSectionHeader(fmt.Sprintf("Future value of %s", FormatAmount(r.grid.Amount)))

	colWidth := (contentWidth - 20) / float64(len(r.grid.Years))
	widths := []float64{20}
	headers := []string{"Rate"}
	for _, year := range r.grid.Years {
		widths = append(widths, colWidth)
		headers = append(headers, fmt.Sprintf("%d", year))
	}
	r.drawTableHeader(headers, widths)

	for i, rate := range r.grid.Rates {
		cells := []string{FormatRate(rate)}
		for j := range r.grid.Years {
			cells = append(cells, GroupThousands(r.grid.Values[i][j]))
		}
		r.drawTableRow(cells, widths, rate == r.illustration.State.RatePercent)
	}
}

func (r *PDFIllustrationReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *PDFIllustrationReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFIllustrationReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
