// Package report renders analytics results as downloadable documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// YearlyPDF writes a one-page statement for a year: totals, the month by
// month breakdown and the top spending categories.
func YearlyPDF(w io.Writer, s analytics.YearlySummary, dist analytics.CategoryDistribution, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetCreationDate(generated)
	pdf.SetTitle(fmt.Sprintf("Finance statement %d", s.Year), false)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("Finance statement %d", s.Year))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Generated "+generated.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Income", s.TotalIncome},
		{"Expense", s.TotalExpense},
		{"Investments", s.Investments},
		{"Savings", s.Savings},
	}
	pdf.SetFont("Helvetica", "B", 11)
	for i, t := range totals {
		pdf.CellFormat(45.5, 9, t.label, "1", lineEnd(i, len(totals)), "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	for i, t := range totals {
		pdf.CellFormat(45.5, 9, money(t.value), "1", lineEnd(i, len(totals)), "C", false, 0, "")
	}
	pdf.Ln(6)

	header := []string{"Month", "Income", "Expense", "Investments", "Savings"}
	widths := []float64{30, 38, 38, 38, 38}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", lineEnd(i, len(header)), "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range s.MonthlyBreakdown {
		row := []string{monthLabel(m.Month), money(m.Income), money(m.Expense), money(m.Investments), money(m.Savings)}
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, cell, "1", lineEnd(i, len(row)), align, false, 0, "")
		}
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Top categories")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	if len(dist.TopCategories) == 0 {
		pdf.SetTextColor(120, 120, 120)
		pdf.Cell(0, 6, "No expenses recorded.")
		pdf.Ln(6)
	}
	for _, c := range dist.TopCategories {
		pdf.CellFormat(120, 7, pdf.UnicodeTranslatorFromDescriptor("")(c.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(62, 7, money(c.Amount), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render yearly report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write yearly report: %w", err)
	}
	return nil
}

func lineEnd(i, n int) int {
	if i == n-1 {
		return 1
	}
	return 0
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// monthLabel turns "2024-03" into "Mar 2024".
func monthLabel(label string) string {
	var year, month int
	if _, err := fmt.Sscanf(label, "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
		return label
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}
