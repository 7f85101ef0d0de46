// Package analytics reduces ledger records into monthly and yearly
// summaries, insights and card utilization figures.
//
// Functions here take already-fetched records (or a records.MonthReader) and
// never write. Amounts keep full precision internally and are rounded to
// cents on the way out.
package analytics

import (
	"slices"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var twelve = decimal.NewFromInt(12)

// MonthlySummary is the reduced view of one calendar month.
type MonthlySummary struct {
	Month            string                 `json:"month"`
	TotalIncome      decimal.Decimal        `json:"total_income"`
	TotalExpense     decimal.Decimal        `json:"total_expense"`
	InvestmentsTotal decimal.Decimal        `json:"investments"`
	Savings          decimal.Decimal        `json:"savings"`
	TopCategories    []core.CategorySummary `json:"top_categories"`
}

// Breakdown drops the category list.
func (s MonthlySummary) Breakdown() MonthBreakdown {
	return MonthBreakdown{
		Month:       s.Month,
		Income:      s.TotalIncome,
		Expense:     s.TotalExpense,
		Investments: s.InvestmentsTotal,
		Savings:     s.Savings,
	}
}

// MonthBreakdown is one row of a yearly summary or a spending trend.
type MonthBreakdown struct {
	Month       string          `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Investments decimal.Decimal `json:"investments"`
	Savings     decimal.Decimal `json:"savings"`
}

// Summarize reduces the transactions of year/month plus the full investment
// list into a MonthlySummary. txs must already be filtered to the month;
// investments are filtered here.
func Summarize(txs []core.Transaction, investments []core.SavingsInvestment, year, month int) MonthlySummary {
	income, expense := decimal.Zero, decimal.Zero

	var cats []core.CategorySummary
	pos := make(map[string]int)
	for _, t := range txs {
		switch t.Kind {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
			i, ok := pos[t.Category]
			if !ok {
				i = len(cats)
				pos[t.Category] = i
				cats = append(cats, core.CategorySummary{Name: t.Category, Amount: decimal.Zero})
			}
			cats[i].Amount = cats[i].Amount.Add(t.Amount)
		}
	}

	invested := decimal.Zero
	for _, inv := range investments {
		invested = invested.Add(Contribution(inv, year, month))
	}
	// The synthetic row replaces an expense category of the same name so
	// category names stay unique.
	if invested.IsPositive() {
		if i, ok := pos[core.InvestmentsCategory]; ok {
			cats[i].Amount = invested
		} else {
			cats = append(cats, core.CategorySummary{Name: core.InvestmentsCategory, Amount: invested})
		}
	}

	ranked := rank(cats)
	return MonthlySummary{
		Month:            core.MonthLabel(year, month),
		TotalIncome:      core.Round2(income),
		TotalExpense:     core.Round2(expense),
		InvestmentsTotal: core.Round2(invested),
		Savings:          core.Round2(income.Sub(expense).Sub(invested)),
		TopCategories:    ranked,
	}
}

// Contribution returns what inv adds to the investments total of year/month.
//
// Yearly plans are spread as a monthly equivalent (amount/12) over the months
// of the year they last recurred in, starting from that month.
func Contribution(inv core.SavingsInvestment, year, month int) decimal.Decimal {
	pd := inv.PurchaseDate
	if !inv.IsRecurring {
		if pd.InMonth(year, month) {
			return inv.InitialAmount
		}
		return decimal.Zero
	}

	amount := core.DerefAmount(inv.RecurringAmount)
	switch inv.RecurringType {
	case core.Monthly:
		if pd.OnOrBeforeMonth(year, month) {
			return amount
		}
	case core.Yearly:
		last := pd
		if inv.LastRecurringDate != nil {
			last = *inv.LastRecurringDate
		}
		inYear := last.Year() == year || (pd.Year() == year && last.Year() < year)
		started := (year-pd.Year())*12+(month-pd.Month()) >= 0
		if inYear && started && last.OnOrBeforeMonth(year, month) {
			return amount.Div(twelve)
		}
	}
	return decimal.Zero
}

// rank sorts descending by amount, keeping encounter order on ties, and
// rounds each amount.
func rank(cats []core.CategorySummary) []core.CategorySummary {
	out := slices.Clone(cats)
	slices.SortStableFunc(out, func(a, b core.CategorySummary) int {
		return b.Amount.Cmp(a.Amount)
	})
	for i := range out {
		out[i].Amount = core.Round2(out[i].Amount)
	}
	if out == nil {
		out = []core.CategorySummary{}
	}
	return out
}
