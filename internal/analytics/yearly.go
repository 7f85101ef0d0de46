package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

type YearlySummary struct {
	Year             int              `json:"year"`
	TotalIncome      decimal.Decimal  `json:"total_income"`
	TotalExpense     decimal.Decimal  `json:"total_expense"`
	Investments      decimal.Decimal  `json:"investments"`
	Savings          decimal.Decimal  `json:"savings"`
	MonthlyBreakdown []MonthBreakdown `json:"monthly_breakdown"`
}

type CategoryDistribution struct {
	Year               int                    `json:"year"`
	IncludeInvestments bool                   `json:"include_investments"`
	TopCategories      []core.CategorySummary `json:"top_categories"`
	TotalExpense       decimal.Decimal        `json:"total_expense"`
	TotalInvestments   decimal.Decimal        `json:"total_investments"`
}

// eachMonth summarizes months 1..12 of year, loading investments once.
func eachMonth(ctx context.Context, store records.MonthReader, year int, fn func(MonthlySummary)) error {
	investments, err := store.ListInvestments(ctx)
	if err != nil {
		return fmt.Errorf("list investments: %w", err)
	}
	for month := 1; month <= 12; month++ {
		txs, err := store.TransactionsByMonth(ctx, year, month)
		if err != nil {
			return fmt.Errorf("transactions %s: %w", core.MonthLabel(year, month), err)
		}
		fn(Summarize(txs, investments, year, month))
	}
	return nil
}

// ComputeYearlySummary computes all twelve months of year, including future ones.
// Year totals are sums of the rounded monthly values.
func ComputeYearlySummary(ctx context.Context, store records.MonthReader, year int) (YearlySummary, error) {
	out := YearlySummary{
		Year:             year,
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		Investments:      decimal.Zero,
		MonthlyBreakdown: make([]MonthBreakdown, 0, 12),
	}
	err := eachMonth(ctx, store, year, func(s MonthlySummary) {
		out.TotalIncome = out.TotalIncome.Add(s.TotalIncome)
		out.TotalExpense = out.TotalExpense.Add(s.TotalExpense)
		out.Investments = out.Investments.Add(s.InvestmentsTotal)
		out.MonthlyBreakdown = append(out.MonthlyBreakdown, s.Breakdown())
	})
	if err != nil {
		return YearlySummary{}, err
	}
	out.TotalIncome = core.Round2(out.TotalIncome)
	out.TotalExpense = core.Round2(out.TotalExpense)
	out.Investments = core.Round2(out.Investments)
	out.Savings = core.Round2(out.TotalIncome.Sub(out.TotalExpense).Sub(out.Investments))
	return out, nil
}

// YearlyCategoryDistribution merges the twelve monthly category rankings.
// The synthetic Investments category is dropped from the merge and re-added
// once at the end only when includeInvestments is set.
func YearlyCategoryDistribution(ctx context.Context, store records.MonthReader, year int, includeInvestments bool) (CategoryDistribution, error) {
	var cats []core.CategorySummary
	pos := make(map[string]int)
	invested := decimal.Zero

	err := eachMonth(ctx, store, year, func(s MonthlySummary) {
		for _, c := range s.TopCategories {
			if c.Name == core.InvestmentsCategory {
				continue
			}
			i, ok := pos[c.Name]
			if !ok {
				i = len(cats)
				pos[c.Name] = i
				cats = append(cats, core.CategorySummary{Name: c.Name, Amount: decimal.Zero})
			}
			cats[i].Amount = cats[i].Amount.Add(c.Amount)
		}
		invested = invested.Add(s.InvestmentsTotal)
	})
	if err != nil {
		return CategoryDistribution{}, err
	}

	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.Amount)
	}
	if includeInvestments && invested.IsPositive() {
		cats = append(cats, core.CategorySummary{Name: core.InvestmentsCategory, Amount: invested})
	}

	return CategoryDistribution{
		Year:               year,
		IncludeInvestments: includeInvestments,
		TopCategories:      rank(cats),
		TotalExpense:       core.Round2(total),
		TotalInvestments:   core.Round2(invested),
	}, nil
}
