package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

type Insight struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

var (
	pct10 = decimal.NewFromInt(10)
	pct20 = decimal.NewFromInt(20)
	pct40 = decimal.NewFromInt(40)
	pct80 = decimal.NewFromInt(80)
	pct90 = decimal.NewFromInt(90)
)

// GenerateInsights evaluates the spending rules against s in a fixed order:
// expense ratio, negative savings, savings rate, top category share.
func GenerateInsights(s MonthlySummary) []Insight {
	out := []Insight{}
	hasIncome := s.TotalIncome.IsPositive()

	if hasIncome {
		ratio := core.Percent(s.TotalExpense, s.TotalIncome)
		switch {
		case ratio.GreaterThan(pct90):
			out = append(out, Insight{
				Message:  "Your expenses are very close to your income. Consider reducing discretionary spending.",
				Severity: SeverityAlert,
			})
		case ratio.GreaterThan(pct80):
			out = append(out, Insight{
				Message:  "Your expense-to-income ratio is high. Review your spending categories.",
				Severity: SeverityWarning,
			})
		}
	}

	if s.Savings.IsNegative() {
		out = append(out, Insight{
			Message:  "You are spending more than you earn. This is unsustainable long-term.",
			Severity: SeverityAlert,
		})
	}

	if hasIncome {
		rate := core.Percent(s.Savings, s.TotalIncome)
		switch {
		case !rate.IsNegative() && rate.LessThan(pct10):
			out = append(out, Insight{
				Message:  "Your savings rate is below 10%. Try to save at least 10-20% of your income.",
				Severity: SeverityWarning,
			})
		case rate.GreaterThanOrEqual(pct20):
			out = append(out, Insight{
				Message:  "Great! You're saving 20% or more of your income. Keep it up!",
				Severity: SeverityInfo,
			})
		}
	}

	if len(s.TopCategories) > 0 && s.TotalExpense.IsPositive() {
		top := s.TopCategories[0]
		share := core.Percent(top.Amount, s.TotalExpense)
		if share.GreaterThan(pct40) {
			out = append(out, Insight{
				Message:  fmt.Sprintf("%s accounts for %s%% of your expenses. Consider budgeting this category.", top.Name, share.StringFixed(1)),
				Severity: SeverityInfo,
			})
		}
	}
	return out
}
