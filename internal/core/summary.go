package core

import "github.com/shopspring/decimal"

// InvestmentsCategory is the synthetic category that carries a period's
// investment contributions in category breakdowns.
const InvestmentsCategory = "Investments"

// CategorySummary represents an amount aggregated by category name.
type CategorySummary struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}
