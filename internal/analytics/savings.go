package analytics

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type SavingsComparison struct {
	AccountBalance              decimal.Decimal `json:"account_balance"`
	TotalInvested               decimal.Decimal `json:"total_invested"`
	TotalCurrentInvestmentValue decimal.Decimal `json:"total_current_investment_value"`
	InvestmentProfitLoss        decimal.Decimal `json:"investment_profit_loss"`
	CashSavings                 decimal.Decimal `json:"cash_savings"`
	Difference                  decimal.Decimal `json:"difference"`
}

// CompareSavings sets the month's account balance (income minus expense of
// monthTxs) against everything ever put into investments.
func CompareSavings(monthTxs []core.Transaction, investments []core.SavingsInvestment) SavingsComparison {
	balance := decimal.Zero
	for _, t := range monthTxs {
		switch t.Kind {
		case core.Income:
			balance = balance.Add(t.Amount)
		case core.Expense:
			balance = balance.Sub(t.Amount)
		}
	}
	invested, current := decimal.Zero, decimal.Zero
	for _, inv := range investments {
		invested = invested.Add(inv.InitialAmount)
		current = current.Add(inv.CurrentValue)
	}
	cash := balance.Sub(invested)
	return SavingsComparison{
		AccountBalance:              core.Round2(balance),
		TotalInvested:               core.Round2(invested),
		TotalCurrentInvestmentValue: core.Round2(current),
		InvestmentProfitLoss:        core.Round2(current.Sub(invested)),
		CashSavings:                 core.Round2(cash),
		Difference:                  core.Round2(cash),
	}
}
