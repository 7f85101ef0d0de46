package analytics

import (
	"testing"

	"fintrack/internal/core"
)

func TestCompareSavings(t *testing.T) {
	day := core.NewDate(2024, 6, 1)
	txs := []core.Transaction{
		tx(core.Income, day, "5000", "Salary"),
		tx(core.Expense, day, "1200", "Rent"),
	}
	invs := []core.SavingsInvestment{
		{InitialAmount: d("1000"), CurrentValue: d("1100")},
		{InitialAmount: d("500"), CurrentValue: d("450.5")},
	}
	got := CompareSavings(txs, invs)
	checks := map[string][2]string{
		"account_balance": {got.AccountBalance.String(), "3800"},
		"total_invested":  {got.TotalInvested.String(), "1500"},
		"current_value":   {got.TotalCurrentInvestmentValue.String(), "1550.5"},
		"profit_loss":     {got.InvestmentProfitLoss.String(), "50.5"},
		"cash_savings":    {got.CashSavings.String(), "2300"},
		"difference":      {got.Difference.String(), "2300"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %s, want %s", name, c[0], c[1])
		}
	}
}
