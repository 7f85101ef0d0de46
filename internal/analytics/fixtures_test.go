package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func datep(y, m, day int) *core.Date {
	v := core.NewDate(y, m, day)
	return &v
}

func tx(kind core.TransactionKind, date core.Date, amount, category string) core.Transaction {
	return core.Transaction{
		Date:          date,
		Amount:        d(amount),
		Kind:          kind,
		Category:      category,
		PaymentMethod: core.Cash,
	}
}

// fakeReader serves transactions by month and counts month queries.
type fakeReader struct {
	txs         []core.Transaction
	investments []core.SavingsInvestment
	monthCalls  int
	err         error
}

func (f *fakeReader) TransactionsByMonth(_ context.Context, year, month int) ([]core.Transaction, error) {
	f.monthCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Transaction
	for _, t := range f.txs {
		if t.Date.InMonth(year, month) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeReader) ListInvestments(context.Context) ([]core.SavingsInvestment, error) {
	return f.investments, nil
}
