package analytics

import (
	"context"
	"fmt"
	"iter"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// SpendingTrend yields the last n calendar months ending at today's month,
// oldest first. Each month is queried only when the consumer asks for it,
// and every range over the sequence starts again from the oldest month.
func SpendingTrend(ctx context.Context, store records.MonthReader, n int, today core.Date) iter.Seq2[MonthBreakdown, error] {
	first := today.FirstOfMonth().AddMonths(-(n - 1))
	return monthSeq(ctx, store, first, n)
}

// SpendingTrendForYear yields the elapsed months of year: up to today's
// month for the current year, all twelve for a past year and none for a
// future one.
func SpendingTrendForYear(ctx context.Context, store records.MonthReader, year int, today core.Date) iter.Seq2[MonthBreakdown, error] {
	n := 12
	switch {
	case year > today.Year():
		n = 0
	case year == today.Year():
		n = today.Month()
	}
	return monthSeq(ctx, store, core.NewDate(year, 1, 1), n)
}

func monthSeq(ctx context.Context, store records.MonthReader, first core.Date, n int) iter.Seq2[MonthBreakdown, error] {
	return func(yield func(MonthBreakdown, error) bool) {
		if n <= 0 {
			return
		}
		investments, err := store.ListInvestments(ctx)
		if err != nil {
			yield(MonthBreakdown{}, fmt.Errorf("list investments: %w", err))
			return
		}
		for i := range n {
			d := first.AddMonths(i)
			txs, err := store.TransactionsByMonth(ctx, d.Year(), d.Month())
			if err != nil {
				yield(MonthBreakdown{}, fmt.Errorf("transactions %s: %w", core.MonthLabel(d.Year(), d.Month()), err))
				return
			}
			if !yield(Summarize(txs, investments, d.Year(), d.Month()).Breakdown(), nil) {
				return
			}
		}
	}
}

// Collect drains a trend sequence, stopping at the first error.
func Collect(seq iter.Seq2[MonthBreakdown, error]) ([]MonthBreakdown, error) {
	out := []MonthBreakdown{}
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
