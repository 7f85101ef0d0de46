package analytics

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func months(t *testing.T, rows []MonthBreakdown) []string {
	t.Helper()
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Month
	}
	return out
}

func TestSpendingTrendCrossesYear(t *testing.T) {
	r := yearFixture()
	rows, err := Collect(SpendingTrend(context.Background(), r, 3, core.NewDate(2024, 2, 10)))
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	got := months(t, rows)
	want := []string{"2023-12", "2024-01", "2024-02"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("months = %v, want %v", got, want)
		}
	}
	if !rows[0].Expense.Equal(d("999")) {
		t.Fatalf("december expense = %s", rows[0].Expense)
	}
}

func TestSpendingTrendIsLazyAndRestartable(t *testing.T) {
	r := yearFixture()
	seq := SpendingTrend(context.Background(), r, 6, core.NewDate(2024, 6, 1))
	if r.monthCalls != 0 {
		t.Fatalf("building the sequence must not query the store")
	}
	for range seq {
		break
	}
	if r.monthCalls != 1 {
		t.Fatalf("expected one month query, got %d", r.monthCalls)
	}

	first, _ := Collect(seq)
	second, _ := Collect(seq)
	if len(first) != 6 || len(second) != 6 || first[0].Month != second[0].Month {
		t.Fatalf("sequence should restart: %v / %v", months(t, first), months(t, second))
	}
}

func TestSpendingTrendForYear(t *testing.T) {
	today := core.NewDate(2024, 4, 18)
	tests := []struct {
		year int
		want int
	}{
		{2023, 12},
		{2024, 4},
		{2025, 0},
	}
	for _, tt := range tests {
		rows, err := Collect(SpendingTrendForYear(context.Background(), yearFixture(), tt.year, today))
		if err != nil {
			t.Fatalf("%d: %v", tt.year, err)
		}
		if len(rows) != tt.want {
			t.Errorf("%d: got %d months, want %d", tt.year, len(rows), tt.want)
		}
	}
}

func TestSpendingTrendStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(SpendingTrend(context.Background(), &fakeReader{err: boom}, 3, core.NewDate(2024, 2, 10)))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
