package analytics

import (
	"testing"

	"fintrack/internal/core"
)

func TestBillingCycle(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		today      core.Date
		want       [2]string
	}{
		{"spans month boundary before start day", 20, 19, core.NewDate(2024, 6, 10), [2]string{"2024-05-20", "2024-06-19"}},
		{"spans month boundary after start day", 20, 19, core.NewDate(2024, 6, 25), [2]string{"2024-06-20", "2024-07-19"}},
		{"spans year boundary", 20, 19, core.NewDate(2024, 12, 21), [2]string{"2024-12-20", "2025-01-19"}},
		{"same month", 1, 28, core.NewDate(2024, 2, 15), [2]string{"2024-02-01", "2024-02-28"}},
		{"same month before start day", 5, 25, core.NewDate(2024, 1, 3), [2]string{"2023-12-05", "2023-12-25"}},
		{"same month after end day", 5, 25, core.NewDate(2024, 6, 28), [2]string{"2024-06-05", "2024-06-25"}},
		{"same month early in month", 5, 25, core.NewDate(2024, 6, 3), [2]string{"2024-05-05", "2024-05-25"}},
		{"end clamped to short month", 1, 31, core.NewDate(2024, 4, 10), [2]string{"2024-04-01", "2024-04-30"}},
		{"start clamped in february", 31, 30, core.NewDate(2023, 3, 5), [2]string{"2023-02-28", "2023-03-30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := core.CreditCard{BillingCycleStart: tt.start, BillingCycleEnd: tt.end}
			s, e := BillingCycle(card, tt.today)
			if s.String() != tt.want[0] || e.String() != tt.want[1] {
				t.Fatalf("cycle = %s..%s, want %s..%s", s, e, tt.want[0], tt.want[1])
			}
		})
	}
}

func TestUtilizationAcrossMonthBoundary(t *testing.T) {
	id, other := int64(1), int64(2)
	card := core.CreditCard{ID: id, Name: "Gold", BillingCycleStart: 20, BillingCycleEnd: 19, DueDay: 5, CreditLimit: d("1000")}

	onCard := func(tr core.Transaction, cardID *int64) core.Transaction {
		tr.CreditCardID = cardID
		tr.PaymentMethod = core.Card
		return tr
	}
	payment := onCard(tx(core.Expense, core.NewDate(2024, 6, 1), "500", "Card bill"), &id)
	payment.IsPayment = true

	txs := []core.Transaction{
		onCard(tx(core.Expense, core.NewDate(2024, 5, 19), "1000", "Before"), &id),
		onCard(tx(core.Expense, core.NewDate(2024, 5, 20), "100", "First day"), &id),
		onCard(tx(core.Expense, core.NewDate(2024, 6, 19), "200", "Last day"), &id),
		onCard(tx(core.Expense, core.NewDate(2024, 6, 20), "1000", "After"), &id),
		onCard(tx(core.Expense, core.NewDate(2024, 6, 1), "1000", "Other card"), &other),
		onCard(tx(core.Income, core.NewDate(2024, 6, 1), "1000", "Refund"), &id),
		payment,
	}
	u := Utilization(card, txs, core.NewDate(2024, 6, 10))
	if !u.AmountSpent.Equal(d("300")) {
		t.Fatalf("spent = %s, want 300", u.AmountSpent)
	}
	if !u.UtilizationPercent.Equal(d("30")) {
		t.Fatalf("percent = %s, want 30", u.UtilizationPercent)
	}
	if u.DaysToDue != 25 {
		t.Fatalf("days to due = %d, want 25", u.DaysToDue)
	}
}

func TestUtilizationZeroLimit(t *testing.T) {
	id := int64(1)
	tr := tx(core.Expense, core.NewDate(2024, 6, 5), "10", "X")
	tr.CreditCardID = &id
	u := Utilization(core.CreditCard{ID: id, BillingCycleStart: 1, BillingCycleEnd: 28, DueDay: 10}, []core.Transaction{tr}, core.NewDate(2024, 6, 10))
	if !u.UtilizationPercent.IsZero() {
		t.Fatalf("percent = %s, want 0", u.UtilizationPercent)
	}
	if u.DaysToDue != 0 {
		t.Fatalf("due today should be 0 days, got %d", u.DaysToDue)
	}
}

func TestDaysToDueIsCalendarAccurate(t *testing.T) {
	tests := []struct {
		due   int
		today core.Date
		want  int
	}{
		{31, core.NewDate(2023, 2, 10), 18},
		{5, core.NewDate(2024, 1, 31), 5},
		{15, core.NewDate(2024, 3, 1), 14},
		{1, core.NewDate(2024, 12, 2), 30},
	}
	for _, tt := range tests {
		if got := DaysToDue(core.CreditCard{DueDay: tt.due}, tt.today); got != tt.want {
			t.Errorf("due %d on %s = %d, want %d", tt.due, tt.today, got, tt.want)
		}
	}
}
