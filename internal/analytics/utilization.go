package analytics

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type CardUtilization struct {
	CardID             int64           `json:"card_id"`
	CardName           string          `json:"card_name"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	AmountSpent        decimal.Decimal `json:"amount_spent"`
	UtilizationPercent decimal.Decimal `json:"utilization_percent"`
	DaysToDue          int             `json:"days_to_due"`
	CycleStart         core.Date       `json:"cycle_start"`
	CycleEnd           core.Date       `json:"cycle_end"`
}

// BillingCycle returns the inclusive statement window for today: the latest
// cycle that started on or before today. A cycle whose end day is before its
// start day spans two calendar months. When start and end fall in the same
// month, days between the end and the next start belong to no cycle and map
// to the one that just closed. Days past the end of a short month are
// clamped to its last day.
func BillingCycle(card core.CreditCard, today core.Date) (start, end core.Date) {
	y, m := today.Year(), today.Month()
	s, e := card.BillingCycleStart, card.BillingCycleEnd

	if e < s {
		if today.Day() >= s {
			return core.ClampDate(y, m, s), core.ClampDate(y, m+1, e)
		}
		return core.ClampDate(y, m-1, s), core.ClampDate(y, m, e)
	}
	if today.Day() < s {
		m--
	}
	return core.ClampDate(y, m, s), core.ClampDate(y, m, e)
}

// DaysToDue counts calendar days from today to the next due day, today
// included.
func DaysToDue(card core.CreditCard, today core.Date) int {
	due := core.ClampDate(today.Year(), today.Month(), card.DueDay)
	if due.Before(today.Time) {
		due = core.ClampDate(today.Year(), today.Month()+1, card.DueDay)
	}
	return today.DaysUntil(due)
}

// Utilization sums the card's expenses inside the current billing cycle.
// Bill settlements recorded as transactions are not spending and are
// skipped.
func Utilization(card core.CreditCard, txs []core.Transaction, today core.Date) CardUtilization {
	start, end := BillingCycle(card, today)
	spent := decimal.Zero
	for _, t := range txs {
		if !t.OnCard(card.ID) || t.Kind != core.Expense || t.IsPayment {
			continue
		}
		if t.Date.Before(start.Time) || t.Date.After(end.Time) {
			continue
		}
		spent = spent.Add(t.Amount)
	}
	return CardUtilization{
		CardID:             card.ID,
		CardName:           card.Name,
		CreditLimit:        card.CreditLimit,
		AmountSpent:        core.Round2(spent),
		UtilizationPercent: core.Round2(core.Percent(spent, card.CreditLimit)),
		DaysToDue:          DaysToDue(card, today),
		CycleStart:         start,
		CycleEnd:           end,
	}
}
