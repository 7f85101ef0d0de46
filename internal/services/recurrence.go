package services

import (
	"fmt"

	"fintrack/internal/core"
)

// InvestmentResult describes one pass over recurring investments.
type InvestmentResult struct {
	Processed   int
	Initialized int
	Skipped     int
	Changed     []core.SavingsInvestment
}

// ApplyInvestmentRecurrence adds at most one period's contribution to each
// due recurring investment in invs, mutating the slice elements in place.
//
// An investment without a last recurring date is only initialized to today;
// its current value is left untouched. A second call with the same today is
// a no-op.
func ApplyInvestmentRecurrence(invs []core.SavingsInvestment, today core.Date) InvestmentResult {
	var res InvestmentResult
	for i := range invs {
		inv := &invs[i]
		if !inv.IsRecurring {
			continue
		}
		if inv.LastRecurringDate == nil {
			t := today
			inv.LastRecurringDate = &t
			res.Initialized++
			res.Changed = append(res.Changed, *inv)
			continue
		}

		stepper, err := GetPeriodStepper(inv.RecurringType)
		if err != nil || inv.RecurringAmount == nil {
			res.Skipped++
			continue
		}
		if today.Before(stepper.Next(*inv.LastRecurringDate).Time) {
			res.Skipped++
			continue
		}

		t := today
		inv.CurrentValue = inv.CurrentValue.Add(*inv.RecurringAmount)
		inv.LastRecurringDate = &t
		res.Processed++
		res.Changed = append(res.Changed, *inv)
	}
	return res
}

// SalaryResult describes one pass over salaries.
type SalaryResult struct {
	Processed int
	Skipped   int
	Changed   []core.Salary
	Entries   []core.Transaction
}

// SalaryEntry builds the income transaction posted for s on day.
func SalaryEntry(s core.Salary, day core.Date) core.Transaction {
	return core.Transaction{
		Date:          day,
		Amount:        s.Amount,
		Kind:          core.Income,
		Category:      core.SalaryCategory,
		Description:   fmt.Sprintf("Monthly salary: %s", s.Name),
		PaymentMethod: core.Bank,
	}
}

// ApplySalaryEntries posts one income entry for each active salary not yet
// added in today's calendar month, mutating the slice elements in place.
// Salaries starting after today, or last added in a later month, are left
// alone.
func ApplySalaryEntries(salaries []core.Salary, today core.Date) SalaryResult {
	var res SalaryResult
	monthStart := today.FirstOfMonth()
	for i := range salaries {
		s := &salaries[i]
		if !s.IsActive {
			continue
		}
		if s.StartDate.After(today.Time) {
			res.Skipped++
			continue
		}
		if s.LastAddedDate != nil && !s.LastAddedDate.Before(monthStart.Time) {
			res.Skipped++
			continue
		}

		t := today
		s.LastAddedDate = &t
		res.Processed++
		res.Changed = append(res.Changed, *s)
		res.Entries = append(res.Entries, SalaryEntry(*s, today))
	}
	return res
}
