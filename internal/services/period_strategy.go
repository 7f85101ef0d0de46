// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurring investment periods.
// Each recurring type (monthly, yearly) has its own stepper that computes the
// next due date from the last one.

package services

import (
	"fmt"

	"fintrack/internal/core"
)

// PeriodStepper is the strategy interface for advancing a recurrence by one
// period.
type PeriodStepper interface {
	// Next returns the date the period after last becomes due.
	Next(last core.Date) core.Date
}

// MonthlyStepper advances one calendar month, clamping to the end of shorter
// months (Jan 31 -> Feb 28/29).
type MonthlyStepper struct{}

func (MonthlyStepper) Next(last core.Date) core.Date {
	return last.AddMonths(1)
}

// YearlyStepper advances one calendar year (Feb 29 -> Feb 28).
type YearlyStepper struct{}

func (YearlyStepper) Next(last core.Date) core.Date {
	return last.AddYears(1)
}

var periodSteppers = map[core.RecurringType]PeriodStepper{
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// GetPeriodStepper returns the stepper for a recurring type.
func GetPeriodStepper(rt core.RecurringType) (PeriodStepper, error) {
	stepper, ok := periodSteppers[rt]
	if !ok {
		return nil, fmt.Errorf("unknown recurring type: %q", rt)
	}
	return stepper, nil
}
