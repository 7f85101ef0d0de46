package services

import (
	"testing"

	"fintrack/internal/core"
)

func TestMonthlyStepper_Next(t *testing.T) {
	tests := []struct {
		name string
		last core.Date
		want string
	}{
		{"mid month", core.NewDate(2024, 5, 15), "2024-06-15"},
		{"end of january in leap year", core.NewDate(2024, 1, 31), "2024-02-29"},
		{"end of january", core.NewDate(2023, 1, 31), "2023-02-28"},
		{"december", core.NewDate(2023, 12, 20), "2024-01-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (MonthlyStepper{}).Next(tt.last).String(); got != tt.want {
				t.Errorf("Next(%s) = %s, want %s", tt.last, got, tt.want)
			}
		})
	}
}

func TestYearlyStepper_Next(t *testing.T) {
	if got := (YearlyStepper{}).Next(core.NewDate(2024, 2, 29)).String(); got != "2025-02-28" {
		t.Errorf("Next(2024-02-29) = %s", got)
	}
	if got := (YearlyStepper{}).Next(core.NewDate(2023, 6, 1)).String(); got != "2024-06-01" {
		t.Errorf("Next(2023-06-01) = %s", got)
	}
}

func TestGetPeriodStepper(t *testing.T) {
	for _, rt := range []core.RecurringType{core.Monthly, core.Yearly} {
		if _, err := GetPeriodStepper(rt); err != nil {
			t.Errorf("GetPeriodStepper(%s) error = %v", rt, err)
		}
	}
	if _, err := GetPeriodStepper("weekly"); err == nil {
		t.Error("GetPeriodStepper should fail for unknown types")
	}
}
