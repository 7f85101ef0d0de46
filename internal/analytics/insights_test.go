package analytics

import (
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestGenerateInsights(t *testing.T) {
	tests := []struct {
		name    string
		summary MonthlySummary
		want    []Severity
	}{
		{
			name:    "no income no expense",
			summary: MonthlySummary{TotalIncome: d("0"), TotalExpense: d("0"), Savings: d("0")},
			want:    nil,
		},
		{
			name:    "expenses 95 percent of income",
			summary: MonthlySummary{TotalIncome: d("1000"), TotalExpense: d("950"), Savings: d("50")},
			want:    []Severity{SeverityAlert, SeverityWarning},
		},
		{
			name:    "high ratio",
			summary: MonthlySummary{TotalIncome: d("1000"), TotalExpense: d("850"), Savings: d("150")},
			want:    []Severity{SeverityWarning},
		},
		{
			name:    "overspending",
			summary: MonthlySummary{TotalIncome: d("1000"), TotalExpense: d("1200"), Savings: d("-200")},
			want:    []Severity{SeverityAlert, SeverityAlert},
		},
		{
			name:    "healthy saver",
			summary: MonthlySummary{TotalIncome: d("1000"), TotalExpense: d("500"), Savings: d("500")},
			want:    []Severity{SeverityInfo},
		},
		{
			name:    "between 10 and 20 percent",
			summary: MonthlySummary{TotalIncome: d("1000"), TotalExpense: d("700"), Savings: d("150"), InvestmentsTotal: d("150")},
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateInsights(tt.summary)
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want severities %v", got, tt.want)
			}
			for i := range got {
				if got[i].Severity != tt.want[i] {
					t.Fatalf("insight %d = %+v, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGenerateInsightsTopCategory(t *testing.T) {
	s := MonthlySummary{
		TotalIncome:  d("0"),
		TotalExpense: d("1000"),
		Savings:      d("-1000"),
		TopCategories: []core.CategorySummary{
			{Name: "Rent", Amount: d("455")},
			{Name: "Food", Amount: d("300")},
		},
	}
	got := GenerateInsights(s)
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	last := got[len(got)-1]
	if last.Severity != SeverityInfo || !strings.HasPrefix(last.Message, "Rent accounts for 45.5% of your expenses.") {
		t.Fatalf("unexpected category insight %+v", last)
	}

	s.TopCategories[0].Amount = d("400")
	for _, in := range GenerateInsights(s) {
		if strings.Contains(in.Message, "accounts for") {
			t.Fatalf("exactly 40%% must not trigger: %+v", in)
		}
	}
}

func TestGenerateInsightsNoDuplicates(t *testing.T) {
	s := MonthlySummary{TotalIncome: d("1000"), TotalExpense: d("2000"), Savings: d("-1000")}
	seen := map[string]bool{}
	for _, in := range GenerateInsights(s) {
		if seen[in.Message] {
			t.Fatalf("duplicate insight %q", in.Message)
		}
		seen[in.Message] = true
	}
}
