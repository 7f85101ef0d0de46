package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

// currentAnalytics is the body of /analytics/summary/current.
type currentAnalytics struct {
	MonthlySummary analytics.MonthlySummary `json:"monthly_summary"`
	Insights       []analytics.Insight      `json:"insights"`
}

// monthSummary computes one month's summary, going through the summary
// cache when there is one.
func (s *Server) monthSummary(ctx context.Context, year, month int) (analytics.MonthlySummary, error) {
	load := func() (analytics.MonthlySummary, error) {
		txs, err := s.ledger.TransactionsByMonth(ctx, year, month)
		if err != nil {
			return analytics.MonthlySummary{}, fmt.Errorf("load transactions of %s: %w", core.MonthLabel(year, month), err)
		}
		invs, err := s.ledger.ListInvestments(ctx)
		if err != nil {
			return analytics.MonthlySummary{}, fmt.Errorf("load investments: %w", err)
		}
		return analytics.Summarize(txs, invs, year, month), nil
	}
	if s.summaries == nil {
		return load()
	}
	return s.summaries.GetOrLoad(core.MonthLabel(year, month), load)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		badParam(w, err)
		return
	}
	sum, err := s.monthSummary(r.Context(), year, month)
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathPeriod(r)
	if err != nil {
		badParam(w, err)
		return
	}
	sum, err := s.monthSummary(r.Context(), year, month)
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}
	writeJSON(w, http.StatusOK, analytics.GenerateInsights(sum))
}

func (s *Server) handleCurrentSummary(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	sum, err := s.monthSummary(r.Context(), today.Year(), today.Month())
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}
	writeJSON(w, http.StatusOK, currentAnalytics{
		MonthlySummary: sum,
		Insights:       analytics.GenerateInsights(sum),
	})
}

func (s *Server) handleYearlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		badParam(w, err)
		return
	}
	sum, err := analytics.ComputeYearlySummary(r.Context(), s.ledger, year)
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleYearlyCategories(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		badParam(w, err)
		return
	}
	withInv, err := queryBool(r, "include_investments")
	if err != nil {
		badParam(w, err)
		return
	}
	dist, err := analytics.YearlyCategoryDistribution(r.Context(), s.ledger, year, withInv)
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

// handleYearlyReport renders the year as a PDF statement. The document is
// built in memory so a rendering failure can still produce a JSON error.
func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		badParam(w, err)
		return
	}
	withInv, err := queryBool(r, "include_investments")
	if err != nil {
		badParam(w, err)
		return
	}
	sum, err := analytics.ComputeYearlySummary(r.Context(), s.ledger, year)
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}
	dist, err := analytics.YearlyCategoryDistribution(r.Context(), s.ledger, year, withInv)
	if err != nil {
		fail(w, r, err, "Summary")
		return
	}

	var buf bytes.Buffer
	if err := report.YearlyPDF(&buf, sum, dist, s.now()); err != nil {
		fail(w, r, fmt.Errorf("render yearly report: %w", err), "Report")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Yearly report generated",
		log.FieldOperation, log.OpReport,
		log.FieldYear, year,
		"bytes", buf.Len())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fintrack-%d.pdf"`, year))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleSpendingTrend(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "months", defaultTrendMonths, 1, maxTrendMonths)
	if err != nil {
		badParam(w, err)
		return
	}
	trend, err := analytics.Collect(analytics.SpendingTrend(r.Context(), s.ledger, n, s.today()))
	if err != nil {
		fail(w, r, err, "Trend")
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleSpendingTrendForYear(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		badParam(w, err)
		return
	}
	trend, err := analytics.Collect(analytics.SpendingTrendForYear(r.Context(), s.ledger, year, s.today()))
	if err != nil {
		fail(w, r, err, "Trend")
		return
	}
	writeJSON(w, http.StatusOK, trend)
}
