package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// RecurrenceStore is what the processor reads and commits.
type RecurrenceStore interface {
	ActiveSalaries(ctx context.Context) ([]core.Salary, error)
	RecurringInvestments(ctx context.Context) ([]core.SavingsInvestment, error)
	records.RecurrenceCommitter
}

// RunStatus is the outcome of one recurrence kind.
type RunStatus struct {
	Processed   int    `json:"processed_count"`
	Skipped     int    `json:"skipped_count"`
	Initialized int    `json:"initialized_count,omitempty"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message"`
}

// Report is the outcome of a full recurrence run.
type Report struct {
	Salaries     RunStatus `json:"salaries"`
	Investments  RunStatus `json:"investments"`
	AllProcessed int       `json:"all_processed"`
}

// RecurringProcessor posts salary entries and recurring investment
// contributions that have come due.
type RecurringProcessor struct {
	store    RecurrenceStore
	notifier *Notifier
}

// NewRecurringProcessor creates a new recurrence processor
func NewRecurringProcessor(store RecurrenceStore, notifier *Notifier) *RecurringProcessor {
	return &RecurringProcessor{store: store, notifier: notifier}
}

// Run applies salaries and investments for today and commits both in one
// batch. Failures are reported in the returned Report, never raised, and
// are not retried.
func (p *RecurringProcessor) Run(ctx context.Context, today core.Date) Report {
	var rep Report
	if p.store == nil {
		err := fmt.Errorf("processor not properly initialized")
		rep.Salaries = failed("salary auto-entries", err)
		rep.Investments = failed("recurring investments", err)
		return rep
	}

	salaries, err := p.store.ActiveSalaries(ctx)
	if err != nil {
		err = fmt.Errorf("load active salaries: %w", err)
		p.logFailure(ctx, err)
		rep.Salaries = failed("salary auto-entries", err)
		rep.Investments = failed("recurring investments", err)
		return rep
	}
	investments, err := p.store.RecurringInvestments(ctx)
	if err != nil {
		err = fmt.Errorf("load recurring investments: %w", err)
		p.logFailure(ctx, err)
		rep.Salaries = failed("salary auto-entries", err)
		rep.Investments = failed("recurring investments", err)
		return rep
	}

	sal := ApplySalaryEntries(salaries, today)
	inv := ApplyInvestmentRecurrence(investments, today)
	batch := records.RecurrenceBatch{
		Investments:  inv.Changed,
		Salaries:     sal.Changed,
		Transactions: sal.Entries,
	}
	if err := p.commit(ctx, batch); err != nil {
		rep.Salaries = failed("salary auto-entries", err)
		rep.Investments = failed("recurring investments", err)
		return rep
	}

	rep.Salaries = salaryStatus(sal)
	rep.Investments = investmentStatus(inv)
	rep.AllProcessed = sal.Processed + inv.Processed

	slog.InfoContext(ctx, "Recurrence run complete",
		"date", today.String(),
		"salaries_processed", sal.Processed,
		"investments_processed", inv.Processed,
		"investments_initialized", inv.Initialized)
	return rep
}

// ProcessInvestments runs only the investment half.
func (p *RecurringProcessor) ProcessInvestments(ctx context.Context, today core.Date) RunStatus {
	if p.store == nil {
		return failed("recurring investments", fmt.Errorf("processor not properly initialized"))
	}
	investments, err := p.store.RecurringInvestments(ctx)
	if err != nil {
		err = fmt.Errorf("load recurring investments: %w", err)
		p.logFailure(ctx, err)
		return failed("recurring investments", err)
	}
	res := ApplyInvestmentRecurrence(investments, today)
	if err := p.commit(ctx, records.RecurrenceBatch{Investments: res.Changed}); err != nil {
		return failed("recurring investments", err)
	}
	return investmentStatus(res)
}

// ProcessSalaries runs only the salary half.
func (p *RecurringProcessor) ProcessSalaries(ctx context.Context, today core.Date) RunStatus {
	if p.store == nil {
		return failed("salary auto-entries", fmt.Errorf("processor not properly initialized"))
	}
	salaries, err := p.store.ActiveSalaries(ctx)
	if err != nil {
		err = fmt.Errorf("load active salaries: %w", err)
		p.logFailure(ctx, err)
		return failed("salary auto-entries", err)
	}
	res := ApplySalaryEntries(salaries, today)
	batch := records.RecurrenceBatch{Salaries: res.Changed, Transactions: res.Entries}
	if err := p.commit(ctx, batch); err != nil {
		return failed("salary auto-entries", err)
	}
	return salaryStatus(res)
}

func (p *RecurringProcessor) commit(ctx context.Context, b records.RecurrenceBatch) error {
	if b.Empty() {
		return nil
	}
	if err := p.store.CommitRecurrence(ctx, b); err != nil {
		err = fmt.Errorf("commit recurrence: %w", err)
		p.logFailure(ctx, err)
		return err
	}
	p.notifier.Changed(ctx, "recurrence", 0, ActionRecurring)
	return nil
}

func (p *RecurringProcessor) logFailure(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "Recurrence run failed", "error", err)
}

func failed(what string, err error) RunStatus {
	return RunStatus{
		Error:   err.Error(),
		Message: fmt.Sprintf("Error processing %s: %v", what, err),
	}
}

func salaryStatus(r SalaryResult) RunStatus {
	return RunStatus{
		Processed: r.Processed,
		Skipped:   r.Skipped,
		Message:   fmt.Sprintf("Salary auto-entries: %d added, %d already exist", r.Processed, r.Skipped),
	}
}

func investmentStatus(r InvestmentResult) RunStatus {
	return RunStatus{
		Processed:   r.Processed,
		Skipped:     r.Skipped,
		Initialized: r.Initialized,
		Message:     fmt.Sprintf("Recurring investments: %d processed, %d not due", r.Processed, r.Skipped),
	}
}
