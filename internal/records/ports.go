// Package records defines the persistence ports shared by every store
// implementation.
package records

import (
	"context"

	"fintrack/internal/core"
)

// Page bounds a list query. A zero Limit means no limit.
type Page struct {
	Skip  int
	Limit int
}

// Ports for outbound persistence adapters.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, p Page) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error

		// TransactionsByMonth returns transactions dated in the half-open
		// range [first of month, first of next month).
		TransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error)
		// TransactionsInRange returns transactions with start <= date <= end.
		TransactionsInRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error)
		TransactionsByCard(ctx context.Context, cardID int64) ([]core.Transaction, error)
	}

	CardStore interface {
		CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		GetCard(ctx context.Context, id int64) (core.CreditCard, error)
		ListCards(ctx context.Context) ([]core.CreditCard, error)
		UpdateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error)
		DeleteCard(ctx context.Context, id int64) error
	}

	PaymentStore interface {
		CreatePayment(ctx context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error)
		GetPayment(ctx context.Context, id int64) (core.CreditCardPayment, error)
		ListPayments(ctx context.Context, p Page) ([]core.CreditCardPayment, error)
		UpdatePayment(ctx context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error)
		DeletePayment(ctx context.Context, id int64) error

		PaymentsByCard(ctx context.Context, cardID int64) ([]core.CreditCardPayment, error)
		PaymentsInRange(ctx context.Context, start, end core.Date) ([]core.CreditCardPayment, error)
	}

	InvestmentStore interface {
		CreateInvestment(ctx context.Context, s core.SavingsInvestment) (core.SavingsInvestment, error)
		GetInvestment(ctx context.Context, id int64) (core.SavingsInvestment, error)
		ListInvestments(ctx context.Context) ([]core.SavingsInvestment, error)
		UpdateInvestment(ctx context.Context, s core.SavingsInvestment) (core.SavingsInvestment, error)
		DeleteInvestment(ctx context.Context, id int64) error

		RecurringInvestments(ctx context.Context) ([]core.SavingsInvestment, error)
	}

	SalaryStore interface {
		CreateSalary(ctx context.Context, s core.Salary) (core.Salary, error)
		GetSalary(ctx context.Context, id int64) (core.Salary, error)
		ListSalaries(ctx context.Context) ([]core.Salary, error)
		UpdateSalary(ctx context.Context, s core.Salary) (core.Salary, error)
		DeleteSalary(ctx context.Context, id int64) error

		ActiveSalaries(ctx context.Context) ([]core.Salary, error)
	}

	// RecurrenceCommitter persists the outcome of one recurrence run. The
	// batch is applied atomically: all rows or none.
	RecurrenceCommitter interface {
		CommitRecurrence(ctx context.Context, b RecurrenceBatch) error
	}

	// MonthReader is the slice of the store the aggregation engine needs.
	MonthReader interface {
		TransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error)
		ListInvestments(ctx context.Context) ([]core.SavingsInvestment, error)
	}

	// Store is the full record store.
	Store interface {
		TransactionStore
		CardStore
		PaymentStore
		InvestmentStore
		SalaryStore
		RecurrenceCommitter
		Close() error
	}
)

// RecurrenceBatch holds the mutations of one recurrence run.
type RecurrenceBatch struct {
	Investments  []core.SavingsInvestment // updated in place
	Salaries     []core.Salary            // updated in place
	Transactions []core.Transaction       // inserted
}

// Empty reports whether the batch carries no mutation.
func (b RecurrenceBatch) Empty() bool {
	return len(b.Investments) == 0 && len(b.Salaries) == 0 && len(b.Transactions) == 0
}

// Window applies p to a slice already ordered by the caller.
func Window[T any](items []T, p Page) []T {
	if p.Skip >= len(items) {
		return []T{}
	}
	if p.Skip > 0 {
		items = items[p.Skip:]
	}
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
