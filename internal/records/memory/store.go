// Package memory is an in-process record store used for development and
// tests. Data is lost on restart.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

var _ records.Store = (*Store)(nil)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	txs      *table[core.Transaction]
	cards    *table[core.CreditCard]
	payments *table[core.CreditCardPayment]
	invs     *table[core.SavingsInvestment]
	salaries *table[core.Salary]
}

func New() *Store {
	return &Store{
		now: time.Now,
		txs: newTable(
			func(v core.Transaction) int64 { return v.ID },
			func(v *core.Transaction, id int64) { v.ID = id },
		),
		cards: newTable(
			func(v core.CreditCard) int64 { return v.ID },
			func(v *core.CreditCard, id int64) { v.ID = id },
		),
		payments: newTable(
			func(v core.CreditCardPayment) int64 { return v.ID },
			func(v *core.CreditCardPayment, id int64) { v.ID = id },
		),
		invs: newTable(
			func(v core.SavingsInvestment) int64 { return v.ID },
			func(v *core.SavingsInvestment, id int64) { v.ID = id },
		),
		salaries: newTable(
			func(v core.Salary) int64 { return v.ID },
			func(v *core.Salary, id int64) { v.ID = id },
		),
	}
}

// Seed is the JSON layout accepted by NewFromFile.
type Seed struct {
	Transactions []core.Transaction       `json:"transactions"`
	CreditCards  []core.CreditCard        `json:"credit_cards"`
	Payments     []core.CreditCardPayment `json:"payments"`
	Investments  []core.SavingsInvestment `json:"investments"`
	Salaries     []core.Salary            `json:"salaries"`
}

// NewFromFile returns a store preloaded from a JSON seed file. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	s.Load(seed)
	return s, nil
}

// Load appends seed rows, keeping their ids when set.
func (s *Store) Load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range seed.Transactions {
		s.txs.load(v)
	}
	for _, v := range seed.CreditCards {
		s.cards.load(v)
	}
	for _, v := range seed.Payments {
		s.payments.load(v)
	}
	for _, v := range seed.Investments {
		s.invs.load(v)
	}
	for _, v := range seed.Salaries {
		s.salaries.load(v)
	}
}

func (s *Store) Close() error { return nil }

// Transactions

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt = s.now()
	return s.txs.insert(t), nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs.get(id)
}

func (s *Store) ListTransactions(_ context.Context, p records.Page) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return records.Window(s.txs.filter(nil), p), nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.txs.get(t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CreatedAt = prev.CreatedAt
	return t, s.txs.replace(t)
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs.remove(id)
}

func (s *Store) TransactionsByMonth(_ context.Context, year, month int) ([]core.Transaction, error) {
	start, end := core.MonthRange(year, month)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs.filter(func(t core.Transaction) bool {
		return !t.Date.Before(start.Time) && t.Date.Before(end.Time)
	}), nil
}

func (s *Store) TransactionsInRange(_ context.Context, start, end core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs.filter(func(t core.Transaction) bool {
		return !t.Date.Before(start.Time) && !t.Date.After(end.Time)
	}), nil
}

func (s *Store) TransactionsByCard(_ context.Context, cardID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs.filter(func(t core.Transaction) bool { return t.OnCard(cardID) }), nil
}

// Credit cards

func (s *Store) CreateCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = s.now()
	return s.cards.insert(c), nil
}

func (s *Store) GetCard(_ context.Context, id int64) (core.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards.get(id)
}

func (s *Store) ListCards(_ context.Context) ([]core.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards.filter(nil), nil
}

func (s *Store) UpdateCard(_ context.Context, c core.CreditCard) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.cards.get(c.ID)
	if err != nil {
		return core.CreditCard{}, err
	}
	c.CreatedAt = prev.CreatedAt
	return c, s.cards.replace(c)
}

// DeleteCard leaves the card's transactions and payments in place.
func (s *Store) DeleteCard(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.remove(id)
}

// Payments

func (s *Store) CreatePayment(_ context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = s.now()
	return s.payments.insert(p), nil
}

func (s *Store) GetPayment(_ context.Context, id int64) (core.CreditCardPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payments.get(id)
}

func (s *Store) ListPayments(_ context.Context, p records.Page) ([]core.CreditCardPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return records.Window(s.payments.filter(nil), p), nil
}

func (s *Store) UpdatePayment(_ context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.payments.get(p.ID)
	if err != nil {
		return core.CreditCardPayment{}, err
	}
	p.CreatedAt = prev.CreatedAt
	return p, s.payments.replace(p)
}

func (s *Store) DeletePayment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments.remove(id)
}

func (s *Store) PaymentsByCard(_ context.Context, cardID int64) ([]core.CreditCardPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payments.filter(func(p core.CreditCardPayment) bool { return p.CreditCardID == cardID }), nil
}

func (s *Store) PaymentsInRange(_ context.Context, start, end core.Date) ([]core.CreditCardPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payments.filter(func(p core.CreditCardPayment) bool {
		return !p.PaymentDate.Before(start.Time) && !p.PaymentDate.After(end.Time)
	}), nil
}

// Investments

func (s *Store) CreateInvestment(_ context.Context, v core.SavingsInvestment) (core.SavingsInvestment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.CreatedAt = s.now()
	v.UpdatedAt = v.CreatedAt
	return s.invs.insert(v), nil
}

func (s *Store) GetInvestment(_ context.Context, id int64) (core.SavingsInvestment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invs.get(id)
}

func (s *Store) ListInvestments(_ context.Context) ([]core.SavingsInvestment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invs.filter(nil), nil
}

func (s *Store) UpdateInvestment(_ context.Context, v core.SavingsInvestment) (core.SavingsInvestment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.invs.get(v.ID)
	if err != nil {
		return core.SavingsInvestment{}, err
	}
	v.CreatedAt = prev.CreatedAt
	v.UpdatedAt = s.now()
	return v, s.invs.replace(v)
}

func (s *Store) DeleteInvestment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invs.remove(id)
}

func (s *Store) RecurringInvestments(_ context.Context) ([]core.SavingsInvestment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invs.filter(func(v core.SavingsInvestment) bool { return v.IsRecurring }), nil
}

// Salaries

func (s *Store) CreateSalary(_ context.Context, v core.Salary) (core.Salary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.CreatedAt = s.now()
	v.UpdatedAt = v.CreatedAt
	return s.salaries.insert(v), nil
}

func (s *Store) GetSalary(_ context.Context, id int64) (core.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.salaries.get(id)
}

func (s *Store) ListSalaries(_ context.Context) ([]core.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.salaries.filter(nil), nil
}

func (s *Store) UpdateSalary(_ context.Context, v core.Salary) (core.Salary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.salaries.get(v.ID)
	if err != nil {
		return core.Salary{}, err
	}
	v.CreatedAt = prev.CreatedAt
	v.UpdatedAt = s.now()
	return v, s.salaries.replace(v)
}

func (s *Store) DeleteSalary(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.salaries.remove(id)
}

func (s *Store) ActiveSalaries(_ context.Context) ([]core.Salary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.salaries.filter(func(v core.Salary) bool { return v.IsActive }), nil
}

// CommitRecurrence checks every referenced row before touching any, so a
// missing id leaves the store unchanged.
func (s *Store) CommitRecurrence(_ context.Context, b records.RecurrenceBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range b.Investments {
		if s.invs.index(v.ID) < 0 {
			return fmt.Errorf("commit recurrence: investment %d: %w", v.ID, core.ErrNotFound)
		}
	}
	for _, v := range b.Salaries {
		if s.salaries.index(v.ID) < 0 {
			return fmt.Errorf("commit recurrence: salary %d: %w", v.ID, core.ErrNotFound)
		}
	}
	now := s.now()
	for _, v := range b.Investments {
		v.UpdatedAt = now
		_ = s.invs.replace(v)
	}
	for _, v := range b.Salaries {
		v.UpdatedAt = now
		_ = s.salaries.replace(v)
	}
	for _, t := range b.Transactions {
		t.CreatedAt = now
		s.txs.insert(t)
	}
	return nil
}
