package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// Entity names used in change events.
const (
	EntityTransaction = "transaction"
	EntityCard        = "credit_card"
	EntityPayment     = "payment"
	EntityInvestment  = "investment"
	EntitySalary      = "salary"
)

// LedgerService validates writes, persists them and announces the change.
// Reads pass straight through to the embedded store.
type LedgerService struct {
	records.Store
	notifier *Notifier
	today    func() core.Date
}

func NewLedgerService(store records.Store, notifier *Notifier) *LedgerService {
	return &LedgerService{Store: store, notifier: notifier, today: core.Today}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", core.ErrValidation, err)
}

func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	out, err := s.Store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.notifier.Changed(ctx, EntityTransaction, out.ID, ActionCreated)
	return out, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	out, err := s.Store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	s.notifier.Changed(ctx, EntityTransaction, out.ID, ActionUpdated)
	return out, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.Store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.notifier.Changed(ctx, EntityTransaction, id, ActionDeleted)
	return nil
}

func (s *LedgerService) CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, invalid(err)
	}
	out, err := s.Store.CreateCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("save credit card: %w", err)
	}
	s.notifier.Changed(ctx, EntityCard, out.ID, ActionCreated)
	return out, nil
}

func (s *LedgerService) UpdateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, invalid(err)
	}
	out, err := s.Store.UpdateCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("update credit card %d: %w", c.ID, err)
	}
	s.notifier.Changed(ctx, EntityCard, out.ID, ActionUpdated)
	return out, nil
}

// DeleteCard does not cascade; the card's transactions and payments stay.
func (s *LedgerService) DeleteCard(ctx context.Context, id int64) error {
	if err := s.Store.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("delete credit card %d: %w", id, err)
	}
	s.notifier.Changed(ctx, EntityCard, id, ActionDeleted)
	return nil
}

// CreatePayment rejects payments against unknown cards with core.ErrNotFound.
func (s *LedgerService) CreatePayment(ctx context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error) {
	if err := p.Validate(); err != nil {
		return core.CreditCardPayment{}, invalid(err)
	}
	if _, err := s.Store.GetCard(ctx, p.CreditCardID); err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("credit card %d: %w", p.CreditCardID, err)
	}
	out, err := s.Store.CreatePayment(ctx, p)
	if err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("save payment: %w", err)
	}
	s.notifier.Changed(ctx, EntityPayment, out.ID, ActionCreated)
	return out, nil
}

func (s *LedgerService) UpdatePayment(ctx context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error) {
	if err := p.Validate(); err != nil {
		return core.CreditCardPayment{}, invalid(err)
	}
	if _, err := s.Store.GetCard(ctx, p.CreditCardID); err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("credit card %d: %w", p.CreditCardID, err)
	}
	out, err := s.Store.UpdatePayment(ctx, p)
	if err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	s.notifier.Changed(ctx, EntityPayment, out.ID, ActionUpdated)
	return out, nil
}

func (s *LedgerService) DeletePayment(ctx context.Context, id int64) error {
	if err := s.Store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	s.notifier.Changed(ctx, EntityPayment, id, ActionDeleted)
	return nil
}

// CreateInvestment starts the recurrence clock of a recurring investment on
// its creation day.
func (s *LedgerService) CreateInvestment(ctx context.Context, v core.SavingsInvestment) (core.SavingsInvestment, error) {
	if err := v.Validate(); err != nil {
		return core.SavingsInvestment{}, invalid(err)
	}
	if v.IsRecurring && v.LastRecurringDate == nil {
		today := s.today()
		v.LastRecurringDate = &today
	}
	out, err := s.Store.CreateInvestment(ctx, v)
	if err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("save investment: %w", err)
	}
	s.notifier.Changed(ctx, EntityInvestment, out.ID, ActionCreated)
	return out, nil
}

// UpdateInvestment refuses to move the last recurring date backwards. A
// missing last recurring date keeps the stored one.
func (s *LedgerService) UpdateInvestment(ctx context.Context, v core.SavingsInvestment) (core.SavingsInvestment, error) {
	if err := v.Validate(); err != nil {
		return core.SavingsInvestment{}, invalid(err)
	}
	prev, err := s.Store.GetInvestment(ctx, v.ID)
	if err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("investment %d: %w", v.ID, err)
	}
	if v.LastRecurringDate == nil && v.IsRecurring {
		v.LastRecurringDate = prev.LastRecurringDate
	}
	if err := v.CheckRecurringProgress(prev); err != nil {
		return core.SavingsInvestment{}, invalid(err)
	}
	out, err := s.Store.UpdateInvestment(ctx, v)
	if err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("update investment %d: %w", v.ID, err)
	}
	s.notifier.Changed(ctx, EntityInvestment, out.ID, ActionUpdated)
	return out, nil
}

func (s *LedgerService) DeleteInvestment(ctx context.Context, id int64) error {
	if err := s.Store.DeleteInvestment(ctx, id); err != nil {
		return fmt.Errorf("delete investment %d: %w", id, err)
	}
	s.notifier.Changed(ctx, EntityInvestment, id, ActionDeleted)
	return nil
}

func (s *LedgerService) CreateSalary(ctx context.Context, v core.Salary) (core.Salary, error) {
	if err := v.Validate(); err != nil {
		return core.Salary{}, invalid(err)
	}
	out, err := s.Store.CreateSalary(ctx, v)
	if err != nil {
		return core.Salary{}, fmt.Errorf("save salary: %w", err)
	}
	s.notifier.Changed(ctx, EntitySalary, out.ID, ActionCreated)
	return out, nil
}

// UpdateSalary keeps the stored last added date when v carries none.
func (s *LedgerService) UpdateSalary(ctx context.Context, v core.Salary) (core.Salary, error) {
	if err := v.Validate(); err != nil {
		return core.Salary{}, invalid(err)
	}
	if v.LastAddedDate == nil {
		prev, err := s.Store.GetSalary(ctx, v.ID)
		if err != nil {
			return core.Salary{}, fmt.Errorf("salary %d: %w", v.ID, err)
		}
		v.LastAddedDate = prev.LastAddedDate
	}
	out, err := s.Store.UpdateSalary(ctx, v)
	if err != nil {
		return core.Salary{}, fmt.Errorf("update salary %d: %w", v.ID, err)
	}
	s.notifier.Changed(ctx, EntitySalary, out.ID, ActionUpdated)
	return out, nil
}

func (s *LedgerService) DeleteSalary(ctx context.Context, id int64) error {
	if err := s.Store.DeleteSalary(ctx, id); err != nil {
		return fmt.Errorf("delete salary %d: %w", id, err)
	}
	s.notifier.Changed(ctx, EntitySalary, id, ActionDeleted)
	return nil
}

// IsNotFound reports whether err comes from a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
