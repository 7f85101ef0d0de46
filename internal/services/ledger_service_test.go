package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/records/memory"
)

func newLedger(pub EventPublisher) *LedgerService {
	s := NewLedgerService(memory.New(), NewNotifier(pub))
	s.today = func() core.Date { return core.NewDate(2024, 6, 20) }
	return s
}

func TestLedgerService_CreateTransaction(t *testing.T) {
	pub := &fakePublisher{}
	s := newLedger(pub)
	ctx := context.Background()

	_, err := s.CreateTransaction(ctx, core.Transaction{Kind: core.Expense})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	tx, err := s.CreateTransaction(ctx, core.Transaction{
		Date:          core.NewDate(2024, 6, 1),
		Amount:        dec("12.50"),
		Kind:          core.Expense,
		Category:      "Food",
		PaymentMethod: core.UPI,
	})
	if err != nil || tx.ID != 1 {
		t.Fatalf("create: %+v %v", tx, err)
	}
	if len(pub.events) != 1 || pub.events[0] != "transaction:created" {
		t.Fatalf("unexpected events %v", pub.events)
	}
}

func TestLedgerService_PublishFailureDoesNotFail(t *testing.T) {
	s := newLedger(&fakePublisher{err: errors.New("broker down")})
	_, err := s.CreateSalary(context.Background(), core.Salary{Name: "Acme", Amount: dec("1"), StartDate: core.NewDate(2024, 1, 1), IsActive: true})
	if err != nil {
		t.Fatalf("publish errors must not fail the write: %v", err)
	}
}

func TestLedgerService_PaymentRequiresCard(t *testing.T) {
	s := newLedger(nil)
	ctx := context.Background()
	p := core.CreditCardPayment{CreditCardID: 9, PaymentDate: core.NewDate(2024, 6, 1), Amount: dec("100"), PaymentMethod: core.SettleBank}

	if _, err := s.CreatePayment(ctx, p); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown card, got %v", err)
	}

	card, err := s.CreateCard(ctx, core.CreditCard{Name: "Gold", BankName: "B", BillingCycleStart: 1, BillingCycleEnd: 28, DueDay: 5, CreditLimit: dec("1000")})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	p.CreditCardID = card.ID
	if _, err := s.CreatePayment(ctx, p); err != nil {
		t.Fatalf("create payment: %v", err)
	}
}

func TestLedgerService_RecurringInvestmentStartsToday(t *testing.T) {
	s := newLedger(nil)
	ctx := context.Background()
	inv, err := s.CreateInvestment(ctx, core.SavingsInvestment{
		Name:            "SIP",
		Type:            core.MutualFund,
		PurchaseDate:    core.NewDate(2024, 1, 1),
		InitialAmount:   dec("100"),
		CurrentValue:    dec("100"),
		IsRecurring:     true,
		RecurringType:   core.Monthly,
		RecurringAmount: decp("50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.LastRecurringDate == nil || inv.LastRecurringDate.String() != "2024-06-20" {
		t.Fatalf("last recurring date = %v", inv.LastRecurringDate)
	}

	inv.LastRecurringDate = datep(2024, 5, 1)
	if _, err := s.UpdateInvestment(ctx, inv); !errors.Is(err, core.ErrRecurringRewound) {
		t.Fatalf("expected ErrRecurringRewound, got %v", err)
	}

	inv.LastRecurringDate = nil
	inv.CurrentValue = dec("175")
	updated, err := s.UpdateInvestment(ctx, inv)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.LastRecurringDate.String() != "2024-06-20" {
		t.Fatalf("stored last recurring date must be kept, got %v", updated.LastRecurringDate)
	}
}

func TestLedgerService_DeleteMissing(t *testing.T) {
	s := newLedger(nil)
	if err := s.DeleteCard(context.Background(), 3); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
