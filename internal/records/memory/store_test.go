package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

func expense(d core.Date, amount, category string) core.Transaction {
	return core.Transaction{
		Date:          d,
		Amount:        decimal.RequireFromString(amount),
		Kind:          core.Expense,
		Category:      category,
		PaymentMethod: core.Cash,
	}
}

func TestTransactionsByMonthIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, d := range []core.Date{
		core.NewDate(2024, 5, 31),
		core.NewDate(2024, 6, 1),
		core.NewDate(2024, 6, 30),
		core.NewDate(2024, 7, 1),
	} {
		if _, err := s.CreateTransaction(ctx, expense(d, "1", "Food")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got, err := s.TransactionsByMonth(ctx, 2024, 6)
	if err != nil {
		t.Fatalf("by month: %v", err)
	}
	if len(got) != 2 || got[0].Date.Day() != 1 || got[1].Date.Day() != 30 {
		t.Fatalf("unexpected rows: %+v", got)
	}

	inRange, _ := s.TransactionsInRange(ctx, core.NewDate(2024, 5, 31), core.NewDate(2024, 6, 30))
	if len(inRange) != 3 {
		t.Fatalf("range should be inclusive, got %d rows", len(inRange))
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.GetCard(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteSalary(ctx, 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdateTransaction(ctx, core.Transaction{ID: 7}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCardKeepsTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	card, _ := s.CreateCard(ctx, core.CreditCard{Name: "Gold", BankName: "B", BillingCycleStart: 1, BillingCycleEnd: 28, DueDay: 5})
	tx := expense(core.NewDate(2024, 6, 3), "50", "Fuel")
	tx.CreditCardID = &card.ID
	if _, err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteCard(ctx, card.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	orphans, _ := s.TransactionsByCard(ctx, card.ID)
	if len(orphans) != 1 {
		t.Fatalf("expected orphaned transaction to persist, got %d", len(orphans))
	}
}

func TestListTransactionsPaging(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 1; i <= 5; i++ {
		_, _ = s.CreateTransaction(ctx, expense(core.NewDate(2024, 1, i), "1", "X"))
	}
	got, _ := s.ListTransactions(ctx, records.Page{Skip: 1, Limit: 2})
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected page: %+v", got)
	}
	got, _ = s.ListTransactions(ctx, records.Page{Skip: 10})
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %d", len(got))
	}
}

func TestCommitRecurrenceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	inv, _ := s.CreateInvestment(ctx, core.SavingsInvestment{Name: "SIP", Type: core.MutualFund, PurchaseDate: core.NewDate(2024, 1, 1), CurrentValue: decimal.NewFromInt(100)})

	inv.CurrentValue = decimal.NewFromInt(200)
	bad := records.RecurrenceBatch{
		Investments:  []core.SavingsInvestment{inv},
		Salaries:     []core.Salary{{ID: 99}},
		Transactions: []core.Transaction{expense(core.NewDate(2024, 6, 1), "1", "X")},
	}
	if err := s.CommitRecurrence(ctx, bad); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	stored, _ := s.GetInvestment(ctx, inv.ID)
	if !stored.CurrentValue.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("failed commit must not apply updates, got %s", stored.CurrentValue)
	}
	txs, _ := s.ListTransactions(ctx, records.Page{})
	if len(txs) != 0 {
		t.Fatalf("failed commit must not insert transactions")
	}

	if err := s.CommitRecurrence(ctx, records.RecurrenceBatch{Investments: []core.SavingsInvestment{inv}}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	stored, _ = s.GetInvestment(ctx, inv.ID)
	if !stored.CurrentValue.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected 200, got %s", stored.CurrentValue)
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing seed should not fail: %v", err)
	}
	cards, _ := s.ListCards(context.Background())
	if len(cards) != 0 {
		t.Fatalf("expected empty store")
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{
		"credit_cards": [{"id": 3, "name": "Gold", "bank_name": "B", "billing_cycle_start": 20, "billing_cycle_end": 19, "due_date": 5, "credit_limit": "1000"}],
		"salaries": [{"name": "Acme", "amount": "5000", "start_date": "2024-01-01", "is_active": true}]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ctx := context.Background()
	card, err := s.GetCard(ctx, 3)
	if err != nil || card.DueDay != 5 {
		t.Fatalf("unexpected card %+v err=%v", card, err)
	}
	next, _ := s.CreateCard(ctx, core.CreditCard{Name: "Other"})
	if next.ID != 4 {
		t.Fatalf("ids should continue after seeded rows, got %d", next.ID)
	}
	active, _ := s.ActiveSalaries(ctx)
	if len(active) != 1 || active[0].ID != 1 {
		t.Fatalf("unexpected salaries %+v", active)
	}
}
