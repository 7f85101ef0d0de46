package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"

	Cash PaymentMethod = "cash"
	Card PaymentMethod = "card"
	UPI  PaymentMethod = "upi"
	Bank PaymentMethod = "bank"

	SettleCash   SettlementMethod = "cash"
	SettleUPI    SettlementMethod = "upi"
	SettleBank   SettlementMethod = "bank"
	SettleCheque SettlementMethod = "cheque"

	MutualFund    InvestmentType = "mutual_fund"
	LifeInsurance InvestmentType = "life_insurance"
	FixedDeposit  InvestmentType = "fixed_deposit"
	Stock         InvestmentType = "stock"
	Crypto        InvestmentType = "crypto"
	OtherAsset    InvestmentType = "other"

	Monthly RecurringType = "monthly"
	Yearly  RecurringType = "yearly"
)

// SalaryCategory is the category of auto-posted salary income.
const SalaryCategory = "Salary"

type (
	TransactionKind  string
	PaymentMethod    string
	SettlementMethod string
	InvestmentType   string
	RecurringType    string

	Transaction struct {
		ID            int64           `json:"id"`
		Date          Date            `json:"date"`
		Amount        decimal.Decimal `json:"amount"`
		Kind          TransactionKind `json:"type"`
		Category      string          `json:"category"`
		Description   string          `json:"description,omitempty"`
		PaymentMethod PaymentMethod   `json:"payment_method"`
		CreditCardID  *int64          `json:"credit_card_id,omitempty"`
		IsPayment     bool            `json:"is_payment"` // card-bill settlement
		CreatedAt     time.Time       `json:"created_at"`
	}

	CreditCard struct {
		ID                int64           `json:"id"`
		Name              string          `json:"name"`
		BankName          string          `json:"bank_name"`
		BillingCycleStart int             `json:"billing_cycle_start"`
		BillingCycleEnd   int             `json:"billing_cycle_end"`
		DueDay            int             `json:"due_date"`
		CreditLimit       decimal.Decimal `json:"credit_limit"`
		CreatedAt         time.Time       `json:"created_at"`
	}

	CreditCardPayment struct {
		ID            int64            `json:"id"`
		CreditCardID  int64            `json:"credit_card_id"`
		PaymentDate   Date             `json:"payment_date"`
		Amount        decimal.Decimal  `json:"amount"`
		PaymentMethod SettlementMethod `json:"payment_method"`
		TransactionID *int64           `json:"transaction_id,omitempty"`
		Description   string           `json:"description,omitempty"`
		CreatedAt     time.Time        `json:"created_at"`
	}

	SavingsInvestment struct {
		ID                int64            `json:"id"`
		Name              string           `json:"name"`
		Type              InvestmentType   `json:"investment_type"`
		PurchaseDate      Date             `json:"purchase_date"`
		InitialAmount     decimal.Decimal  `json:"initial_amount"`
		CurrentValue      decimal.Decimal  `json:"current_value"`
		Description       string           `json:"description,omitempty"`
		IsRecurring       bool             `json:"is_recurring"`
		RecurringType     RecurringType    `json:"recurring_type,omitempty"`
		RecurringAmount   *decimal.Decimal `json:"recurring_amount"`
		LastRecurringDate *Date            `json:"last_recurring_date"`
		CreatedAt         time.Time        `json:"created_at"`
		UpdatedAt         time.Time        `json:"updated_at"`
	}

	Salary struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		Amount        decimal.Decimal `json:"amount"`
		StartDate     Date            `json:"start_date"`
		IsActive      bool            `json:"is_active"`
		LastAddedDate *Date           `json:"last_added_date"`
		Description   string          `json:"description,omitempty"`
		CreatedAt     time.Time       `json:"created_at"`
		UpdatedAt     time.Time       `json:"updated_at"`
	}
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidKind         = errors.New("type must be income or expense")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidDay          = errors.New("day of month must be between 1 and 31")
	ErrInvalidInvestment   = errors.New("invalid investment type")
	ErrInvalidRecurrence   = errors.New("invalid recurring configuration")
	ErrRecurringRewound    = errors.New("last recurring date cannot move backwards")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrMissingCreditCardID = errors.New("credit card id is required")
)

const maxDescription = 200

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case Cash, Card, UPI, Bank:
		return true
	}
	return false
}

func (m SettlementMethod) Valid() bool {
	switch m {
	case SettleCash, SettleUPI, SettleBank, SettleCheque:
		return true
	}
	return false
}

func (t InvestmentType) Valid() bool {
	switch t {
	case MutualFund, LifeInsurance, FixedDeposit, Stock, Crypto, OtherAsset:
		return true
	}
	return false
}

func (r RecurringType) Valid() bool {
	return r == Monthly || r == Yearly
}

func validDay(d int) bool {
	return d >= 1 && d <= 31
}

func validateDescription(s string) error {
	if len(s) > maxDescription {
		return ErrDescriptionTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := validatePositive(t.Amount); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.PaymentMethod.Valid() {
		return ErrInvalidMethod
	}
	return validateDescription(t.Description)
}

// OnCard reports whether the transaction is charged to card id.
func (t Transaction) OnCard(id int64) bool {
	return t.CreditCardID != nil && *t.CreditCardID == id
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.BankName) == "" {
		return errors.New("empty bank name")
	}
	for _, d := range []int{c.BillingCycleStart, c.BillingCycleEnd, c.DueDay} {
		if !validDay(d) {
			return ErrInvalidDay
		}
	}
	return validateNonNegative(c.CreditLimit)
}

func (p CreditCardPayment) Validate() error {
	if p.CreditCardID <= 0 {
		return ErrMissingCreditCardID
	}
	if err := p.PaymentDate.Validate(); err != nil {
		return err
	}
	if err := validatePositive(p.Amount); err != nil {
		return err
	}
	if !p.PaymentMethod.Valid() {
		return ErrInvalidMethod
	}
	return validateDescription(p.Description)
}

func (s SavingsInvestment) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Type.Valid() {
		return ErrInvalidInvestment
	}
	if err := s.PurchaseDate.Validate(); err != nil {
		return fmt.Errorf("invalid purchase date: %w", err)
	}
	if err := validateNonNegative(s.InitialAmount); err != nil {
		return err
	}
	if err := validateNonNegative(s.CurrentValue); err != nil {
		return err
	}
	if err := validateDescription(s.Description); err != nil {
		return err
	}

	if !s.IsRecurring {
		if s.RecurringType != "" || s.RecurringAmount != nil {
			return fmt.Errorf("%w: non-recurring investment cannot carry a recurring type or amount", ErrInvalidRecurrence)
		}
		return nil
	}
	if !s.RecurringType.Valid() {
		return fmt.Errorf("%w: recurring type must be monthly or yearly", ErrInvalidRecurrence)
	}
	if s.RecurringAmount != nil {
		if err := validateNonNegative(*s.RecurringAmount); err != nil {
			return err
		}
	}
	return nil
}

// CheckRecurringProgress rejects an update that would move the last
// recurring date before its previous value.
func (s SavingsInvestment) CheckRecurringProgress(prev SavingsInvestment) error {
	if prev.LastRecurringDate == nil || s.LastRecurringDate == nil {
		return nil
	}
	if s.LastRecurringDate.Before(prev.LastRecurringDate.Time) {
		return ErrRecurringRewound
	}
	return nil
}

func (s Salary) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := validatePositive(s.Amount); err != nil {
		return err
	}
	if err := s.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return validateDescription(s.Description)
}
