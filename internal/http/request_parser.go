package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/middleware/security"
	"fintrack/internal/records"
)

const (
	maxBodyBytes = 1 << 20
	defaultLimit = 100
	maxLimit     = 1000
)

var errBadRequest = errors.New("bad request")

// badRequest marks a malformed parameter; handlers answer it with 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func badRequestDetail(err error) string {
	return strings.TrimPrefix(err.Error(), errBadRequest.Error()+": ")
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %w", core.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must hold a single JSON object", core.ErrValidation)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return n, nil
}

// pathPeriod reads and checks the {year}/{month} path parameters.
func pathPeriod(r *http.Request) (year, month int, err error) {
	if year, err = pathInt(r, "year"); err != nil {
		return 0, 0, err
	}
	if month, err = pathInt(r, "month"); err != nil {
		return 0, 0, err
	}
	if err := core.ValidatePeriod(year, month); err != nil {
		return 0, 0, badRequest("%s", capitalize(err.Error()))
	}
	return year, month, nil
}

func pathYear(r *http.Request) (int, error) {
	year, err := pathInt(r, "year")
	if err != nil {
		return 0, err
	}
	if err := core.ValidateYear(year); err != nil {
		return 0, badRequest("%s", capitalize(err.Error()))
	}
	return year, nil
}

// queryInt returns def when the parameter is absent and rejects values
// outside [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, badRequest("%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest("%s must be true or false", name)
	}
	return b, nil
}

// pageParams reads skip (>= 0, default 0) and limit (1..1000, default 100).
func pageParams(r *http.Request) (records.Page, error) {
	skip, err := queryInt(r, "skip", 0, 0, int(^uint32(0)>>1))
	if err != nil {
		return records.Page{}, err
	}
	limit, err := queryInt(r, "limit", defaultLimit, 1, maxLimit)
	if err != nil {
		return records.Page{}, err
	}
	return records.Page{Skip: skip, Limit: limit}, nil
}

// dateRange reads the required start_date and end_date query parameters.
func dateRange(r *http.Request) (start, end core.Date, err error) {
	q := r.URL.Query()
	if start, err = core.ParseDate(q.Get("start_date")); err != nil {
		return start, end, badRequest("start_date must be a YYYY-MM-DD date")
	}
	if end, err = core.ParseDate(q.Get("end_date")); err != nil {
		return start, end, badRequest("end_date must be a YYYY-MM-DD date")
	}
	if start.After(end.Time) {
		return start, end, badRequest("Start date must be before end date")
	}
	return start, end, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Request bodies. Server-owned fields (ids, timestamps, recurrence
// bookkeeping) are not accepted from clients.
type (
	transactionRequest struct {
		Date          core.Date            `json:"date"`
		Amount        decimal.Decimal      `json:"amount"`
		Kind          core.TransactionKind `json:"type"`
		Category      string               `json:"category"`
		Description   string               `json:"description"`
		PaymentMethod core.PaymentMethod   `json:"payment_method"`
		CreditCardID  *int64               `json:"credit_card_id"`
		IsPayment     bool                 `json:"is_payment"`
	}

	cardRequest struct {
		Name              string          `json:"name"`
		BankName          string          `json:"bank_name"`
		BillingCycleStart int             `json:"billing_cycle_start"`
		BillingCycleEnd   int             `json:"billing_cycle_end"`
		DueDay            int             `json:"due_date"`
		CreditLimit       decimal.Decimal `json:"credit_limit"`
	}

	paymentRequest struct {
		CreditCardID  int64                 `json:"credit_card_id"`
		PaymentDate   core.Date             `json:"payment_date"`
		Amount        decimal.Decimal       `json:"amount"`
		PaymentMethod core.SettlementMethod `json:"payment_method"`
		TransactionID *int64                `json:"transaction_id"`
		Description   string                `json:"description"`
	}

	investmentRequest struct {
		Name            string              `json:"name"`
		Type            core.InvestmentType `json:"investment_type"`
		PurchaseDate    core.Date           `json:"purchase_date"`
		InitialAmount   decimal.Decimal     `json:"initial_amount"`
		CurrentValue    decimal.Decimal     `json:"current_value"`
		Description     string              `json:"description"`
		IsRecurring     bool                `json:"is_recurring"`
		RecurringType   core.RecurringType  `json:"recurring_type"`
		RecurringAmount *decimal.Decimal    `json:"recurring_amount"`
	}

	salaryRequest struct {
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		StartDate   core.Date       `json:"start_date"`
		IsActive    *bool           `json:"is_active"`
		Description string          `json:"description"`
	}

	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

func (t transactionRequest) toCore(id int64) core.Transaction {
	return core.Transaction{
		ID:            id,
		Date:          t.Date,
		Amount:        t.Amount,
		Kind:          t.Kind,
		Category:      security.SanitizeText(t.Category),
		Description:   security.SanitizeText(t.Description),
		PaymentMethod: t.PaymentMethod,
		CreditCardID:  t.CreditCardID,
		IsPayment:     t.IsPayment,
	}
}

func (c cardRequest) toCore(id int64) core.CreditCard {
	return core.CreditCard{
		ID:                id,
		Name:              security.SanitizeText(c.Name),
		BankName:          security.SanitizeText(c.BankName),
		BillingCycleStart: c.BillingCycleStart,
		BillingCycleEnd:   c.BillingCycleEnd,
		DueDay:            c.DueDay,
		CreditLimit:       c.CreditLimit,
	}
}

func (p paymentRequest) toCore(id int64) core.CreditCardPayment {
	return core.CreditCardPayment{
		ID:            id,
		CreditCardID:  p.CreditCardID,
		PaymentDate:   p.PaymentDate,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Description:   security.SanitizeText(p.Description),
	}
}

func (v investmentRequest) toCore(id int64) core.SavingsInvestment {
	return core.SavingsInvestment{
		ID:              id,
		Name:            security.SanitizeText(v.Name),
		Type:            v.Type,
		PurchaseDate:    v.PurchaseDate,
		InitialAmount:   v.InitialAmount,
		CurrentValue:    v.CurrentValue,
		Description:     security.SanitizeText(v.Description),
		IsRecurring:     v.IsRecurring,
		RecurringType:   v.RecurringType,
		RecurringAmount: v.RecurringAmount,
	}
}

// toCore defaults IsActive to true when the field is omitted.
func (s salaryRequest) toCore(id int64) core.Salary {
	active := true
	if s.IsActive != nil {
		active = *s.IsActive
	}
	return core.Salary{
		ID:          id,
		Name:        security.SanitizeText(s.Name),
		Amount:      s.Amount,
		StartDate:   s.StartDate,
		IsActive:    active,
		Description: security.SanitizeText(s.Description),
	}
}
