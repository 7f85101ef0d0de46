package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

const paymentColumns = `id, credit_card_id, payment_date, amount, payment_method, transaction_id, description, created_at`

func scanPayment(row interface{ Scan(...any) error }) (core.CreditCardPayment, error) {
	var (
		p       core.CreditCardPayment
		date    string
		txID    sql.NullInt64
		created string
	)
	if err := row.Scan(&p.ID, &p.CreditCardID, &date, &p.Amount, &p.PaymentMethod, &txID, &p.Description, &created); err != nil {
		return core.CreditCardPayment{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("payment %d: %w", p.ID, err)
	}
	p.PaymentDate = d
	p.TransactionID = idPtr(txID)
	p.CreatedAt = parseTime(created)
	return p, nil
}

func (r *SQLiteRepository) queryPayments(ctx context.Context, where string, args ...any) ([]core.CreditCardPayment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM credit_card_payments `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	out := []core.CreditCardPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error) {
	p.CreatedAt = r.now()
	res, err := r.db.ExecContext(ctx, `INSERT INTO credit_card_payments
		(credit_card_id, payment_date, amount, payment_method, transaction_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.CreditCardID, formatDate(p.PaymentDate), p.Amount.String(), string(p.PaymentMethod),
		nullID(p.TransactionID), p.Description, formatTime(p.CreatedAt))
	if err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("insert payment: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("payment id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.CreditCardPayment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM credit_card_payments WHERE id = ?`, id))
	if err != nil {
		return core.CreditCardPayment{}, notFound(err, "payment", id)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, p records.Page) ([]core.CreditCardPayment, error) {
	limit, args := limitClause(p)
	return r.queryPayments(ctx, `ORDER BY id`+limit, args...)
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.CreditCardPayment) (core.CreditCardPayment, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE credit_card_payments SET
		credit_card_id = ?, payment_date = ?, amount = ?, payment_method = ?, transaction_id = ?, description = ?
		WHERE id = ?`,
		p.CreditCardID, formatDate(p.PaymentDate), p.Amount.String(), string(p.PaymentMethod),
		nullID(p.TransactionID), p.Description, p.ID)
	if err != nil {
		return core.CreditCardPayment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	if err := expectOne(res, "payment", p.ID); err != nil {
		return core.CreditCardPayment{}, err
	}
	return r.GetPayment(ctx, p.ID)
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credit_card_payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	return expectOne(res, "payment", id)
}

func (r *SQLiteRepository) PaymentsByCard(ctx context.Context, cardID int64) ([]core.CreditCardPayment, error) {
	return r.queryPayments(ctx, `WHERE credit_card_id = ? ORDER BY id`, cardID)
}

func (r *SQLiteRepository) PaymentsInRange(ctx context.Context, start, end core.Date) ([]core.CreditCardPayment, error) {
	return r.queryPayments(ctx, `WHERE payment_date >= ? AND payment_date <= ? ORDER BY id`, formatDate(start), formatDate(end))
}
