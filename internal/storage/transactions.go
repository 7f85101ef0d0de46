package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

const transactionColumns = `id, date, amount, type, category, description, payment_method, credit_card_id, is_payment, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		card    sql.NullInt64
		created string
	)
	if err := row.Scan(&t.ID, &date, &t.Amount, &t.Kind, &t.Category, &t.Description, &t.PaymentMethod, &card, &t.IsPayment, &created); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = d
	t.CreditCardID = idPtr(card)
	t.CreatedAt = parseTime(created)
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, where string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertTransaction(ctx context.Context, db dbtx, t core.Transaction) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO transactions
		(date, amount, type, category, description, payment_method, credit_card_id, is_payment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatDate(t.Date), t.Amount.String(), string(t.Kind), t.Category, t.Description,
		string(t.PaymentMethod), nullID(t.CreditCardID), t.IsPayment, formatTime(t.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.CreatedAt = r.now()
	id, err := insertTransaction(ctx, r.db, t)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, p records.Page) ([]core.Transaction, error) {
	limit, args := limitClause(p)
	return r.queryTransactions(ctx, `ORDER BY id`+limit, args...)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET
		date = ?, amount = ?, type = ?, category = ?, description = ?, payment_method = ?, credit_card_id = ?, is_payment = ?
		WHERE id = ?`,
		formatDate(t.Date), t.Amount.String(), string(t.Kind), t.Category, t.Description,
		string(t.PaymentMethod), nullID(t.CreditCardID), t.IsPayment, t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if err := expectOne(res, "transaction", t.ID); err != nil {
		return core.Transaction{}, err
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return expectOne(res, "transaction", id)
}

func (r *SQLiteRepository) TransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error) {
	start, end := core.MonthRange(year, month)
	return r.queryTransactions(ctx, `WHERE date >= ? AND date < ? ORDER BY id`, formatDate(start), formatDate(end))
}

func (r *SQLiteRepository) TransactionsInRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `WHERE date >= ? AND date <= ? ORDER BY id`, formatDate(start), formatDate(end))
}

func (r *SQLiteRepository) TransactionsByCard(ctx context.Context, cardID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `WHERE credit_card_id = ? ORDER BY id`, cardID)
}
