package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const cardColumns = `id, name, bank_name, billing_cycle_start, billing_cycle_end, due_date, credit_limit, created_at`

func scanCard(row interface{ Scan(...any) error }) (core.CreditCard, error) {
	var (
		c       core.CreditCard
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.BankName, &c.BillingCycleStart, &c.BillingCycleEnd, &c.DueDay, &c.CreditLimit, &created); err != nil {
		return core.CreditCard{}, err
	}
	c.CreatedAt = parseTime(created)
	return c, nil
}

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	c.CreatedAt = r.now()
	res, err := r.db.ExecContext(ctx, `INSERT INTO credit_cards
		(name, bank_name, billing_cycle_start, billing_cycle_end, due_date, credit_limit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.BankName, c.BillingCycleStart, c.BillingCycleEnd, c.DueDay, c.CreditLimit.String(), formatTime(c.CreatedAt))
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("insert credit card: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.CreditCard{}, fmt.Errorf("credit card id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id int64) (core.CreditCard, error) {
	c, err := scanCard(r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE id = ?`, id))
	if err != nil {
		return core.CreditCard{}, notFound(err, "credit card", id)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM credit_cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query credit cards: %w", err)
	}
	defer rows.Close()

	out := []core.CreditCard{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE credit_cards SET
		name = ?, bank_name = ?, billing_cycle_start = ?, billing_cycle_end = ?, due_date = ?, credit_limit = ?
		WHERE id = ?`,
		c.Name, c.BankName, c.BillingCycleStart, c.BillingCycleEnd, c.DueDay, c.CreditLimit.String(), c.ID)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("update credit card %d: %w", c.ID, err)
	}
	if err := expectOne(res, "credit card", c.ID); err != nil {
		return core.CreditCard{}, err
	}
	return r.GetCard(ctx, c.ID)
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete credit card %d: %w", id, err)
	}
	return expectOne(res, "credit card", id)
}
