package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const investmentColumns = `id, name, investment_type, purchase_date, initial_amount, current_value, description,
	is_recurring, recurring_type, recurring_amount, last_recurring_date, created_at, updated_at`

func scanInvestment(row interface{ Scan(...any) error }) (core.SavingsInvestment, error) {
	var (
		v                core.SavingsInvestment
		purchase         string
		recurringAmount  decimal.NullDecimal
		lastRecurring    sql.NullString
		created, updated string
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Type, &purchase, &v.InitialAmount, &v.CurrentValue, &v.Description,
		&v.IsRecurring, &v.RecurringType, &recurringAmount, &lastRecurring, &created, &updated); err != nil {
		return core.SavingsInvestment{}, err
	}
	d, err := core.ParseDate(purchase)
	if err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("investment %d: %w", v.ID, err)
	}
	v.PurchaseDate = d
	if recurringAmount.Valid {
		amount := recurringAmount.Decimal
		v.RecurringAmount = &amount
	}
	if v.LastRecurringDate, err = parseNullDate(lastRecurring); err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("investment %d: %w", v.ID, err)
	}
	v.CreatedAt = parseTime(created)
	v.UpdatedAt = parseTime(updated)
	return v, nil
}

func nullAmount(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func (r *SQLiteRepository) queryInvestments(ctx context.Context, where string, args ...any) ([]core.SavingsInvestment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+investmentColumns+` FROM savings_investments `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	out := []core.SavingsInvestment{}
	for rows.Next() {
		v, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateInvestment(ctx context.Context, v core.SavingsInvestment) (core.SavingsInvestment, error) {
	v.CreatedAt = r.now()
	v.UpdatedAt = v.CreatedAt
	res, err := r.db.ExecContext(ctx, `INSERT INTO savings_investments
		(name, investment_type, purchase_date, initial_amount, current_value, description,
		 is_recurring, recurring_type, recurring_amount, last_recurring_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, string(v.Type), formatDate(v.PurchaseDate), v.InitialAmount.String(), v.CurrentValue.String(), v.Description,
		v.IsRecurring, string(v.RecurringType), nullAmount(v.RecurringAmount), nullDate(v.LastRecurringDate),
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	if err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("insert investment: %w", err)
	}
	if v.ID, err = res.LastInsertId(); err != nil {
		return core.SavingsInvestment{}, fmt.Errorf("investment id: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) GetInvestment(ctx context.Context, id int64) (core.SavingsInvestment, error) {
	v, err := scanInvestment(r.db.QueryRowContext(ctx, `SELECT `+investmentColumns+` FROM savings_investments WHERE id = ?`, id))
	if err != nil {
		return core.SavingsInvestment{}, notFound(err, "investment", id)
	}
	return v, nil
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context) ([]core.SavingsInvestment, error) {
	return r.queryInvestments(ctx, `ORDER BY id`)
}

func (r *SQLiteRepository) RecurringInvestments(ctx context.Context) ([]core.SavingsInvestment, error) {
	return r.queryInvestments(ctx, `WHERE is_recurring = 1 ORDER BY id`)
}

func updateInvestment(ctx context.Context, db dbtx, v core.SavingsInvestment, now time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE savings_investments SET
		name = ?, investment_type = ?, purchase_date = ?, initial_amount = ?, current_value = ?, description = ?,
		is_recurring = ?, recurring_type = ?, recurring_amount = ?, last_recurring_date = ?, updated_at = ?
		WHERE id = ?`,
		v.Name, string(v.Type), formatDate(v.PurchaseDate), v.InitialAmount.String(), v.CurrentValue.String(), v.Description,
		v.IsRecurring, string(v.RecurringType), nullAmount(v.RecurringAmount), nullDate(v.LastRecurringDate),
		formatTime(now), v.ID)
	if err != nil {
		return fmt.Errorf("update investment %d: %w", v.ID, err)
	}
	return expectOne(res, "investment", v.ID)
}

func (r *SQLiteRepository) UpdateInvestment(ctx context.Context, v core.SavingsInvestment) (core.SavingsInvestment, error) {
	if err := updateInvestment(ctx, r.db, v, r.now()); err != nil {
		return core.SavingsInvestment{}, err
	}
	return r.GetInvestment(ctx, v.ID)
}

func (r *SQLiteRepository) DeleteInvestment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_investments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete investment %d: %w", id, err)
	}
	return expectOne(res, "investment", id)
}
