package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const salaryColumns = `id, name, amount, start_date, is_active, last_added_date, description, created_at, updated_at`

func scanSalary(row interface{ Scan(...any) error }) (core.Salary, error) {
	var (
		s                core.Salary
		start            string
		lastAdded        sql.NullString
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Amount, &start, &s.IsActive, &lastAdded, &s.Description, &created, &updated); err != nil {
		return core.Salary{}, err
	}
	d, err := core.ParseDate(start)
	if err != nil {
		return core.Salary{}, fmt.Errorf("salary %d: %w", s.ID, err)
	}
	s.StartDate = d
	if s.LastAddedDate, err = parseNullDate(lastAdded); err != nil {
		return core.Salary{}, fmt.Errorf("salary %d: %w", s.ID, err)
	}
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	return s, nil
}

func (r *SQLiteRepository) querySalaries(ctx context.Context, where string, args ...any) ([]core.Salary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+salaryColumns+` FROM salaries `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query salaries: %w", err)
	}
	defer rows.Close()

	out := []core.Salary{}
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan salary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateSalary(ctx context.Context, s core.Salary) (core.Salary, error) {
	s.CreatedAt = r.now()
	s.UpdatedAt = s.CreatedAt
	res, err := r.db.ExecContext(ctx, `INSERT INTO salaries
		(name, amount, start_date, is_active, last_added_date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.Amount.String(), formatDate(s.StartDate), s.IsActive, nullDate(s.LastAddedDate), s.Description,
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return core.Salary{}, fmt.Errorf("insert salary: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return core.Salary{}, fmt.Errorf("salary id: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetSalary(ctx context.Context, id int64) (core.Salary, error) {
	s, err := scanSalary(r.db.QueryRowContext(ctx, `SELECT `+salaryColumns+` FROM salaries WHERE id = ?`, id))
	if err != nil {
		return core.Salary{}, notFound(err, "salary", id)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSalaries(ctx context.Context) ([]core.Salary, error) {
	return r.querySalaries(ctx, `ORDER BY id`)
}

func (r *SQLiteRepository) ActiveSalaries(ctx context.Context) ([]core.Salary, error) {
	return r.querySalaries(ctx, `WHERE is_active = 1 ORDER BY id`)
}

func updateSalary(ctx context.Context, db dbtx, s core.Salary, now time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE salaries SET
		name = ?, amount = ?, start_date = ?, is_active = ?, last_added_date = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.Amount.String(), formatDate(s.StartDate), s.IsActive, nullDate(s.LastAddedDate), s.Description,
		formatTime(now), s.ID)
	if err != nil {
		return fmt.Errorf("update salary %d: %w", s.ID, err)
	}
	return expectOne(res, "salary", s.ID)
}

func (r *SQLiteRepository) UpdateSalary(ctx context.Context, s core.Salary) (core.Salary, error) {
	if err := updateSalary(ctx, r.db, s, r.now()); err != nil {
		return core.Salary{}, err
	}
	return r.GetSalary(ctx, s.ID)
}

func (r *SQLiteRepository) DeleteSalary(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM salaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete salary %d: %w", id, err)
	}
	return expectOne(res, "salary", id)
}
