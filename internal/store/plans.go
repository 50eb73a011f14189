package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mgarrido/supplysim/internal/entity"
)

// UpsertPlanLine writes one (day, model) plan line, replacing the quantity
// and resetting the status to pending if the line already exists. Plan
// re-import is therefore an idempotent upsert, not an append.
func (s *Store) UpsertPlanLine(ctx context.Context, day int64, model string, quantity int64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO daily_plans (day, model, quantity, status)
		VALUES (?, ?, ?, 'pending')
		ON CONFLICT(day, model) DO UPDATE SET
			quantity = excluded.quantity,
			status = 'pending'
	`, day, model, quantity)
	if err != nil {
		return fmt.Errorf("upsert plan line (%d, %q): %w", day, model, err)
	}
	return nil
}

// MergePlanLine adds a (day, model) plan line, summing quantities when the
// line already exists. Used by plan synthesis, which may pick the same
// finished product twice for one day.
func (s *Store) MergePlanLine(ctx context.Context, day int64, model string, quantity int64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO daily_plans (day, model, quantity, status)
		VALUES (?, ?, ?, 'pending')
		ON CONFLICT(day, model) DO UPDATE SET
			quantity = daily_plans.quantity + excluded.quantity
	`, day, model, quantity)
	if err != nil {
		return fmt.Errorf("merge plan line (%d, %q): %w", day, model, err)
	}
	return nil
}

// PlanByID returns one plan line, or ErrNotFound.
func (s *Store) PlanByID(ctx context.Context, id int64) (*entity.DailyPlan, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, day, model, quantity, status
		FROM daily_plans
		WHERE id = ?
	`, id)

	var p entity.DailyPlan
	var status string
	if err := row.Scan(&p.ID, &p.Day, &p.Model, &p.Quantity, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan plan line: %w", err)
	}
	p.Status = entity.PlanStatus(status)
	return &p, nil
}

// PlanLineFor returns the plan line for a (day, model) pair, or
// ErrNotFound.
func (s *Store) PlanLineFor(ctx context.Context, day int64, model string) (*entity.DailyPlan, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, day, model, quantity, status
		FROM daily_plans
		WHERE day = ? AND model = ?
	`, day, model)

	var p entity.DailyPlan
	var status string
	if err := row.Scan(&p.ID, &p.Day, &p.Model, &p.Quantity, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan plan line: %w", err)
	}
	p.Status = entity.PlanStatus(status)
	return &p, nil
}

// DuePlanLines returns pending plan lines due on or before the given day.
// Backlog lines come first: ordered day ASC, then id ASC, so overdue work
// is always resolved before same-day work and event sequences reproduce.
func (s *Store) DuePlanLines(ctx context.Context, day int64) ([]entity.DailyPlan, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, day, model, quantity, status
		FROM daily_plans
		WHERE status = 'pending' AND day <= ?
		ORDER BY day ASC, id ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("query due plan lines: %w", err)
	}
	defer rows.Close()
	return scanPlanLines(rows)
}

// PlanLines returns all plan lines ordered by day then id.
func (s *Store) PlanLines(ctx context.Context) ([]entity.DailyPlan, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, day, model, quantity, status
		FROM daily_plans
		ORDER BY day ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query plan lines: %w", err)
	}
	defer rows.Close()
	return scanPlanLines(rows)
}

func scanPlanLines(rows *sql.Rows) ([]entity.DailyPlan, error) {
	var lines []entity.DailyPlan
	for rows.Next() {
		var p entity.DailyPlan
		var status string
		if err := rows.Scan(&p.ID, &p.Day, &p.Model, &p.Quantity, &status); err != nil {
			return nil, fmt.Errorf("scan plan line: %w", err)
		}
		p.Status = entity.PlanStatus(status)
		lines = append(lines, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan lines: %w", err)
	}
	return lines, nil
}

// SetPlanStatus updates the status of one plan line.
func (s *Store) SetPlanStatus(ctx context.Context, id int64, status entity.PlanStatus) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE daily_plans SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set plan %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set plan %d status: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set plan %d status: %w", id, ErrNotFound)
	}
	return nil
}

// HasPlanForDay reports whether any plan line exists for the given day,
// regardless of status. Plan synthesis only fills truly empty days.
func (s *Store) HasPlanForDay(ctx context.Context, day int64) (bool, error) {
	var n int64
	if err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_plans WHERE day = ?`, day).Scan(&n); err != nil {
		return false, fmt.Errorf("count plan lines for day %d: %w", day, err)
	}
	return n > 0, nil
}
