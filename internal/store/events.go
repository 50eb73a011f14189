package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mgarrido/supplysim/internal/entity"
)

// AppendEvent appends one audit record. The event log is append-only;
// there is no update or delete path.
//
// A failed append is surfaced to the caller unwrapped into the phase
// error: the audit trail is load-bearing, so the engine treats it as
// fatal for the current call.
func (s *Store) AppendEvent(ctx context.Context, ev entity.Event) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO events (run_token, type, sim_day, detail)
		VALUES (?, ?, ?, ?)
	`, ev.RunToken, ev.Type, ev.SimDay, ev.Detail)
	if err != nil {
		return fmt.Errorf("append event %q: %w", ev.Type, err)
	}
	return nil
}

// EventsForDay returns the events logged for one simulated day in append
// (id) order. Because every write is ordered, two runs from the same
// state and seed return identical sequences.
func (s *Store) EventsForDay(ctx context.Context, day int64) ([]entity.Event, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, run_token, type, sim_day, detail
		FROM events
		WHERE sim_day = ?
		ORDER BY id ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("query events for day %d: %w", day, err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Events returns the full event log in append order.
func (s *Store) Events(ctx context.Context) ([]entity.Event, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, run_token, type, sim_day, detail
		FROM events
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]entity.Event, error) {
	events := []entity.Event{}
	for rows.Next() {
		var ev entity.Event
		if err := rows.Scan(&ev.ID, &ev.RunToken, &ev.Type, &ev.SimDay, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
