package store

import (
	"context"
	"fmt"

	"github.com/mgarrido/supplysim/internal/entity"
)

// State returns the singleton simulation state row. The row is seeded by
// the schema, so it always exists.
func (s *Store) State(ctx context.Context) (entity.SimulationState, error) {
	var st entity.SimulationState
	err := s.q.QueryRowContext(ctx, `
		SELECT current_day, capacity_per_day FROM simulation_state WHERE id = 1
	`).Scan(&st.CurrentDay, &st.CapacityPerDay)
	if err != nil {
		return entity.SimulationState{}, fmt.Errorf("read simulation state: %w", err)
	}
	return st, nil
}

// SetCurrentDay persists the simulation clock. The engine only ever moves
// it forward by one at the end of a day.
func (s *Store) SetCurrentDay(ctx context.Context, day int64) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE simulation_state SET current_day = ? WHERE id = 1`, day); err != nil {
		return fmt.Errorf("set current day: %w", err)
	}
	return nil
}

// SetCapacityPerDay persists the imported daily production capacity.
func (s *Store) SetCapacityPerDay(ctx context.Context, capacity int64) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE simulation_state SET capacity_per_day = ? WHERE id = 1`, capacity); err != nil {
		return fmt.Errorf("set capacity per day: %w", err)
	}
	return nil
}
