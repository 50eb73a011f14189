package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/mgarrido/supplysim/internal/engine"
	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/importer"
	"github.com/mgarrido/supplysim/internal/store"
)

// Result is the outcome of one scenario run: the complete event log
// after all days have been advanced.
type Result struct {
	Scenario string
	Days     int
	Events   []entity.Event
}

// Run executes a scenario against a fresh store at dbPath.
//
// Documents import in plan, providers, inventory order, matching the
// CLI. The engine uses sequential run tokens ("run-1" for the first
// day and so on), so two runs of the same scenario produce identical
// event logs byte for byte.
func Run(scenario *Scenario, dbPath string) (*Result, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ctx := context.Background()

	imports := []struct {
		path string
		fn   func(context.Context, *store.Store, []byte) error
	}{
		{scenario.Plan, importer.ImportPlan},
		{scenario.Providers, importer.ImportProviders},
		{scenario.Inventory, importer.ImportInventory},
	}
	for _, imp := range imports {
		if imp.path == "" {
			continue
		}
		raw, err := os.ReadFile(imp.path)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		if err := imp.fn(ctx, s, raw); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	e := engine.New(s,
		engine.WithSeed(scenario.Seed),
		engine.WithTokenGenerator(&engine.SequenceGenerator{}),
	)
	for i := 0; i < scenario.Days; i++ {
		if _, err := e.AdvanceDay(ctx); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Scenario: scenario.Name, Days: scenario.Days, Events: events}, nil
}
