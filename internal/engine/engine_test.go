package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
	"github.com/mgarrido/supplysim/internal/testutil"
)

// newTestEngine builds an engine with sequential run tokens and a fixed
// seed, so event sequences are reproducible.
func newTestEngine(s *store.Store) *Engine {
	return New(s, WithSeed(1), WithTokenGenerator(&SequenceGenerator{}))
}

// eventTypes projects an event slice to its type sequence.
func eventTypes(events []entity.Event) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

// suppressSynthesis seeds a plan line for the given day so the engine
// does not invent demand when a test advances into it.
func suppressSynthesis(t *testing.T, s *store.Store, days ...int64) {
	t.Helper()
	for _, day := range days {
		testutil.SeedPlanLine(t, s, day, "horizon-filler", 1)
	}
}

func TestAdvanceDay_MarkersAndClock(t *testing.T) {
	s := testutil.OpenStore(t)
	suppressSynthesis(t, s, 2)
	e := newTestEngine(s)
	ctx := context.Background()

	events, err := e.AdvanceDay(ctx)
	require.NoError(t, err)

	// Nothing is due on day 1 and tomorrow already has a plan, so the
	// day is just its two markers.
	require.Len(t, events, 2)
	assert.Equal(t, entity.EventStartDay, events[0].Type)
	assert.Equal(t, "Start of day 1", events[0].Detail)
	assert.Equal(t, entity.EventEndDay, events[1].Type)
	assert.Equal(t, "End of day 1", events[1].Detail)

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.CurrentDay)
}

func TestAdvanceDay_OneTokenPerDay(t *testing.T) {
	s := testutil.OpenStore(t)
	suppressSynthesis(t, s, 2, 3)
	e := newTestEngine(s)
	ctx := context.Background()

	day1, err := e.AdvanceDay(ctx)
	require.NoError(t, err)
	day2, err := e.AdvanceDay(ctx)
	require.NoError(t, err)

	for _, ev := range day1 {
		assert.Equal(t, "run-1", ev.RunToken)
	}
	for _, ev := range day2 {
		assert.Equal(t, "run-2", ev.RunToken)
	}
}

func TestAdvanceDay_Deterministic(t *testing.T) {
	// Two stores with identical seed data and the same RNG seed must
	// produce identical event sequences, synthesis included.
	run := func() []entity.Event {
		s := testutil.OpenStore(t)
		widgetID := testutil.SeedProduct(t, s, "Widget", entity.KindFinished)
		boltID := testutil.SeedProduct(t, s, "Bolt", entity.KindRaw)
		testutil.SeedBOM(t, s, widgetID, map[int64]int64{boltID: 2})
		testutil.SeedSupplier(t, s, "Acme", boltID, "1.50", 1)
		testutil.SeedInventory(t, s, boltID, 100)

		e := newTestEngine(s)
		var all []entity.Event
		for i := 0; i < 4; i++ {
			events, err := e.AdvanceDay(context.Background())
			require.NoError(t, err)
			all = append(all, events...)
		}
		return all
	}

	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].Detail, second[i].Detail)
		assert.Equal(t, first[i].SimDay, second[i].SimDay)
	}
}
