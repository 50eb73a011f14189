package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/testutil"
)

func TestCompleteProduction_BooksGoodsAndFulfillsPlan(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	widgetID := testutil.SeedProduct(t, s, "Widget", entity.KindFinished)
	lineID := testutil.SeedPlanLine(t, s, 1, "Widget", 2)
	require.NoError(t, s.SetPlanStatus(ctx, lineID, entity.PlanInProduction))
	suppressSynthesis(t, s, 2)

	orderID, err := s.InsertProductionOrder(ctx, entity.ProductionOrder{
		ProductID: widgetID, Quantity: 2, CreationDay: 0,
		ExpectedCompletionDay: 1, Status: entity.ProductionInProgress,
		DailyPlanID: &lineID,
	})
	require.NoError(t, err)

	events, err := newTestEngine(s).AdvanceDay(ctx)
	require.NoError(t, err)

	require.Equal(t, []string{
		entity.EventStartDay,
		entity.EventProductionCompleted,
		entity.EventOrderFulfilled,
		entity.EventEndDay,
	}, eventTypes(events))
	assert.Equal(t, "Production completed: 2 units of Widget (order #1)", events[1].Detail)
	assert.Equal(t, "Plan line #1 fulfilled: 2 units of Widget", events[2].Detail)

	inv, err := s.InventoryFor(ctx, widgetID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inv.Quantity)

	orders, err := s.ProductionOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)
	assert.Equal(t, entity.ProductionCompleted, orders[0].Status)

	line, err := s.PlanByID(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanFulfilled, line.Status)
}

func TestCompleteProduction_DefersAtCapacity(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	widgetID := testutil.SeedProduct(t, s, "Widget", entity.KindFinished)
	testutil.SeedInventory(t, s, widgetID, entity.DefaultMaxCapacity-1)
	suppressSynthesis(t, s, 2)

	_, err := s.InsertProductionOrder(ctx, entity.ProductionOrder{
		ProductID: widgetID, Quantity: 2, CreationDay: 0,
		ExpectedCompletionDay: 1, Status: entity.ProductionInProgress,
	})
	require.NoError(t, err)

	events, err := newTestEngine(s).AdvanceDay(ctx)
	require.NoError(t, err)

	require.Contains(t, eventTypes(events), entity.EventProductionRescheduled)
	assert.Equal(t, "Production order #1 deferred to day 2: storage at capacity",
		events[1].Detail)

	inv, err := s.InventoryFor(ctx, widgetID)
	require.NoError(t, err)
	assert.Equal(t, int64(entity.DefaultMaxCapacity-1), inv.Quantity)

	orders, err := s.ProductionOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.ProductionInProgress, orders[0].Status)
	assert.Equal(t, int64(2), orders[0].ExpectedCompletionDay)
}

func TestPromoteProduction_ShortMaterialsWait(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	widgetID := testutil.SeedProduct(t, s, "Widget", entity.KindFinished)
	boltID := testutil.SeedProduct(t, s, "Bolt", entity.KindRaw)
	testutil.SeedBOM(t, s, widgetID, map[int64]int64{boltID: 2})
	testutil.SeedInventory(t, s, boltID, 3)
	suppressSynthesis(t, s, 2)

	_, err := s.InsertProductionOrder(ctx, entity.ProductionOrder{
		ProductID: widgetID, Quantity: 2, CreationDay: 1,
		ExpectedCompletionDay: 2, Status: entity.ProductionPending,
	})
	require.NoError(t, err)

	events, err := newTestEngine(s).AdvanceDay(ctx)
	require.NoError(t, err)

	require.Contains(t, eventTypes(events), entity.EventError)
	assert.Equal(t, "Production order #1 cannot start: missing 1 units of Bolt",
		events[1].Detail)

	// Nothing consumed; the order waits for tomorrow.
	inv, err := s.InventoryFor(ctx, boltID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inv.Quantity)

	orders, err := s.ProductionOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.ProductionPending, orders[0].Status)
}

func TestPromoteProduction_EarlierOrderConsumesFirst(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	widgetID := testutil.SeedProduct(t, s, "Widget", entity.KindFinished)
	boltID := testutil.SeedProduct(t, s, "Bolt", entity.KindRaw)
	testutil.SeedBOM(t, s, widgetID, map[int64]int64{boltID: 2})
	testutil.SeedInventory(t, s, boltID, 5)
	suppressSynthesis(t, s, 2)

	// Two pending orders needing 4 bolts each; only the first can start.
	for i := 0; i < 2; i++ {
		_, err := s.InsertProductionOrder(ctx, entity.ProductionOrder{
			ProductID: widgetID, Quantity: 2, CreationDay: 1,
			ExpectedCompletionDay: 2, Status: entity.ProductionPending,
		})
		require.NoError(t, err)
	}

	events, err := newTestEngine(s).AdvanceDay(ctx)
	require.NoError(t, err)

	require.Equal(t, []string{
		entity.EventStartDay,
		entity.EventProductionStarted,
		entity.EventError,
		entity.EventEndDay,
	}, eventTypes(events))
	assert.Equal(t, "Started production of 2 units of Widget (order #1)", events[1].Detail)
	assert.Equal(t, "Production order #2 cannot start: missing 3 units of Bolt",
		events[2].Detail)

	inv, err := s.InventoryFor(ctx, boltID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inv.Quantity)
}
