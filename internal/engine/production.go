package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// executeProduction runs the manufacturing half of the day.
//
// Completions first: every in-progress order due today books its
// finished goods into inventory (with the same capacity-deferral rule as
// arrivals), moves to completed, and fulfills its linked plan line.
// Then promotions: every pending order consumes its BOM materials and
// moves to in_progress; an order whose materials are no longer
// sufficient logs an error and stays pending for tomorrow.
//
// Completions run before promotions so an order started yesterday frees
// no capacity decisions for orders started today.
func (e *Engine) executeProduction(ctx context.Context, tx *store.Store, r *dayRun) error {
	if err := e.completeProduction(ctx, tx, r); err != nil {
		return err
	}
	return e.promoteProduction(ctx, tx, r)
}

func (e *Engine) completeProduction(ctx context.Context, tx *store.Store, r *dayRun) error {
	orders, err := tx.DueProductionCompletions(ctx, r.day)
	if err != nil {
		return err
	}

	for _, order := range orders {
		product, err := tx.ProductByID(ctx, order.ProductID)
		if err != nil {
			return err
		}

		inv, err := tx.EnsureInventory(ctx, order.ProductID)
		if err != nil {
			return err
		}

		// Finished goods respect max capacity exactly like deliveries:
		// defer the completion rather than overfill the warehouse.
		if inv.Quantity+order.Quantity > inv.MaxCapacity {
			if err := tx.DeferProductionOrder(ctx, order.ID, r.day+1); err != nil {
				return err
			}
			if err := logEvent(ctx, tx, r, entity.EventProductionRescheduled,
				fmt.Sprintf("Production order #%d deferred to day %d: storage at capacity",
					order.ID, r.day+1)); err != nil {
				return err
			}
			continue
		}

		if err := tx.AdjustInventory(ctx, order.ProductID, order.Quantity); err != nil {
			return err
		}
		if err := tx.SetProductionStatus(ctx, order.ID, entity.ProductionCompleted); err != nil {
			return err
		}
		if err := logEvent(ctx, tx, r, entity.EventProductionCompleted,
			fmt.Sprintf("Production completed: %d units of %s (order #%d)",
				order.Quantity, product.Name, order.ID)); err != nil {
			return err
		}

		if order.DailyPlanID != nil {
			if err := tx.SetPlanStatus(ctx, *order.DailyPlanID, entity.PlanFulfilled); err != nil {
				return err
			}
			if err := logEvent(ctx, tx, r, entity.EventOrderFulfilled,
				fmt.Sprintf("Plan line #%d fulfilled: %d units of %s",
					*order.DailyPlanID, order.Quantity, product.Name)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) promoteProduction(ctx context.Context, tx *store.Store, r *dayRun) error {
	orders, err := tx.PendingProductionOrders(ctx)
	if err != nil {
		return err
	}

	for _, order := range orders {
		product, err := tx.ProductByID(ctx, order.ProductID)
		if err != nil {
			return err
		}

		edges, err := tx.BOMForProduct(ctx, product.ID)
		if err != nil {
			return err
		}

		// Materials were available when the order was created, but
		// earlier promotions today may have consumed them. Re-check
		// before consuming; a short order waits for tomorrow.
		shortfalls, err := bomShortfalls(ctx, tx, edges, order.Quantity)
		if err != nil {
			return err
		}
		if len(shortfalls) > 0 {
			if err := logEvent(ctx, tx, r, entity.EventError,
				fmt.Sprintf("Production order #%d cannot start: missing %s",
					order.ID, formatShortfalls(ctx, tx, shortfalls))); err != nil {
				return err
			}
			continue
		}

		for _, edge := range edges {
			if err := tx.AdjustInventory(ctx, edge.MaterialID, -edge.Quantity*order.Quantity); err != nil {
				return err
			}
		}
		if err := tx.SetProductionStatus(ctx, order.ID, entity.ProductionInProgress); err != nil {
			return err
		}
		if err := logEvent(ctx, tx, r, entity.EventProductionStarted,
			fmt.Sprintf("Started production of %d units of %s (order #%d)",
				order.Quantity, product.Name, order.ID)); err != nil {
			return err
		}
	}

	return nil
}

// formatShortfalls renders "12 units of Bolt, 3 units of Nut" for error
// events. Lookup failures degrade to the numeric id rather than failing
// the phase over a log detail.
func formatShortfalls(ctx context.Context, tx *store.Store, shortfalls []materialShortfall) string {
	parts := make([]string, 0, len(shortfalls))
	for _, sf := range shortfalls {
		name := fmt.Sprintf("material %d", sf.materialID)
		if product, err := tx.ProductByID(ctx, sf.materialID); err == nil {
			name = product.Name
		}
		parts = append(parts, fmt.Sprintf("%d units of %s", sf.missing, name))
	}
	return strings.Join(parts, ", ")
}
