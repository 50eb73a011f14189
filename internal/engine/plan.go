package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// Plan synthesis bounds: when the imported plan horizon is exhausted the
// engine invents tomorrow's demand to keep the simulation self-sustaining.
const (
	minDailyOrders   = 1
	maxDailyOrders   = 2
	minOrderQuantity = 1
	maxOrderQuantity = 10
)

// resolvePlans processes every pending plan line due on or before today
// in one unified pass. Backlog (overdue) lines come first; within a day,
// creation order. Per line:
//
//   - unknown model: error event, line skipped (stays pending for the
//     next cycle);
//   - sufficient finished stock: stock decremented by the full quantity,
//     line fulfilled;
//   - all BOM materials available: production order created (pending,
//     completing tomorrow), line moves to in_production;
//   - otherwise: a purchase order per short raw material, sized to the
//     shortfall plus a safety margin when the line is fresh. The line
//     stays pending and is re-resolved tomorrow.
//
// Finally, if tomorrow has no plan at all, a small random one is
// synthesized from the engine's seeded RNG.
func (e *Engine) resolvePlans(ctx context.Context, tx *store.Store, r *dayRun) error {
	lines, err := tx.DuePlanLines(ctx, r.day)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := e.resolvePlanLine(ctx, tx, r, line); err != nil {
			return err
		}
	}

	return e.synthesizePlan(ctx, tx, r)
}

// materialShortfall is one raw material short of the quantity a plan
// line needs.
type materialShortfall struct {
	materialID int64
	required   int64
	missing    int64
}

func (e *Engine) resolvePlanLine(ctx context.Context, tx *store.Store, r *dayRun, line entity.DailyPlan) error {
	product, err := tx.ProductByName(ctx, line.Model)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return logEvent(ctx, tx, r, entity.EventError,
				fmt.Sprintf("Plan line #%d: product %q not found", line.ID, line.Model))
		}
		return err
	}

	inv, err := tx.EnsureInventory(ctx, product.ID)
	if err != nil {
		return err
	}

	// Finished stock on hand covers the request outright.
	if inv.Quantity >= line.Quantity {
		if err := tx.AdjustInventory(ctx, product.ID, -line.Quantity); err != nil {
			return err
		}
		if err := tx.SetPlanStatus(ctx, line.ID, entity.PlanFulfilled); err != nil {
			return err
		}
		return logEvent(ctx, tx, r, entity.EventOrderFulfilled,
			fmt.Sprintf("Plan line #%d fulfilled from stock: %d units of %s",
				line.ID, line.Quantity, product.Name))
	}

	edges, err := tx.BOMForProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return logEvent(ctx, tx, r, entity.EventError,
			fmt.Sprintf("Plan line #%d: no BOM configured for %s", line.ID, product.Name))
	}

	shortfalls, err := bomShortfalls(ctx, tx, edges, line.Quantity)
	if err != nil {
		return err
	}

	if len(shortfalls) == 0 {
		// Materials are all on hand: schedule production. Consumption
		// happens at promotion time in the execute_production phase.
		orderID, err := tx.InsertProductionOrder(ctx, entity.ProductionOrder{
			ProductID:             product.ID,
			Quantity:              line.Quantity,
			CreationDay:           r.day,
			ExpectedCompletionDay: r.day + 1,
			Status:                entity.ProductionPending,
			DailyPlanID:           &line.ID,
		})
		if err != nil {
			return err
		}
		if err := tx.SetPlanStatus(ctx, line.ID, entity.PlanInProduction); err != nil {
			return err
		}
		return logEvent(ctx, tx, r, entity.EventProductionCreated,
			fmt.Sprintf("Production order #%d created: %d units of %s for plan line #%d",
				orderID, line.Quantity, product.Name, line.ID))
	}

	// Replenish what is missing. Fresh lines get a safety margin on top
	// of the bare shortfall; backlog re-triggers do not.
	fresh := line.Day == r.day
	for _, sf := range shortfalls {
		if err := e.replenish(ctx, tx, r, line, sf, fresh); err != nil {
			return err
		}
	}
	return nil
}

// bomShortfalls computes, for each BOM edge, the material quantity still
// missing to build planQty units. Materials without an inventory row
// count as zero on hand.
func bomShortfalls(ctx context.Context, tx *store.Store, edges []entity.BOMEdge, planQty int64) ([]materialShortfall, error) {
	var shortfalls []materialShortfall
	for _, edge := range edges {
		required := edge.Quantity * planQty

		var onHand int64
		inv, err := tx.InventoryFor(ctx, edge.MaterialID)
		switch {
		case err == nil:
			onHand = inv.Quantity
		case errors.Is(err, store.ErrNotFound):
			onHand = 0
		default:
			return nil, err
		}

		if onHand < required {
			shortfalls = append(shortfalls, materialShortfall{
				materialID: edge.MaterialID,
				required:   required,
				missing:    required - onHand,
			})
		}
	}
	return shortfalls, nil
}

// safetyMargin is the extra quantity ordered on top of a fresh shortfall:
// max(10, 20% of the shortfall).
func safetyMargin(missing int64) int64 {
	margin := missing / 5
	if margin < 10 {
		margin = 10
	}
	return margin
}

// replenish issues one purchase order for a short material, skipping
// materials that already have an open order for this plan line and
// logging an error for materials that cannot be purchased.
func (e *Engine) replenish(ctx context.Context, tx *store.Store, r *dayRun, line entity.DailyPlan, sf materialShortfall, fresh bool) error {
	material, err := tx.ProductByID(ctx, sf.materialID)
	if err != nil {
		return err
	}

	if material.Kind != entity.KindRaw {
		return logEvent(ctx, tx, r, entity.EventError,
			fmt.Sprintf("Plan line #%d: %s is not a raw material and cannot be replenished",
				line.ID, material.Name))
	}

	open, err := tx.OpenPurchaseExists(ctx, material.ID, line.ID)
	if err != nil {
		return err
	}
	if open {
		// An order is already on its way for this line; don't stack a
		// duplicate while the line sits in backlog.
		return nil
	}

	supplier, err := tx.SupplierForProduct(ctx, material.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return logEvent(ctx, tx, r, entity.EventError,
				fmt.Sprintf("Plan line #%d: no supplier configured for %s", line.ID, material.Name))
		}
		return err
	}

	quantity := sf.missing
	if fresh {
		quantity += safetyMargin(sf.missing)
	}
	deliveryDay := r.day + supplier.LeadTimeDays

	orderID, err := tx.InsertPurchaseOrder(ctx, entity.PurchaseOrder{
		SupplierID:          supplier.ID,
		ProductID:           material.ID,
		PlanID:              &line.ID,
		Quantity:            quantity,
		IssueDay:            r.day,
		ExpectedDeliveryDay: deliveryDay,
		Status:              entity.PurchasePending,
	})
	if err != nil {
		return err
	}

	return logEvent(ctx, tx, r, entity.EventPurchaseOrderCreated,
		fmt.Sprintf("Purchase order #%d issued: %d units of %s from %s (delivery day %d)",
			orderID, quantity, material.Name, supplier.Name, deliveryDay))
}

// synthesizePlan invents tomorrow's demand when no plan line exists for
// it: 1-2 orders for random finished products with random quantities.
// Picking the same product twice merges into one line by summing.
func (e *Engine) synthesizePlan(ctx context.Context, tx *store.Store, r *dayRun) error {
	tomorrow := r.day + 1

	exists, err := tx.HasPlanForDay(ctx, tomorrow)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	products, err := tx.FinishedProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return logEvent(ctx, tx, r, entity.EventError,
			"No finished products available to generate a plan")
	}

	numOrders := minDailyOrders + r.rng.Intn(maxDailyOrders-minDailyOrders+1)
	for i := 0; i < numOrders; i++ {
		product := products[r.rng.Intn(len(products))]
		quantity := int64(minOrderQuantity + r.rng.Intn(maxOrderQuantity-minOrderQuantity+1))
		if err := tx.MergePlanLine(ctx, tomorrow, product.Name, quantity); err != nil {
			return err
		}
	}

	return logEvent(ctx, tx, r, entity.EventPlanGenerated,
		fmt.Sprintf("Generated plan for day %d with %d orders", tomorrow, numOrders))
}
