package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// handleArrivals books every pending purchase order due today into
// inventory.
//
// A delivery that would push the receiving inventory above its max
// capacity is NOT applied: the order's expected delivery day moves to
// tomorrow and a purchase_rescheduled event is logged. The order stays
// pending and is retried once per day until capacity frees up. This is a
// deferral, not an error: the quantity is never clamped and the order is
// never rejected silently.
//
// Products delivered for the first time get an inventory row lazily,
// with the default max capacity; an oversized first delivery defers the
// same way.
func (e *Engine) handleArrivals(ctx context.Context, tx *store.Store, r *dayRun) error {
	orders, err := tx.DuePurchaseOrders(ctx, r.day)
	if err != nil {
		return err
	}

	for _, po := range orders {
		inv, err := tx.EnsureInventory(ctx, po.ProductID)
		if err != nil {
			return err
		}

		if inv.Quantity+po.Quantity > inv.MaxCapacity {
			if err := tx.DeferPurchaseOrder(ctx, po.ID, r.day+1); err != nil {
				return err
			}
			if err := logEvent(ctx, tx, r, entity.EventPurchaseRescheduled,
				fmt.Sprintf("Purchase order #%d deferred to day %d: storage at capacity",
					po.ID, r.day+1)); err != nil {
				return err
			}
			continue
		}

		if err := tx.AdjustInventory(ctx, po.ProductID, po.Quantity); err != nil {
			return err
		}
		if err := tx.MarkPurchaseDelivered(ctx, po.ID); err != nil {
			return err
		}

		product, err := tx.ProductByID(ctx, po.ProductID)
		if err != nil {
			return err
		}
		supplier, err := tx.SupplierByID(ctx, po.SupplierID)
		if err != nil {
			return err
		}
		cost := supplier.UnitCost.Mul(decimal.NewFromInt(po.Quantity))

		if err := logEvent(ctx, tx, r, entity.EventPurchaseArrival,
			fmt.Sprintf("Received %d units of %s from %s (purchase order #%d, cost %s)",
				po.Quantity, product.Name, supplier.Name, po.ID, cost.StringFixed(2))); err != nil {
			return err
		}
	}

	return nil
}
