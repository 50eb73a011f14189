package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mgarrido/supplysim/internal/entity"
)

// InsertPurchaseOrder writes a new purchase order and returns its id.
func (s *Store) InsertPurchaseOrder(ctx context.Context, po entity.PurchaseOrder) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO purchase_orders
		(supplier_id, product_id, plan_id, quantity, issue_day, expected_delivery_day, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, po.SupplierID, po.ProductID, po.PlanID, po.Quantity, po.IssueDay,
		po.ExpectedDeliveryDay, string(po.Status))
	if err != nil {
		return 0, fmt.Errorf("insert purchase order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert purchase order: %w", err)
	}
	return id, nil
}

// DuePurchaseOrders returns pending purchase orders whose expected
// delivery day is on or before the given day, in id order. The <= match
// (rather than ==) means an order issued with zero lead time after the
// arrivals phase already ran is still picked up the next day.
func (s *Store) DuePurchaseOrders(ctx context.Context, day int64) ([]entity.PurchaseOrder, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, supplier_id, product_id, plan_id, quantity, issue_day, expected_delivery_day, status
		FROM purchase_orders
		WHERE status = 'pending' AND expected_delivery_day <= ?
		ORDER BY id ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("query due purchase orders: %w", err)
	}
	defer rows.Close()
	return scanPurchaseOrders(rows)
}

// PurchaseOrders returns every purchase order in id order.
func (s *Store) PurchaseOrders(ctx context.Context) ([]entity.PurchaseOrder, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, supplier_id, product_id, plan_id, quantity, issue_day, expected_delivery_day, status
		FROM purchase_orders
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query purchase orders: %w", err)
	}
	defer rows.Close()
	return scanPurchaseOrders(rows)
}

func scanPurchaseOrders(rows *sql.Rows) ([]entity.PurchaseOrder, error) {
	var orders []entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		var status string
		if err := rows.Scan(&po.ID, &po.SupplierID, &po.ProductID, &po.PlanID,
			&po.Quantity, &po.IssueDay, &po.ExpectedDeliveryDay, &status); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		po.Status = entity.PurchaseStatus(status)
		orders = append(orders, po)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase orders: %w", err)
	}
	return orders, nil
}

// DeferPurchaseOrder pushes the expected delivery day of a pending order.
// Used by the capacity-overflow deferral rule; the order stays pending
// and is retried on the new day.
func (s *Store) DeferPurchaseOrder(ctx context.Context, id, newDay int64) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE purchase_orders SET expected_delivery_day = ? WHERE id = ?`, newDay, id); err != nil {
		return fmt.Errorf("defer purchase order %d: %w", id, err)
	}
	return nil
}

// MarkPurchaseDelivered flips a purchase order to delivered.
func (s *Store) MarkPurchaseDelivered(ctx context.Context, id int64) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE purchase_orders SET status = 'delivered' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark purchase order %d delivered: %w", id, err)
	}
	return nil
}

// OpenPurchaseExists reports whether a pending purchase order already
// exists for the given (material, plan line) pair. Guards against
// duplicate replenishment orders when a backlogged plan line is
// re-resolved on consecutive days.
func (s *Store) OpenPurchaseExists(ctx context.Context, productID, planID int64) (bool, error) {
	var n int64
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM purchase_orders
		WHERE status = 'pending' AND product_id = ? AND plan_id = ?
	`, productID, planID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count open purchase orders: %w", err)
	}
	return n > 0, nil
}

// InsertProductionOrder writes a new production order and returns its id.
func (s *Store) InsertProductionOrder(ctx context.Context, po entity.ProductionOrder) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO production_orders
		(product_id, quantity, creation_day, expected_completion_day, status, daily_plan_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, po.ProductID, po.Quantity, po.CreationDay, po.ExpectedCompletionDay,
		string(po.Status), po.DailyPlanID)
	if err != nil {
		return 0, fmt.Errorf("insert production order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert production order: %w", err)
	}
	return id, nil
}

// DueProductionCompletions returns in-progress production orders due to
// complete on or before the given day, in id order.
func (s *Store) DueProductionCompletions(ctx context.Context, day int64) ([]entity.ProductionOrder, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, product_id, quantity, creation_day, expected_completion_day, status, daily_plan_id
		FROM production_orders
		WHERE status = 'in_progress' AND expected_completion_day <= ?
		ORDER BY id ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("query due production completions: %w", err)
	}
	defer rows.Close()
	return scanProductionOrders(rows)
}

// PendingProductionOrders returns every pending production order in id order.
func (s *Store) PendingProductionOrders(ctx context.Context) ([]entity.ProductionOrder, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, product_id, quantity, creation_day, expected_completion_day, status, daily_plan_id
		FROM production_orders
		WHERE status = 'pending'
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending production orders: %w", err)
	}
	defer rows.Close()
	return scanProductionOrders(rows)
}

// ProductionOrders returns every production order in id order.
func (s *Store) ProductionOrders(ctx context.Context) ([]entity.ProductionOrder, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, product_id, quantity, creation_day, expected_completion_day, status, daily_plan_id
		FROM production_orders
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query production orders: %w", err)
	}
	defer rows.Close()
	return scanProductionOrders(rows)
}

func scanProductionOrders(rows *sql.Rows) ([]entity.ProductionOrder, error) {
	var orders []entity.ProductionOrder
	for rows.Next() {
		var po entity.ProductionOrder
		var status string
		if err := rows.Scan(&po.ID, &po.ProductID, &po.Quantity, &po.CreationDay,
			&po.ExpectedCompletionDay, &status, &po.DailyPlanID); err != nil {
			return nil, fmt.Errorf("scan production order: %w", err)
		}
		po.Status = entity.ProductionStatus(status)
		orders = append(orders, po)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate production orders: %w", err)
	}
	return orders, nil
}

// SetProductionStatus updates the status of one production order.
func (s *Store) SetProductionStatus(ctx context.Context, id int64, status entity.ProductionStatus) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE production_orders SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("set production order %d status: %w", id, err)
	}
	return nil
}

// DeferProductionOrder pushes the expected completion day of an order.
// Used when finished-goods storage is at capacity on the completion day.
func (s *Store) DeferProductionOrder(ctx context.Context, id, newDay int64) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE production_orders SET expected_completion_day = ? WHERE id = ?`, newDay, id); err != nil {
		return fmt.Errorf("defer production order %d: %w", id, err)
	}
	return nil
}
