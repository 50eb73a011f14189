package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mgarrido/supplysim/internal/entity"
)

// InventoryFor returns the inventory row for a product, or ErrNotFound.
func (s *Store) InventoryFor(ctx context.Context, productID int64) (*entity.Inventory, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT product_id, quantity, max_capacity
		FROM inventory
		WHERE product_id = ?
	`, productID)

	var inv entity.Inventory
	if err := row.Scan(&inv.ProductID, &inv.Quantity, &inv.MaxCapacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	return &inv, nil
}

// EnsureInventory returns the inventory row for a product, creating an
// empty row with the default max capacity if none exists yet.
func (s *Store) EnsureInventory(ctx context.Context, productID int64) (*entity.Inventory, error) {
	inv, err := s.InventoryFor(ctx, productID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO inventory (product_id, quantity, max_capacity)
		VALUES (?, 0, ?)
	`, productID, entity.DefaultMaxCapacity); err != nil {
		return nil, fmt.Errorf("create inventory for product %d: %w", productID, err)
	}

	return &entity.Inventory{
		ProductID:   productID,
		Quantity:    0,
		MaxCapacity: entity.DefaultMaxCapacity,
	}, nil
}

// SetInventoryQuantity upserts the on-hand quantity for a product. The
// max capacity of an existing row is preserved.
func (s *Store) SetInventoryQuantity(ctx context.Context, productID, quantity int64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO inventory (product_id, quantity, max_capacity)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET quantity = excluded.quantity
	`, productID, quantity, entity.DefaultMaxCapacity)
	if err != nil {
		return fmt.Errorf("set inventory for product %d: %w", productID, err)
	}
	return nil
}

// AdjustInventory changes the on-hand quantity by delta (positive or
// negative). The CHECK constraint on the table rejects any adjustment
// that would take the quantity negative.
func (s *Store) AdjustInventory(ctx context.Context, productID, delta int64) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE inventory SET quantity = quantity + ? WHERE product_id = ?
	`, delta, productID)
	if err != nil {
		return fmt.Errorf("adjust inventory for product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust inventory for product %d: %w", productID, err)
	}
	if n == 0 {
		return fmt.Errorf("adjust inventory for product %d: %w", productID, ErrNotFound)
	}
	return nil
}

// AllInventory returns every inventory row in product-id order.
func (s *Store) AllInventory(ctx context.Context) ([]entity.Inventory, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT product_id, quantity, max_capacity
		FROM inventory
		ORDER BY product_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var items []entity.Inventory
	for rows.Next() {
		var inv entity.Inventory
		if err := rows.Scan(&inv.ProductID, &inv.Quantity, &inv.MaxCapacity); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		items = append(items, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}
