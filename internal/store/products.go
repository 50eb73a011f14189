package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mgarrido/supplysim/internal/entity"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// UpsertProduct inserts a product by name or returns the existing row's id.
// The kind of an existing product is left untouched: imports never flip a
// product between raw and finished.
func (s *Store) UpsertProduct(ctx context.Context, name string, kind entity.ProductKind) (int64, error) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO products (name, kind) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, string(kind))
	if err != nil {
		return 0, fmt.Errorf("upsert product %q: %w", name, err)
	}

	var id int64
	if err := s.q.QueryRowContext(ctx,
		`SELECT id FROM products WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert product %q: %w", name, err)
	}
	return id, nil
}

// ProductByID returns the product with the given id, or ErrNotFound.
func (s *Store) ProductByID(ctx context.Context, id int64) (*entity.Product, error) {
	return s.scanProduct(s.q.QueryRowContext(ctx,
		`SELECT id, name, kind FROM products WHERE id = ?`, id))
}

// ProductByName returns the product with the given name, or ErrNotFound.
func (s *Store) ProductByName(ctx context.Context, name string) (*entity.Product, error) {
	return s.scanProduct(s.q.QueryRowContext(ctx,
		`SELECT id, name, kind FROM products WHERE name = ?`, name))
}

func (s *Store) scanProduct(row *sql.Row) (*entity.Product, error) {
	var p entity.Product
	var kind string
	if err := row.Scan(&p.ID, &p.Name, &kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.Kind = entity.ProductKind(kind)
	return &p, nil
}

// FinishedProducts returns every finished product in id order.
// The stable ordering keeps plan synthesis deterministic for a fixed seed.
func (s *Store) FinishedProducts(ctx context.Context) ([]entity.Product, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, kind FROM products
		WHERE kind = 'finished'
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query finished products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		var kind string
		if err := rows.Scan(&p.ID, &p.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Kind = entity.ProductKind(kind)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// ReplaceBOM replaces all BOM edges of a finished product with the given
// (material, quantity) set. Re-import of a plan document therefore never
// duplicates edges.
func (s *Store) ReplaceBOM(ctx context.Context, finishedID int64, edges []entity.BOMEdge) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM bom_edges WHERE finished_product_id = ?`, finishedID); err != nil {
		return fmt.Errorf("replace bom: delete: %w", err)
	}
	for _, e := range edges {
		if _, err := s.q.ExecContext(ctx, `
			INSERT INTO bom_edges (finished_product_id, material_id, quantity)
			VALUES (?, ?, ?)
		`, finishedID, e.MaterialID, e.Quantity); err != nil {
			return fmt.Errorf("replace bom: insert material %d: %w", e.MaterialID, err)
		}
	}
	return nil
}

// BOMForProduct returns the BOM edges of a finished product in id order.
// An empty slice means the product has no BOM and cannot be manufactured.
func (s *Store) BOMForProduct(ctx context.Context, finishedID int64) ([]entity.BOMEdge, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, finished_product_id, material_id, quantity
		FROM bom_edges
		WHERE finished_product_id = ?
		ORDER BY id ASC
	`, finishedID)
	if err != nil {
		return nil, fmt.Errorf("query bom: %w", err)
	}
	defer rows.Close()

	var edges []entity.BOMEdge
	for rows.Next() {
		var e entity.BOMEdge
		if err := rows.Scan(&e.ID, &e.FinishedProductID, &e.MaterialID, &e.Quantity); err != nil {
			return nil, fmt.Errorf("scan bom edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bom edges: %w", err)
	}
	return edges, nil
}

// UpsertSupplier inserts a (provider, material) sourcing row, updating
// unit cost and lead time if the pair already exists.
func (s *Store) UpsertSupplier(ctx context.Context, sup entity.Supplier) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO suppliers (name, product_id, unit_cost, lead_time_days)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name, product_id) DO UPDATE SET
			unit_cost = excluded.unit_cost,
			lead_time_days = excluded.lead_time_days
	`, sup.Name, sup.ProductID, sup.UnitCost.String(), sup.LeadTimeDays)
	if err != nil {
		return fmt.Errorf("upsert supplier %q: %w", sup.Name, err)
	}
	return nil
}

// SupplierByID returns one supplier row, or ErrNotFound.
func (s *Store) SupplierByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, product_id, unit_cost, lead_time_days
		FROM suppliers
		WHERE id = ?
	`, id)
	return scanSupplier(row)
}

// SupplierForProduct returns the supplier for a material, or ErrNotFound
// if none is configured. When several providers supply the same material
// the lowest-id row wins (stable, deterministic).
func (s *Store) SupplierForProduct(ctx context.Context, productID int64) (*entity.Supplier, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, product_id, unit_cost, lead_time_days
		FROM suppliers
		WHERE product_id = ?
		ORDER BY id ASC
		LIMIT 1
	`, productID)
	return scanSupplier(row)
}

func scanSupplier(row *sql.Row) (*entity.Supplier, error) {
	var sup entity.Supplier
	var cost string
	if err := row.Scan(&sup.ID, &sup.Name, &sup.ProductID, &cost, &sup.LeadTimeDays); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan supplier: %w", err)
	}

	unitCost, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("supplier %d: bad unit cost %q: %w", sup.ID, cost, err)
	}
	sup.UnitCost = unitCost
	return &sup, nil
}
