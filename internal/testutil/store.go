// Package testutil provides shared fixtures for store and engine tests.
package testutil

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// OpenStore creates a fresh store in a temp directory, closed on cleanup.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// SeedProduct upserts a product and returns its id.
func SeedProduct(t *testing.T, s *store.Store, name string, kind entity.ProductKind) int64 {
	t.Helper()
	id, err := s.UpsertProduct(context.Background(), name, kind)
	require.NoError(t, err)
	return id
}

// SeedBOM replaces the BOM of a finished product with the given
// material -> quantity pairs. Edges are inserted in material-id order so
// edge ids, and with them shortfall enumeration order, are stable.
func SeedBOM(t *testing.T, s *store.Store, finishedID int64, materials map[int64]int64) {
	t.Helper()
	ids := make([]int64, 0, len(materials))
	for materialID := range materials {
		ids = append(ids, materialID)
	}
	slices.Sort(ids)

	edges := make([]entity.BOMEdge, 0, len(ids))
	for _, materialID := range ids {
		edges = append(edges, entity.BOMEdge{MaterialID: materialID, Quantity: materials[materialID]})
	}
	require.NoError(t, s.ReplaceBOM(context.Background(), finishedID, edges))
}

// SeedSupplier upserts a supplier row for a material.
func SeedSupplier(t *testing.T, s *store.Store, name string, productID int64, unitCost string, leadTimeDays int64) {
	t.Helper()
	cost, err := decimal.NewFromString(unitCost)
	require.NoError(t, err)
	require.NoError(t, s.UpsertSupplier(context.Background(), entity.Supplier{
		Name:         name,
		ProductID:    productID,
		UnitCost:     cost,
		LeadTimeDays: leadTimeDays,
	}))
}

// SeedInventory upserts the on-hand quantity for a product.
func SeedInventory(t *testing.T, s *store.Store, productID, quantity int64) {
	t.Helper()
	require.NoError(t, s.SetInventoryQuantity(context.Background(), productID, quantity))
}

// SeedPlanLine upserts a plan line and returns its id.
func SeedPlanLine(t *testing.T, s *store.Store, day int64, model string, quantity int64) int64 {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertPlanLine(ctx, day, model, quantity))
	line, err := s.PlanLineFor(ctx, day, model)
	require.NoError(t, err)
	return line.ID
}
