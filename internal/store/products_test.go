package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/supplysim/internal/entity"
)

func TestUpsertProduct_ReturnsExistingID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertProduct(ctx, "Bolt", entity.KindRaw)
	require.NoError(t, err)

	id2, err := s.UpsertProduct(ctx, "Bolt", entity.KindRaw)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestUpsertProduct_NeverFlipsKind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertProduct(ctx, "Widget", entity.KindFinished)
	require.NoError(t, err)

	// A later import that only knows the name as a material must not
	// demote the finished product.
	_, err = s.UpsertProduct(ctx, "Widget", entity.KindRaw)
	require.NoError(t, err)

	p, err := s.ProductByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.KindFinished, p.Kind)
}

func TestProductLookups_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ProductByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ProductByName(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinishedProducts_OrderedAndFiltered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	widgetID, err := s.UpsertProduct(ctx, "Widget", entity.KindFinished)
	require.NoError(t, err)
	_, err = s.UpsertProduct(ctx, "Bolt", entity.KindRaw)
	require.NoError(t, err)
	gadgetID, err := s.UpsertProduct(ctx, "Gadget", entity.KindFinished)
	require.NoError(t, err)

	products, err := s.FinishedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, widgetID, products[0].ID)
	assert.Equal(t, gadgetID, products[1].ID)
}

func TestReplaceBOM_ReplacesNotAppends(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	widgetID, err := s.UpsertProduct(ctx, "Widget", entity.KindFinished)
	require.NoError(t, err)
	boltID, err := s.UpsertProduct(ctx, "Bolt", entity.KindRaw)
	require.NoError(t, err)
	nutID, err := s.UpsertProduct(ctx, "Nut", entity.KindRaw)
	require.NoError(t, err)

	require.NoError(t, s.ReplaceBOM(ctx, widgetID, []entity.BOMEdge{
		{MaterialID: boltID, Quantity: 2},
		{MaterialID: nutID, Quantity: 4},
	}))

	// Second import drops Nut and changes the Bolt quantity.
	require.NoError(t, s.ReplaceBOM(ctx, widgetID, []entity.BOMEdge{
		{MaterialID: boltID, Quantity: 3},
	}))

	edges, err := s.BOMForProduct(ctx, widgetID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, boltID, edges[0].MaterialID)
	assert.Equal(t, int64(3), edges[0].Quantity)
}

func TestUpsertSupplier_UpdatesTerms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boltID, err := s.UpsertProduct(ctx, "Bolt", entity.KindRaw)
	require.NoError(t, err)

	require.NoError(t, s.UpsertSupplier(ctx, entity.Supplier{
		Name: "Acme", ProductID: boltID,
		UnitCost: decimal.RequireFromString("1.50"), LeadTimeDays: 2,
	}))
	require.NoError(t, s.UpsertSupplier(ctx, entity.Supplier{
		Name: "Acme", ProductID: boltID,
		UnitCost: decimal.RequireFromString("1.75"), LeadTimeDays: 3,
	}))

	sup, err := s.SupplierForProduct(ctx, boltID)
	require.NoError(t, err)
	assert.True(t, sup.UnitCost.Equal(decimal.RequireFromString("1.75")))
	assert.Equal(t, int64(3), sup.LeadTimeDays)
}

func TestSupplierForProduct_LowestIDWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boltID, err := s.UpsertProduct(ctx, "Bolt", entity.KindRaw)
	require.NoError(t, err)

	require.NoError(t, s.UpsertSupplier(ctx, entity.Supplier{
		Name: "Acme", ProductID: boltID,
		UnitCost: decimal.RequireFromString("1.50"), LeadTimeDays: 2,
	}))
	require.NoError(t, s.UpsertSupplier(ctx, entity.Supplier{
		Name: "Globex", ProductID: boltID,
		UnitCost: decimal.RequireFromString("1.20"), LeadTimeDays: 1,
	}))

	sup, err := s.SupplierForProduct(ctx, boltID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", sup.Name, "first configured provider wins, deterministically")
}

func TestSupplierForProduct_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SupplierForProduct(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
