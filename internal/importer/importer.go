// Package importer seeds the entity store from external JSON documents:
// the production plan (models, BOMs, daily plan), the providers
// catalogue, and the initial inventory.
//
// Every document is validated against an embedded CUE schema before any
// write. Validation failure is fatal and aborts the import with the
// store untouched; each import then runs in a single transaction, so a
// mid-import persistence failure also leaves the store in its pre-import
// state. Re-imports are idempotent upserts, never appends.
//
// Product and provider names are NFC-normalized so the same name
// compares equal regardless of how the source document encoded it.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// PlanDocument is the plan import shape:
// capacity, models with their BOMs, and the day-by-day order plan.
type PlanDocument struct {
	CapacityPerDay int64                `json:"capacity_per_day"`
	Models         map[string]ModelSpec `json:"models"`
	Plan           []PlanDay            `json:"plan"`
}

// ModelSpec is one finished product and its bill of materials:
// material name -> quantity per unit.
type ModelSpec struct {
	BOM map[string]int64 `json:"bom"`
}

// PlanDay is the ordered demand for one day.
type PlanDay struct {
	Day    int64       `json:"day"`
	Orders []PlanOrder `json:"orders"`
}

// PlanOrder requests Quantity units of the named model.
type PlanOrder struct {
	Model    string `json:"model"`
	Quantity int64  `json:"quantity"`
}

// ProvidersDocument is the providers import shape.
type ProvidersDocument struct {
	Providers []Provider `json:"providers"`
}

// Provider supplies one or more materials, each with its own cost and
// lead time. One supplier row is created per (provider, material) pair.
type Provider struct {
	Name      string              `json:"name"`
	Materials map[string]Material `json:"materials"`
}

// Material is the sourcing terms for one material from one provider.
type Material struct {
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LeadTimeDays int64           `json:"lead_time_days"`
}

// ImportPlan loads a plan document: upserts finished and raw products,
// replaces the BOM edges of every touched finished product, and upserts
// plan lines on (day, model). Importing the same document twice leaves
// exactly one BOM edge per (finished, material) pair and one plan line
// per (day, model).
func ImportPlan(ctx context.Context, s *store.Store, raw []byte) error {
	if err := validateDocument(planSchema, "#Plan", raw); err != nil {
		return fmt.Errorf("import plan: %w", err)
	}

	var doc PlanDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("import plan: %w", err)
	}

	return s.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.SetCapacityPerDay(ctx, doc.CapacityPerDay); err != nil {
			return err
		}

		// Sorted model names keep product ids stable across imports of
		// the same document.
		for _, modelName := range sortedKeys(doc.Models) {
			model := doc.Models[modelName]
			finishedID, err := tx.UpsertProduct(ctx, norm.NFC.String(modelName), entity.KindFinished)
			if err != nil {
				return err
			}

			edges := make([]entity.BOMEdge, 0, len(model.BOM))
			for _, materialName := range sortedKeys(model.BOM) {
				materialID, err := tx.UpsertProduct(ctx, norm.NFC.String(materialName), entity.KindRaw)
				if err != nil {
					return err
				}
				edges = append(edges, entity.BOMEdge{
					MaterialID: materialID,
					Quantity:   model.BOM[materialName],
				})
			}
			if err := tx.ReplaceBOM(ctx, finishedID, edges); err != nil {
				return err
			}
		}

		for _, day := range doc.Plan {
			for _, order := range day.Orders {
				if err := tx.UpsertPlanLine(ctx, day.Day, norm.NFC.String(order.Model), order.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ImportProviders loads a providers document, creating one supplier row
// per (provider, material) pair and auto-creating raw products for
// materials not seen before. Re-import updates cost and lead time.
func ImportProviders(ctx context.Context, s *store.Store, raw []byte) error {
	if err := validateDocument(providersSchema, "#Providers", raw); err != nil {
		return fmt.Errorf("import providers: %w", err)
	}

	var doc ProvidersDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("import providers: %w", err)
	}

	return s.WithTx(ctx, func(tx *store.Store) error {
		for _, provider := range doc.Providers {
			name := norm.NFC.String(provider.Name)
			for _, materialName := range sortedKeys(provider.Materials) {
				material := provider.Materials[materialName]
				productID, err := tx.UpsertProduct(ctx, norm.NFC.String(materialName), entity.KindRaw)
				if err != nil {
					return err
				}
				if err := tx.UpsertSupplier(ctx, entity.Supplier{
					Name:         name,
					ProductID:    productID,
					UnitCost:     material.UnitCost,
					LeadTimeDays: material.LeadTimeDays,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ImportInventory loads a flat material -> quantity map, upserting
// on-hand quantities. Materials not seen before are auto-created as raw
// products with the default max capacity.
func ImportInventory(ctx context.Context, s *store.Store, raw []byte) error {
	if err := validateDocument(inventorySchema, "#Inventory", raw); err != nil {
		return fmt.Errorf("import inventory: %w", err)
	}

	var doc map[string]int64
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("import inventory: %w", err)
	}

	return s.WithTx(ctx, func(tx *store.Store) error {
		for _, materialName := range sortedKeys(doc) {
			productID, err := tx.UpsertProduct(ctx, norm.NFC.String(materialName), entity.KindRaw)
			if err != nil {
				return err
			}
			if err := tx.SetInventoryQuantity(ctx, productID, doc[materialName]); err != nil {
				return err
			}
		}
		return nil
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
