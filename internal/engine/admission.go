package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// Shortfall is one material missing for an admission, by name and exact
// missing quantity.
type Shortfall struct {
	Material string `json:"material"`
	Missing  int64  `json:"missing"`
}

// AdmitResult is the outcome of an admission attempt. A refused
// admission is not an error: Err stays nil and Message explains why.
type AdmitResult struct {
	OK                bool        `json:"ok"`
	Message           string      `json:"message"`
	Missing           []Shortfall `json:"missing,omitempty"`
	ProductionOrderID int64       `json:"production_order_id,omitempty"`
}

// Admit promotes one daily plan line to a production order, on demand
// and outside the daily cycle (e.g. from an operator action).
//
// The check-then-commit is atomic: either every effect commits - the
// production order, the plan line moving to in_production, every
// material decrement, and the audit event - or none do. A refusal
// (missing plan line, missing product or BOM, insufficient materials)
// writes nothing and enumerates each shortfall exactly.
//
// Only an actual persistence failure returns a non-nil error; in that
// case every mutation performed in this call has been rolled back.
func (e *Engine) Admit(ctx context.Context, planID int64) (*AdmitResult, error) {
	var result *AdmitResult

	err := e.store.WithTx(ctx, func(tx *store.Store) error {
		res, err := e.admit(ctx, tx, planID)
		if err != nil {
			return err
		}
		result = res
		if !res.OK {
			// Nothing was written on a refusal, but make it explicit.
			return errAdmitRefused
		}
		return nil
	})
	if err != nil && !errors.Is(err, errAdmitRefused) {
		return nil, err
	}

	return result, nil
}

// errAdmitRefused forces the admission transaction to roll back on a
// refusal outcome. It never escapes Admit.
var errAdmitRefused = errors.New("engine: admission refused")

func (e *Engine) admit(ctx context.Context, tx *store.Store, planID int64) (*AdmitResult, error) {
	line, err := tx.PlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &AdmitResult{Message: fmt.Sprintf("plan line #%d not found", planID)}, nil
		}
		return nil, err
	}

	if line.Status != entity.PlanPending {
		// Re-admitting an in_production line would consume its
		// materials twice.
		return &AdmitResult{Message: fmt.Sprintf("plan line #%d is %s, not pending", planID, line.Status)}, nil
	}

	product, err := tx.ProductByName(ctx, line.Model)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &AdmitResult{Message: fmt.Sprintf("product %q not found", line.Model)}, nil
		}
		return nil, err
	}

	edges, err := tx.BOMForProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return &AdmitResult{Message: fmt.Sprintf("no BOM configured for %s", product.Name)}, nil
	}

	shortfalls, err := bomShortfalls(ctx, tx, edges, line.Quantity)
	if err != nil {
		return nil, err
	}
	if len(shortfalls) > 0 {
		missing := make([]Shortfall, 0, len(shortfalls))
		parts := make([]string, 0, len(shortfalls))
		for _, sf := range shortfalls {
			material, err := tx.ProductByID(ctx, sf.materialID)
			if err != nil {
				return nil, err
			}
			missing = append(missing, Shortfall{Material: material.Name, Missing: sf.missing})
			parts = append(parts, fmt.Sprintf("%s: %d units", material.Name, sf.missing))
		}
		return &AdmitResult{
			Message: "missing materials: " + strings.Join(parts, ", "),
			Missing: missing,
		}, nil
	}

	st, err := tx.State(ctx)
	if err != nil {
		return nil, err
	}
	day := st.CurrentDay

	// The order starts in_progress, not pending: its materials are
	// consumed right here, and the day cycle's promotion pass consumes
	// materials for every pending order it picks up. Inserting it
	// pending would consume the same materials a second time.
	orderID, err := tx.InsertProductionOrder(ctx, entity.ProductionOrder{
		ProductID:             product.ID,
		Quantity:              line.Quantity,
		CreationDay:           day,
		ExpectedCompletionDay: day + 1,
		Status:                entity.ProductionInProgress,
		DailyPlanID:           &line.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.SetPlanStatus(ctx, line.ID, entity.PlanInProduction); err != nil {
		return nil, err
	}

	for _, edge := range edges {
		if err := tx.AdjustInventory(ctx, edge.MaterialID, -edge.Quantity*line.Quantity); err != nil {
			return nil, err
		}
	}

	r := &dayRun{day: day, token: e.tokens.Generate()}
	if err := logEvent(ctx, tx, r, entity.EventProductionCreated,
		fmt.Sprintf("Production order #%d created: %d units of %s for plan line #%d (admitted)",
			orderID, line.Quantity, product.Name, line.ID)); err != nil {
		return nil, err
	}

	return &AdmitResult{
		OK:                true,
		Message:           fmt.Sprintf("production order #%d created", orderID),
		ProductionOrderID: orderID,
	}, nil
}
