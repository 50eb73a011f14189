// Package entity defines the domain types shared by the store, the
// day-cycle engine, and the importers.
//
// All simulated time is an integer day index: 1-based, monotonically
// increasing, persisted in SimulationState. Lead times and completion
// offsets are calendar-day offsets on that index, never wall-clock time.
package entity

import "github.com/shopspring/decimal"

// ProductKind distinguishes purchasable raw materials from manufactured
// finished goods.
type ProductKind string

const (
	KindRaw      ProductKind = "raw"
	KindFinished ProductKind = "finished"
)

// Product is a raw material or finished good. Names are unique.
type Product struct {
	ID   int64
	Name string
	Kind ProductKind
}

// BOMEdge states that one unit of the finished product consumes Quantity
// units of the material. At most one edge exists per (finished, material)
// pair; re-import replaces rather than duplicates.
type BOMEdge struct {
	ID                int64
	FinishedProductID int64
	MaterialID        int64
	Quantity          int64
}

// DefaultMaxCapacity is the storage ceiling applied to inventory rows
// created lazily (e.g. on first delivery of a new material).
const DefaultMaxCapacity = 1000

// Inventory is the on-hand quantity for one product.
//
// INVARIANT: 0 <= Quantity <= MaxCapacity after every committed mutation.
// Increases that would overflow are deferred by the engine, never clamped.
type Inventory struct {
	ProductID   int64
	Quantity    int64
	MaxCapacity int64
}

// Supplier is one (provider, material) sourcing row. A provider appears
// once per material it supplies, so the same Name may occur on several
// rows with different products.
type Supplier struct {
	ID           int64
	Name         string
	ProductID    int64
	UnitCost     decimal.Decimal
	LeadTimeDays int64
}

// PurchaseStatus is the lifecycle of a purchase order.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseDelivered PurchaseStatus = "delivered"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// PurchaseOrder is an order for raw material placed with a supplier.
// ExpectedDeliveryDay = IssueDay + supplier lead time at creation; the
// arrivals phase pushes it forward one day at a time while the receiving
// inventory is at capacity.
type PurchaseOrder struct {
	ID                  int64
	SupplierID          int64
	ProductID           int64
	PlanID              *int64 // daily plan line that triggered it, if any
	Quantity            int64
	IssueDay            int64
	ExpectedDeliveryDay int64
	Status              PurchaseStatus
}

// ProductionStatus is the lifecycle of a production order.
type ProductionStatus string

const (
	ProductionPending    ProductionStatus = "pending"
	ProductionInProgress ProductionStatus = "in_progress"
	ProductionCompleted  ProductionStatus = "completed"
	ProductionCancelled  ProductionStatus = "cancelled"
)

// ProductionOrder manufactures Quantity units of a finished product.
// Materials are consumed when the order is promoted to in_progress, and
// the finished goods are booked into inventory at completion.
type ProductionOrder struct {
	ID                    int64
	ProductID             int64
	Quantity              int64
	CreationDay           int64
	ExpectedCompletionDay int64
	Status                ProductionStatus
	DailyPlanID           *int64
}

// PlanStatus is the lifecycle of a daily plan line.
type PlanStatus string

const (
	PlanPending      PlanStatus = "pending"
	PlanInProduction PlanStatus = "in_production"
	PlanFulfilled    PlanStatus = "fulfilled"
	PlanCancelled    PlanStatus = "cancelled"
)

// DailyPlan is one requested (day, model, quantity) line of the production
// plan. Model is the finished product name. One row per (day, model).
type DailyPlan struct {
	ID       int64
	Day      int64
	Model    string
	Quantity int64
	Status   PlanStatus
}

// Event is one append-only audit record. RunToken correlates all events
// written by a single AdvanceDay or Admit call.
type Event struct {
	ID       int64  `json:"id"`
	RunToken string `json:"run_token"`
	Type     string `json:"type"`
	SimDay   int64  `json:"sim_day"`
	Detail   string `json:"detail"`
}

// Event types emitted by the engine. Types are free-form tags in the
// store; these constants are the full vocabulary the engine uses.
const (
	EventStartDay              = "start_day"
	EventEndDay                = "end_day"
	EventPurchaseArrival       = "purchase_arrival"
	EventPurchaseRescheduled   = "purchase_rescheduled"
	EventPurchaseOrderCreated  = "purchase_order_created"
	EventPlanGenerated         = "plan_generated"
	EventOrderFulfilled        = "order_fulfilled"
	EventProductionCreated     = "production_order_created"
	EventProductionStarted     = "production_started"
	EventProductionCompleted   = "production_completed"
	EventProductionRescheduled = "production_rescheduled"
	EventError                 = "error"
)

// SimulationState is the singleton clock row. CurrentDay starts at 1 and
// only ever increases; it survives process restarts.
type SimulationState struct {
	CurrentDay     int64
	CapacityPerDay int64
}
