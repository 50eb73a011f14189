// Package engine implements the day-cycle state machine of the supply
// chain simulator and the on-demand production admission check.
//
// One Engine value owns one store for the duration of a call. There is no
// process-wide singleton: whoever orchestrates the simulation constructs
// the engine with a store handle and serializes calls to AdvanceDay and
// Admit (the store is a single shared mutable resource and a day advance
// assumes exclusive access).
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// Engine advances the simulation clock one day at a time.
//
// A day is five phases executed strictly in order, each committing its
// own transaction before the next starts:
//
//	start_day → handle_arrivals → resolve_plans → execute_production → end_day
//
// A failure in a later phase never rolls back an earlier phase's
// committed mutations; the failing phase's partial writes are rolled
// back and the error propagates to the caller.
type Engine struct {
	store  *store.Store
	rng    *rand.Rand
	tokens RunTokenGenerator
	log    zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the RNG seed used by plan synthesis. Two runs over the
// same store state with the same seed produce identical event sequences.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithTokenGenerator replaces the run-token generator. Tests use
// NewFixedGenerator for deterministic tokens.
func WithTokenGenerator(gen RunTokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = gen
	}
}

// WithLogger sets the operational logger. This is diagnostics only; the
// audit trail lives in the events table.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine bound to the given store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		tokens: UUIDv7Generator{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// dayRun carries the per-call state shared by the five phases.
type dayRun struct {
	day   int64
	token string
	rng   *rand.Rand
}

// AdvanceDay executes one full simulated day and returns the events
// logged for it, in append order.
//
// The clock only advances after the closing end_day marker commits, so a
// failed day can be retried: committed phases are idempotent against
// re-execution (arrivals already delivered are no longer pending, plan
// lines already fulfilled are no longer due).
func (e *Engine) AdvanceDay(ctx context.Context) ([]entity.Event, error) {
	st, err := e.store.State(ctx)
	if err != nil {
		return nil, err
	}

	r := &dayRun{
		day:   st.CurrentDay,
		token: e.tokens.Generate(),
		rng:   e.rng,
	}
	e.log.Debug().Int64("day", r.day).Str("run_token", r.token).Msg("advancing day")

	phases := []struct {
		name string
		fn   func(ctx context.Context, tx *store.Store, r *dayRun) error
	}{
		{"start_day", e.startDay},
		{"handle_arrivals", e.handleArrivals},
		{"resolve_plans", e.resolvePlans},
		{"execute_production", e.executeProduction},
		{"end_day", e.endDay},
	}

	for _, phase := range phases {
		err := e.store.WithTx(ctx, func(tx *store.Store) error {
			return phase.fn(ctx, tx, r)
		})
		if err != nil {
			return nil, &PhaseError{Phase: phase.name, Day: r.day, Err: err}
		}
		e.log.Debug().Int64("day", r.day).Str("phase", phase.name).Msg("phase committed")
	}

	return e.store.EventsForDay(ctx, r.day)
}

// startDay logs the opening marker for the day.
func (e *Engine) startDay(ctx context.Context, tx *store.Store, r *dayRun) error {
	return logEvent(ctx, tx, r, entity.EventStartDay,
		fmt.Sprintf("Start of day %d", r.day))
}

// endDay logs the closing marker and advances the persisted clock.
func (e *Engine) endDay(ctx context.Context, tx *store.Store, r *dayRun) error {
	if err := logEvent(ctx, tx, r, entity.EventEndDay,
		fmt.Sprintf("End of day %d", r.day)); err != nil {
		return err
	}
	return tx.SetCurrentDay(ctx, r.day+1)
}
