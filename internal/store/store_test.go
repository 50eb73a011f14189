package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/supplysim/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)

	_, err = s1.UpsertProduct(context.Background(), "Widget", entity.KindFinished)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Re-open over the existing file: schema application must not wipe data.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	p, err := s2.ProductByName(context.Background(), "Widget")
	require.NoError(t, err)
	assert.Equal(t, entity.KindFinished, p.Kind)
}

func TestOpen_SeedsSimulationState(t *testing.T) {
	s := openTestStore(t)

	st, err := s.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.CurrentDay, "clock starts at day 1")
	assert.Greater(t, st.CapacityPerDay, int64(0))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.UpsertProduct(ctx, "Widget", entity.KindFinished); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.ProductByName(ctx, "Widget")
	assert.ErrorIs(t, err, ErrNotFound, "rolled-back write must not be visible")
}

func TestWithTx_CommitOnNil(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Store) error {
		_, err := tx.UpsertProduct(ctx, "Widget", entity.KindFinished)
		return err
	})
	require.NoError(t, err)

	_, err = s.ProductByName(ctx, "Widget")
	assert.NoError(t, err)
}

func TestWithTx_NestedRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Store) error {
		return tx.WithTx(ctx, func(*Store) error { return nil })
	})
	assert.ErrorIs(t, err, ErrNestedTx)
}
