package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := &fakeBeginner{tx: &fakeTx{}}
		err := WithTransaction(ctx, db, func(pgx.Tx) error { return nil })
		require.NoError(t, err)
		assert.True(t, db.tx.committed)
		assert.False(t, db.tx.rolledBack)
	})

	t.Run("rolls back on fn error", func(t *testing.T) {
		db := &fakeBeginner{tx: &fakeTx{}}
		boom := errors.New("boom")
		err := WithTransaction(ctx, db, func(pgx.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		assert.True(t, db.tx.rolledBack)
		assert.False(t, db.tx.committed)
	})

	t.Run("joins rollback failure", func(t *testing.T) {
		rbErr := errors.New("connection reset")
		db := &fakeBeginner{tx: &fakeTx{rollbackErr: rbErr}}
		boom := errors.New("boom")
		err := WithTransaction(ctx, db, func(pgx.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, rbErr)
	})

	t.Run("begin failure", func(t *testing.T) {
		db := &fakeBeginner{beginErr: errors.New("pool closed")}
		err := WithTransaction(ctx, db, func(pgx.Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin tx")
	})

	t.Run("commit failure", func(t *testing.T) {
		db := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
		err := WithTransaction(ctx, db, func(pgx.Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commit tx")
	})
}
