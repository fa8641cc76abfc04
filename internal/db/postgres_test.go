package db

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
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestRunInTxCommits(t *testing.T) {
	tx := &fakeTx{}
	called := false

	err := RunInTx(context.Background(), fakeBeginner{tx: tx}, func(ctx context.Context, got pgx.Tx) error {
		called = true
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		assert.Same(t, tx, got)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	sentinel := errors.New("event full")

	err := RunInTx(context.Background(), fakeBeginner{tx: tx}, func(context.Context, pgx.Tx) error {
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	tx := &fakeTx{}

	assert.Panics(t, func() {
		_ = RunInTx(context.Background(), fakeBeginner{tx: tx}, func(context.Context, pgx.Tx) error {
			panic("boom")
		})
	})
	assert.True(t, tx.rolledBack)
}

func TestRunInTxBeginAndCommitErrors(t *testing.T) {
	err := RunInTx(context.Background(), fakeBeginner{err: errors.New("pool closed")}, func(context.Context, pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "failed to begin transaction")

	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	err = RunInTx(context.Background(), fakeBeginner{tx: tx}, func(context.Context, pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "failed to commit transaction")
}
