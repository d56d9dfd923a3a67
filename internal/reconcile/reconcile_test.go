//go:build unit

package reconcile_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/config"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReconciler() *reconcile.Reconciler {
	return reconcile.New(config.ReconcileConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}, slog.Default())
}

func confirmedOp(key, receipt string) reconcile.Operation {
	return func(_ context.Context) (entitystore.WriteResult, error) {
		return entitystore.WriteResult{
			Status:  entitystore.WriteConfirmed,
			Key:     key,
			Receipt: receipt,
		}, nil
	}
}

func failingOp(err error) reconcile.Operation {
	return func(_ context.Context) (entitystore.WriteResult, error) {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, err
	}
}

func probeNotFound(_ context.Context) (entitystore.Record, error) {
	return entitystore.Record{}, errs.ErrNotFound
}

func probeFound(record entitystore.Record) reconcile.Probe {
	return func(_ context.Context) (entitystore.Record, error) {
		return record, nil
	}
}

func TestExecuteConfirmedWrite(t *testing.T) {
	t.Parallel()

	outcome, err := newReconciler().Execute(t.Context(), confirmedOp("key-1", "rcpt-1"), probeNotFound)

	require.NoError(t, err)
	assert.Equal(t, "key-1", outcome.Key)
	assert.Equal(t, "rcpt-1", outcome.Receipt)
	assert.False(t, outcome.AlreadyApplied)
	assert.False(t, outcome.Pending)
}

func TestExecutePendingWrite(t *testing.T) {
	t.Parallel()

	op := func(_ context.Context) (entitystore.WriteResult, error) {
		return entitystore.WriteResult{Status: entitystore.WritePending}, nil
	}

	outcome, err := newReconciler().Execute(t.Context(), op, probeNotFound)

	require.NoError(t, err)
	assert.True(t, outcome.Pending)
	assert.Empty(t, outcome.Key)
}

func TestExecuteDuplicateIsAlreadyApplied(t *testing.T) {
	t.Parallel()

	existing := entitystore.Record{Key: "key-1", TxRef: "rcpt-1"}
	outcome, err := newReconciler().Execute(t.Context(),
		failingOp(entitystore.ErrAlreadyExists),
		probeFound(existing),
	)

	require.NoError(t, err)
	assert.True(t, outcome.AlreadyApplied)
	assert.Equal(t, "key-1", outcome.Key)
	assert.Equal(t, "rcpt-1", outcome.Receipt)
}

func TestExecuteDuplicateWithoutProbeHit(t *testing.T) {
	t.Parallel()

	// The duplicate signal alone proves the state exists; a missing probe
	// result only costs the key.
	outcome, err := newReconciler().Execute(t.Context(),
		failingOp(entitystore.ErrAlreadyExists),
		probeNotFound,
	)

	require.NoError(t, err)
	assert.True(t, outcome.AlreadyApplied)
	assert.Empty(t, outcome.Key)
}

func TestExecuteAmbiguousFailureRecordLanded(t *testing.T) {
	t.Parallel()

	ambiguous := entitystore.MarkAmbiguous(errors.New("connection reset"), "transport failure")
	landed := entitystore.Record{Key: "key-9", TxRef: "rcpt-9"}

	// The record is invisible for the first two reads, then shows up.
	calls := 0
	probe := func(_ context.Context) (entitystore.Record, error) {
		calls++
		if calls < 3 {
			return entitystore.Record{}, errs.ErrNotFound
		}
		return landed, nil
	}

	outcome, err := newReconciler().Execute(t.Context(), failingOp(ambiguous), probe)

	require.NoError(t, err)
	assert.True(t, outcome.AlreadyApplied)
	assert.Equal(t, "key-9", outcome.Key)
	assert.Equal(t, 3, calls)
}

func TestExecuteAmbiguousFailureBudgetExhausted(t *testing.T) {
	t.Parallel()

	ambiguous := entitystore.MarkAmbiguous(errors.New("i/o timeout"), "transport failure")

	outcome, err := newReconciler().Execute(t.Context(), failingOp(ambiguous), probeNotFound)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrWriteConflict)
	assert.Empty(t, outcome.Key)
}

func TestExecuteAmbiguousFailureBrokenReadPath(t *testing.T) {
	t.Parallel()

	ambiguous := entitystore.MarkAmbiguous(errors.New("broken pipe"), "transport failure")
	readFailure := errs.Mark(errs.New("store down"), errs.ErrStoreUnavailable)

	calls := 0
	probe := func(_ context.Context) (entitystore.Record, error) {
		calls++
		return entitystore.Record{}, readFailure
	}

	_, err := newReconciler().Execute(t.Context(), failingOp(ambiguous), probe)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
	// A non-NotFound read error stops retries immediately.
	assert.Equal(t, 1, calls)
}

func TestExecutePlainFailurePassesThrough(t *testing.T) {
	t.Parallel()

	plain := entitystore.ErrInvalidPayload

	_, err := newReconciler().Execute(t.Context(), failingOp(plain), probeNotFound)

	require.Error(t, err)
	assert.ErrorIs(t, err, entitystore.ErrInvalidPayload)
	assert.False(t, errs.Is(err, errs.ErrWriteConflict))
}

func TestExecuteContextTimeoutIsAmbiguous(t *testing.T) {
	t.Parallel()

	// A deadline on the write itself means the outcome is unknown.
	op := func(_ context.Context) (entitystore.WriteResult, error) {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, context.DeadlineExceeded
	}
	landed := entitystore.Record{Key: "key-5", TxRef: "rcpt-5"}

	outcome, err := newReconciler().Execute(t.Context(), op, probeFound(landed))

	require.NoError(t, err)
	assert.True(t, outcome.AlreadyApplied)
	assert.Equal(t, "key-5", outcome.Key)
}
