// Package reconcile wraps state-mutating writes against the entity store.
// The store can reject a write that actually landed and can acknowledge a
// write whose receipt arrives later, so a failed operation is never taken at
// face value: it is classified, and ambiguous failures are resolved by
// reading back the record the write was trying to create.
package reconcile

import (
	"context"
	"log/slog"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/config"
	"skillmesh/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// Operation performs the write being reconciled.
type Operation func(ctx context.Context) (entitystore.WriteResult, error)

// Probe looks for the record the operation was attempting to create, using
// the same identity fields the write carried. It returns errs.ErrNotFound
// while the record is not visible.
type Probe func(ctx context.Context) (entitystore.Record, error)

// Outcome is the reconciled result of a write.
type Outcome struct {
	Key     string
	Receipt string
	// AlreadyApplied means the intended state was found to exist already,
	// either via the store's duplicate signal or a reconciliation read.
	AlreadyApplied bool
	// Pending means the write was submitted without a confirmable
	// receipt. Tentative success; the caller may re-query later.
	Pending bool
}

type Reconciler struct {
	cfg    config.ReconcileConfig
	logger *slog.Logger
}

func New(cfg config.ReconcileConfig, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		cfg:    cfg,
		logger: logger,
	}
}

// Execute runs the operation and classifies its failure:
//
//   - duplicate signal from the store  -> success, AlreadyApplied
//   - ambiguous transport failure      -> bounded reconciliation reads;
//     record found -> AlreadyApplied, otherwise errs.ErrWriteConflict
//     (retry-later, the write may still land after we give up)
//   - anything else                    -> the failure itself
func (r *Reconciler) Execute(ctx context.Context, op Operation, probe Probe) (Outcome, error) {
	result, err := op(ctx)
	if err == nil {
		if result.Pending() {
			return Outcome{Pending: true}, nil
		}
		return Outcome{Key: result.Key, Receipt: result.Receipt}, nil
	}

	if errs.Is(err, entitystore.ErrAlreadyExists) {
		outcome := Outcome{AlreadyApplied: true}
		if record, probeErr := probe(ctx); probeErr == nil {
			outcome.Key = record.Key
			outcome.Receipt = record.TxRef
		}
		return outcome, nil
	}

	if entitystore.IsAmbiguous(err) {
		r.logger.Warn("ambiguous write failure, starting reconciliation reads", "error", err)
		return r.reconcile(ctx, err, probe)
	}

	return Outcome{}, err
}

// reconcile issues bounded reconciliation reads with exponential backoff
// until the record shows up or the retry budget runs out.
func (r *Reconciler) reconcile(ctx context.Context, writeErr error, probe Probe) (Outcome, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.BaseDelay
	policy.MaxInterval = r.cfg.MaxDelay
	policy.MaxElapsedTime = 0

	var found entitystore.Record

	retryErr := backoff.Retry(func() error {
		record, probeErr := probe(ctx)
		if probeErr == nil {
			found = record
			return nil
		}
		if errs.Is(probeErr, errs.ErrNotFound) {
			return probeErr
		}
		// A broken read path cannot tell us anything; stop retrying.
		return backoff.Permanent(probeErr)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.cfg.MaxRetries)), ctx))

	if retryErr == nil {
		r.logger.Info("reconciliation read located the record", "key", found.Key)
		return Outcome{
			Key:            found.Key,
			Receipt:        found.TxRef,
			AlreadyApplied: true,
		}, nil
	}

	if errs.Is(retryErr, errs.ErrNotFound) {
		return Outcome{}, errs.Mark(
			errs.Wrap(writeErr, "record not visible after reconciliation budget"),
			errs.ErrWriteConflict,
		)
	}

	return Outcome{}, retryErr
}
