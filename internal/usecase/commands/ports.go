package commands

import (
	"context"
	"time"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/reconcile"
)

// Consumer-side ports, declared where they are used.

type EntityStore interface {
	Write(ctx context.Context, attrs entitystore.Attributes, payload []byte, ttl time.Duration) (entitystore.WriteResult, error)
	Query(ctx context.Context, q entitystore.Query) ([]entitystore.Record, error)
}

type CanonicalResolver interface {
	Canonical(ctx context.Context, recordType, identityAttr, identityValue string) (entitystore.Record, error)
	ClaimUnique(ctx context.Context, recordType, field, value, identityAttr, selfIdentity string) error
}

// ConflictReconciler wraps state-mutating writes; see internal/reconcile.
type ConflictReconciler interface {
	Execute(ctx context.Context, op reconcile.Operation, probe reconcile.Probe) (reconcile.Outcome, error)
}

// TxValidation is the external payment validator's verdict.
type TxValidation struct {
	Valid  bool
	Reason string
}

// TxValidator is the external transaction-validation collaborator. It is
// consulted before a payment validation record is written; on a failed
// verdict nothing is written.
type TxValidator interface {
	Validate(ctx context.Context, txHash, wallet string) (TxValidation, error)
}
