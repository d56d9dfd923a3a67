package queries

import (
	"context"

	"skillmesh/internal/entitystore"
)

// Consumer-side ports. Queries read the append-only store and the canonical
// resolver; they never write.

type EntityStore interface {
	Query(ctx context.Context, q entitystore.Query) ([]entitystore.Record, error)
}

type CanonicalResolver interface {
	Canonical(ctx context.Context, recordType, identityAttr, identityValue string) (entitystore.Record, error)
	History(ctx context.Context, recordType, identityAttr, identityValue string) ([]entitystore.Record, error)
}
