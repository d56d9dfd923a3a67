// Package resolve computes the canonical "current" record of a logical
// entity from the append-only store. The store never truncates history, so
// current state is a view derived on every read: newest non-deleted,
// non-expired record wins, with a deterministic tie-break.
package resolve

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/errs"
)

// AttrDeletedKey names the victim record on a deletion marker.
const AttrDeletedKey = "deleted_key"

const deletionSuffix = "_deletion"

// MarkerType returns the record type of deletion markers for recordType.
// Markers must also carry the victim's identity attribute so resolution can
// find them with the same query scope.
func MarkerType(recordType string) string {
	return recordType + deletionSuffix
}

type Resolver struct {
	store  entitystore.Store
	clock  clock.Clock
	logger *slog.Logger
}

func New(store entitystore.Store, clk clock.Clock, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Canonical resolves the single current record for the identity, or
// errs.ErrNotFound when no live record exists. Pure read, no side effects.
func (r *Resolver) Canonical(
	ctx context.Context,
	recordType, identityAttr, identityValue string,
) (entitystore.Record, error) {
	records, err := r.fetch(ctx, recordType, identityAttr, identityValue)
	if err != nil {
		return entitystore.Record{}, err
	}
	if len(records) == 0 {
		return entitystore.Record{}, errs.ErrNotFound
	}

	deleted, err := r.deletedKeys(ctx, recordType, identityAttr, identityValue)
	if err != nil {
		return entitystore.Record{}, err
	}

	now := r.clock.Now()
	for _, record := range records {
		if _, isDeleted := deleted[record.Key]; isDeleted {
			continue
		}
		if record.Expired(now) {
			continue
		}
		return record, nil
	}

	return entitystore.Record{}, errs.ErrNotFound
}

// History returns every record ever written for the identity, newest first,
// including records that deletion markers have since excluded from canonical
// resolution. The append-only log is the audit trail.
func (r *Resolver) History(
	ctx context.Context,
	recordType, identityAttr, identityValue string,
) ([]entitystore.Record, error) {
	return r.fetch(ctx, recordType, identityAttr, identityValue)
}

func (r *Resolver) fetch(
	ctx context.Context,
	recordType, identityAttr, identityValue string,
) ([]entitystore.Record, error) {
	query := entitystore.NewQuery(recordType).
		Where(identityAttr, identityValue).
		OrderDesc().
		Build()

	records, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "canonical query failed"), errs.ErrStoreUnavailable)
	}

	// Re-sort locally. Resolution must be deterministic regardless of the
	// ordering the store happened to return: createdAt descending, equal
	// timestamps broken by the lexicographically greater key.
	slices.SortFunc(records, func(a, b entitystore.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Key, a.Key)
	})

	return records, nil
}

// deletedKeys collects every record key excluded by a deletion marker for
// this identity. A marker is permanent: once present, its victim never
// resolves again, even against newer records referencing the same key.
func (r *Resolver) deletedKeys(
	ctx context.Context,
	recordType, identityAttr, identityValue string,
) (map[string]struct{}, error) {
	query := entitystore.NewQuery(MarkerType(recordType)).
		Where(identityAttr, identityValue).
		Build()

	markers, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "deletion marker query failed"), errs.ErrStoreUnavailable)
	}

	deleted := make(map[string]struct{}, len(markers))
	for _, marker := range markers {
		if victim := marker.Attr(AttrDeletedKey); victim != "" {
			deleted[victim] = struct{}{}
		}
	}
	return deleted, nil
}
