package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/errs"
)

// Owner is a canonical holder of a unique value.
type Owner struct {
	Identity string
	Key      string
}

// UniqueConflictError reports the existing canonical owners of a value.
type UniqueConflictError struct {
	Field  string
	Value  string
	Owners []Owner
}

func (e *UniqueConflictError) Error() string {
	return fmt.Sprintf("%s %q is already taken by %d canonical owner(s)", e.Field, e.Value, len(e.Owners))
}

func (e *UniqueConflictError) Is(target error) bool {
	return target == errs.ErrUniqueConflict
}

// Normalize is the case-normalization applied to uniqueness-constrained
// values before comparison.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ClaimUnique checks that no identity other than selfIdentity canonically
// owns the value. Advisory only: the store has no compare-and-swap, so two
// concurrent claims can both pass and both write. The race is bounded, not
// closed; AuditUnique detects it after the fact.
func (r *Resolver) ClaimUnique(
	ctx context.Context,
	recordType, field, value, identityAttr, selfIdentity string,
) error {
	owners, err := r.AuditUnique(ctx, recordType, field, value, identityAttr)
	if err != nil {
		return err
	}

	self := Normalize(selfIdentity)
	others := slices.DeleteFunc(owners, func(o Owner) bool {
		return Normalize(o.Identity) == self
	})

	if len(others) > 0 {
		return &UniqueConflictError{
			Field:  field,
			Value:  Normalize(value),
			Owners: others,
		}
	}
	return nil
}

// AuditUnique reports every canonical owner of the value. More than one
// owner means concurrent claims raced through the advisory check; the
// result feeds reconciliation tooling, not a hard failure.
func (r *Resolver) AuditUnique(
	ctx context.Context,
	recordType, field, value, identityAttr string,
) ([]Owner, error) {
	normalized := Normalize(value)

	query := entitystore.NewQuery(recordType).
		Where(field, normalized).
		Build()

	candidates, err := r.store.Query(ctx, query)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "uniqueness query failed"), errs.ErrStoreUnavailable)
	}

	seen := make(map[string]struct{})
	var owners []Owner
	for _, candidate := range candidates {
		identity := candidate.Attr(identityAttr)
		if identity == "" {
			continue
		}
		if _, done := seen[identity]; done {
			continue
		}
		seen[identity] = struct{}{}

		// A historical record claiming the value is not enough; only the
		// identity's canonical record decides current ownership.
		canonical, resolveErr := r.Canonical(ctx, recordType, identityAttr, identity)
		if resolveErr != nil {
			if errs.Is(resolveErr, errs.ErrNotFound) {
				continue
			}
			return nil, resolveErr
		}

		if Normalize(canonical.Attr(field)) == normalized {
			owners = append(owners, Owner{Identity: identity, Key: canonical.Key})
		}
	}

	slices.SortFunc(owners, func(a, b Owner) int {
		return strings.Compare(a.Identity, b.Identity)
	})

	return owners, nil
}
