package errs

import "errors"

// Sentinel errors shared across usecase layers. The taxonomy mirrors the
// outcomes the append-only store can actually produce: an empty canonical
// view is a valid result, and uniqueness and confirmation races are
// advisory. Tentative success (a write accepted without a confirmable
// receipt) is not an error; it travels as a pending receipt.
var (
	// ErrNotFound means no canonical record exists for the identity.
	ErrNotFound = errors.New("not found")

	// ErrUniqueConflict means another identity canonically owns the value.
	ErrUniqueConflict = errors.New("unique value conflict")

	// ErrWriteConflict means a write failed ambiguously and the
	// reconciliation read could not locate the record within budget.
	// The write may still land; callers should retry later.
	ErrWriteConflict = errors.New("concurrent write conflict")

	// ErrStoreUnavailable means the entity store transport failed.
	ErrStoreUnavailable = errors.New("entity store unavailable")

	// ErrValidationFailed covers caller input errors and external
	// payment-validation rejections. Not retryable without new input.
	ErrValidationFailed = errors.New("validation failed")
)
