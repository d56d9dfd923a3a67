package entitystore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAlreadyExists is the store's semantic duplicate signal: a record
	// with the same content key was already written.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrUnavailable is a transport or infrastructure failure on a read.
	ErrUnavailable = errors.New("entity store unavailable")

	// ErrInvalidPayload means the payload body is not valid JSON.
	ErrInvalidPayload = errors.New("payload is not valid json")

	// ErrMissingType means the write carried no type attribute.
	ErrMissingType = errors.New("type attribute is required")
)

// Store is the append-only entity store boundary. There is no update and no
// delete: "updates" are new records, "deletes" are marker records, and all
// current-state semantics live in the read path above this interface.
type Store interface {
	// Write appends a record. The result is three-valued; see WriteResult.
	// A returned error may still mean the record landed, which is why
	// ambiguous failures are marked (see AmbiguousWriteError) and
	// reconciled by the caller rather than trusted.
	Write(ctx context.Context, attrs Attributes, payload []byte, ttl time.Duration) (WriteResult, error)

	// Query returns all records matching the attribute filter. No
	// read-after-write guarantee: a record whose write just confirmed may
	// not be visible yet.
	Query(ctx context.Context, q Query) ([]Record, error)
}

// AmbiguousWriteError wraps a write failure whose outcome is unknown: the
// submission may have landed despite the error (timeout, ordering conflict,
// "still processing"). Callers must reconcile with a read, not retry blindly.
type AmbiguousWriteError struct {
	Reason string
	cause  error
}

func (e *AmbiguousWriteError) Error() string {
	if e.cause != nil {
		return "ambiguous write (" + e.Reason + "): " + e.cause.Error()
	}
	return "ambiguous write (" + e.Reason + ")"
}

func (e *AmbiguousWriteError) Unwrap() error {
	return e.cause
}

func MarkAmbiguous(err error, reason string) error {
	return &AmbiguousWriteError{Reason: reason, cause: err}
}

// IsAmbiguous reports whether err carries an unknown write outcome.
// Context cancellation and deadline expiry count: the request may have
// reached the store before the caller gave up.
func IsAmbiguous(err error) bool {
	if err == nil {
		return false
	}
	var ambiguous *AmbiguousWriteError
	if errors.As(err, &ambiguous) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
