// Package memoryengine is the in-memory entity store engine. It backs local
// runs and tests, and can inject the failure modes the real store produces
// only under load: rejected writes, pending receipts, and records that are
// durable but not yet visible to queries.
package memoryengine

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

type Engine struct {
	mu      sync.RWMutex
	records []entitystore.Record
	byKey   map[string]int
	hidden  map[string]struct{}
	clock   clock.Clock

	failNext    []writeFault
	pendNext    int
	hideWritten bool
}

// writeFault is an injected failure for one write. When land is set the
// record is stored before the error is returned, reproducing the store's
// "failed but actually landed" behavior.
type writeFault struct {
	err  error
	land bool
}

var _ entitystore.Store = (*Engine)(nil)

func New(options ...Option) *Engine {
	e := &Engine{
		byKey:  make(map[string]int),
		hidden: make(map[string]struct{}),
		clock:  clock.NewRealClock(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Engine) Write(
	ctx context.Context,
	attrs entitystore.Attributes,
	payload []byte,
	ttl time.Duration,
) (entitystore.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, err
	}

	if _, ok := attrs.Get(entitystore.AttrType); !ok {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, entitystore.ErrMissingType
	}
	if !json.Valid(payload) {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, entitystore.ErrInvalidPayload
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var fault *writeFault
	if len(e.failNext) > 0 {
		fault = &e.failNext[0]
		e.failNext = e.failNext[1:]
		if !fault.land {
			return entitystore.WriteResult{Status: entitystore.WriteFailed}, fault.err
		}
	}

	now := e.clock.Now()
	key := entitystore.ContentKey(attrs, payload)
	if _, exists := e.byKey[key]; exists {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, entitystore.ErrAlreadyExists
	}

	record := entitystore.Record{
		Key:        key,
		Attributes: slices.Clone(attrs),
		Payload:    slices.Clone(payload),
		CreatedAt:  now,
		TTL:        ttl,
		TxRef:      uuid.New().String(),
	}

	e.byKey[key] = len(e.records)
	e.records = append(e.records, record)

	if e.hideWritten {
		e.hidden[key] = struct{}{}
	}

	if fault != nil {
		return entitystore.WriteResult{Status: entitystore.WriteFailed}, fault.err
	}

	if e.pendNext > 0 {
		e.pendNext--
		return entitystore.WriteResult{Status: entitystore.WritePending}, nil
	}

	return entitystore.WriteResult{
		Status:  entitystore.WriteConfirmed,
		Key:     key,
		Receipt: record.TxRef,
	}, nil
}

func (e *Engine) Query(ctx context.Context, q entitystore.Query) ([]entitystore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var matched []entitystore.Record
	for _, record := range e.records {
		if _, invisible := e.hidden[record.Key]; invisible {
			continue
		}
		if q.RecordType() != "" && record.Type() != q.RecordType() {
			continue
		}
		if q.Key() != "" && record.Key != q.Key() {
			continue
		}
		if !matchesPredicates(record, q.Predicates()) {
			continue
		}
		matched = append(matched, record)
	}

	slices.SortFunc(matched, func(a, b entitystore.Record) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = strings.Compare(a.Key, b.Key)
		}
		if q.Ordering() == entitystore.OrderCreatedAtDesc {
			return -c
		}
		return c
	})

	if limit := q.Limit(); limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func matchesPredicates(record entitystore.Record, predicates []entitystore.Predicate) bool {
	for _, p := range predicates {
		if record.Attr(p.Name()) != p.Value() {
			return false
		}
	}
	return true
}

// FailNextWrites queues errors returned by upcoming writes, one per write,
// before anything is stored.
func (e *Engine) FailNextWrites(errs ...error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, err := range errs {
		e.failNext = append(e.failNext, writeFault{err: err})
	}
}

// FailNextWritesLanded queues errors for upcoming writes that are stored
// anyway. This is the ambiguous case reconciliation exists for.
func (e *Engine) FailNextWritesLanded(errs ...error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, err := range errs {
		e.failNext = append(e.failNext, writeFault{err: err, land: true})
	}
}

// PendNextWrites makes the next n writes land durably but report
// WritePending with no key or receipt.
func (e *Engine) PendNextWrites(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendNext = n
}

// HideWrites makes subsequent writes land but stay invisible to Query until
// ReleaseHidden is called. This simulates the store's eventual visibility.
func (e *Engine) HideWrites(hide bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hideWritten = hide
}

func (e *Engine) ReleaseHidden() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = make(map[string]struct{})
}

// Len reports the number of stored records, visible or not.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}
