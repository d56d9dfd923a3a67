package entitystore

import (
	"slices"
	"strings"
)

type Ordering int

const (
	OrderCreatedAtDesc Ordering = iota
	OrderCreatedAtAsc
)

// Predicate is an equality match on a single attribute.
type Predicate struct {
	name  string
	value string
}

func P(name, value string) Predicate {
	return Predicate{name: name, value: value}
}

func (p Predicate) Name() string {
	return p.name
}

func (p Predicate) Value() string {
	return p.value
}

// Query is an attribute-filtered read against the store: a record type,
// conjunctive equality predicates, an ordering, and an optional limit.
// Engines compile it to their own query language.
type Query struct {
	recordType string
	key        string
	predicates []Predicate
	ordering   Ordering
	limit      int
}

func (q Query) RecordType() string {
	return q.recordType
}

// Key returns the exact record key filter. Empty means no key filter.
func (q Query) Key() string {
	return q.key
}

func (q Query) Predicates() []Predicate {
	return q.predicates
}

func (q Query) Ordering() Ordering {
	return q.ordering
}

// Limit returns the maximum result count. Zero means unlimited.
func (q Query) Limit() int {
	return q.limit
}

// QueryBuilder assembles a Query. It sanitizes input the way the store
// expects it:
//   - the record type is trimmed
//   - empty or partial predicates (name or value blank) are dropped
//   - predicates are sorted and deduplicated
type QueryBuilder struct {
	query Query
}

func NewQuery(recordType string) *QueryBuilder {
	return &QueryBuilder{
		query: Query{
			recordType: strings.TrimSpace(recordType),
			ordering:   OrderCreatedAtDesc,
		},
	}
}

// WhereKey narrows the query to one exact record key. Needed for entities
// whose identity is their own key, like sessions.
func (b *QueryBuilder) WhereKey(key string) *QueryBuilder {
	b.query.key = strings.TrimSpace(key)
	return b
}

func (b *QueryBuilder) Where(name, value string) *QueryBuilder {
	return b.WherePredicates(P(name, value))
}

func (b *QueryBuilder) WherePredicates(predicates ...Predicate) *QueryBuilder {
	for _, p := range predicates {
		if strings.TrimSpace(p.name) == "" || strings.TrimSpace(p.value) == "" {
			continue
		}
		b.query.predicates = append(b.query.predicates, p)
	}
	return b
}

func (b *QueryBuilder) OrderAsc() *QueryBuilder {
	b.query.ordering = OrderCreatedAtAsc
	return b
}

func (b *QueryBuilder) OrderDesc() *QueryBuilder {
	b.query.ordering = OrderCreatedAtDesc
	return b
}

func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	if n > 0 {
		b.query.limit = n
	}
	return b
}

func (b *QueryBuilder) Build() Query {
	q := b.query

	slices.SortFunc(q.predicates, func(a, b Predicate) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return strings.Compare(a.value, b.value)
	})
	q.predicates = slices.Compact(q.predicates)

	return q
}
