// Package postgresengine implements the entity store on a single append-only
// Postgres table. Records are INSERTed and SELECTed, never UPDATEd or
// DELETEd; attribute tags live in a jsonb column so queries stay
// attribute-filtered the way the store contract demands.
package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dialectPostgres = "postgres"

	colKey        = "key"
	colRecordType = "record_type"
	colAttributes = "attributes"
	colPayload    = "payload"
	colCreatedAt  = "created_at"
	colTTLSeconds = "ttl_seconds"
	colTxRef      = "tx_ref"

	pgCodeUniqueViolation = "23505"
)

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
	key          text PRIMARY KEY,
	record_type  text NOT NULL,
	attributes   jsonb NOT NULL,
	payload      jsonb NOT NULL,
	created_at   timestamptz NOT NULL,
	ttl_seconds  bigint NOT NULL DEFAULT 0,
	tx_ref       text NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_record_type_idx ON %[1]s (record_type, created_at DESC);
CREATE INDEX IF NOT EXISTS %[1]s_attributes_idx ON %[1]s USING gin (attributes);
`

type Option func(*Engine) error

func WithTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return errors.New("empty table name supplied")
		}
		e.tableName = tableName
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

func WithClock(c clock.Clock) Option {
	return func(e *Engine) error {
		e.clock = c
		return nil
	}
}

type Engine struct {
	pool      *pgxpool.Pool
	tableName string
	logger    *slog.Logger
	clock     clock.Clock
}

var _ entitystore.Store = (*Engine)(nil)

func New(pool *pgxpool.Pool, options ...Option) (*Engine, error) {
	e := &Engine{
		pool:      pool,
		tableName: "entity_records",
		logger:    slog.Default(),
		clock:     clock.NewRealClock(),
	}
	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// EnsureSchema creates the append-only table and its indexes. Adding new
// optional attributes never needs a migration, so this is the whole schema
// lifecycle.
func (e *Engine) EnsureSchema(ctx context.Context) error {
	_, err := e.pool.Exec(ctx, fmt.Sprintf(schemaTemplate, e.tableName))
	if err != nil {
		return fmt.Errorf("failed to ensure entity store schema: %w", err)
	}
	return nil
}

func (e *Engine) Write(
	ctx context.Context,
	attrs entitystore.Attributes,
	payload []byte,
	ttl time.Duration,
) (entitystore.WriteResult, error) {
	failed := entitystore.WriteResult{Status: entitystore.WriteFailed}

	recordType, ok := attrs.Get(entitystore.AttrType)
	if !ok {
		return failed, entitystore.ErrMissingType
	}
	if !json.Valid(payload) {
		return failed, entitystore.ErrInvalidPayload
	}

	attributesJSON, err := json.Marshal(attributesAsMap(attrs))
	if err != nil {
		return failed, fmt.Errorf("failed to encode attributes: %w", err)
	}

	now := e.clock.Now()
	key := entitystore.ContentKey(attrs, payload)
	txRef := uuid.New().String()

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Insert(e.tableName).
		Cols(colKey, colRecordType, colAttributes, colPayload, colCreatedAt, colTTLSeconds, colTxRef).
		Vals(goqu.Vals{
			key,
			recordType,
			goqu.L("?::jsonb", string(attributesJSON)),
			goqu.L("?::jsonb", string(payload)),
			now,
			int64(ttl / time.Second),
			txRef,
		}).
		ToSQL()
	if err != nil {
		return failed, fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, execErr := e.pool.Exec(ctx, sqlQuery); execErr != nil {
		return failed, e.classifyWriteError(execErr)
	}

	return entitystore.WriteResult{
		Status:  entitystore.WriteConfirmed,
		Key:     key,
		Receipt: txRef,
	}, nil
}

func (e *Engine) Query(ctx context.Context, q entitystore.Query) ([]entitystore.Record, error) {
	sqlQuery, err := e.buildSelectQuery(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	start := time.Now()
	rows, err := e.pool.Query(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entitystore.ErrUnavailable, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entitystore.ErrUnavailable, err)
	}

	e.logger.Debug("entity store query executed",
		"record_type", q.RecordType(),
		"rows", len(records),
		"duration", time.Since(start),
	)

	return records, nil
}

func (e *Engine) buildSelectQuery(q entitystore.Query) (string, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(e.tableName).
		Select(colKey, colAttributes, colPayload, colCreatedAt, colTTLSeconds, colTxRef)

	if q.RecordType() != "" {
		stmt = stmt.Where(goqu.Ex{colRecordType: q.RecordType()})
	}
	if q.Key() != "" {
		stmt = stmt.Where(goqu.Ex{colKey: q.Key()})
	}
	for _, p := range q.Predicates() {
		containsJSON, err := json.Marshal(map[string]string{p.Name(): p.Value()})
		if err != nil {
			return "", err
		}
		stmt = stmt.Where(goqu.L(colAttributes+" @> ?::jsonb", string(containsJSON)))
	}

	if q.Ordering() == entitystore.OrderCreatedAtAsc {
		stmt = stmt.Order(goqu.I(colCreatedAt).Asc(), goqu.I(colKey).Asc())
	} else {
		stmt = stmt.Order(goqu.I(colCreatedAt).Desc(), goqu.I(colKey).Desc())
	}

	if limit := q.Limit(); limit > 0 {
		stmt = stmt.Limit(uint(limit))
	}

	sqlQuery, _, err := stmt.ToSQL()
	return sqlQuery, err
}

func scanRecords(rows pgx.Rows) ([]entitystore.Record, error) {
	var records []entitystore.Record

	for rows.Next() {
		var (
			record         entitystore.Record
			attributesJSON []byte
			ttlSeconds     int64
		)

		if err := rows.Scan(
			&record.Key,
			&attributesJSON,
			&record.Payload,
			&record.CreatedAt,
			&ttlSeconds,
			&record.TxRef,
		); err != nil {
			return nil, err
		}

		attrs, err := attributesFromJSON(attributesJSON)
		if err != nil {
			return nil, err
		}
		record.Attributes = attrs
		record.TTL = time.Duration(ttlSeconds) * time.Second

		records = append(records, record)
	}

	return records, rows.Err()
}

// classifyWriteError translates backend failures into the store taxonomy.
// Only the engine does this by inspecting typed SQLSTATE codes; nothing
// above this layer matches on error message strings.
func (e *Engine) classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
		return entitystore.ErrAlreadyExists
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return entitystore.MarkAmbiguous(err, "write interrupted before acknowledgement")
	}
	if pgconn.Timeout(err) {
		return entitystore.MarkAmbiguous(err, "write timed out before acknowledgement")
	}

	return fmt.Errorf("%w: %w", entitystore.ErrUnavailable, err)
}

func attributesAsMap(attrs entitystore.Attributes) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		m[attr.Name] = attr.Value
	}
	return m
}

// attributesFromJSON rebuilds the tag list from the jsonb object. The
// original write order is not preserved by jsonb, so tags come back sorted
// by name.
func attributesFromJSON(data []byte) (entitystore.Attributes, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	attrs := make(entitystore.Attributes, 0, len(m))
	for name, value := range m {
		attrs = append(attrs, entitystore.Attr(name, value))
	}
	slices.SortFunc(attrs, func(a, b entitystore.Attribute) int {
		return strings.Compare(a.Name, b.Name)
	})
	return attrs, nil
}
