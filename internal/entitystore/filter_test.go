//go:build unit

package entitystore_test

import (
	"testing"
	"time"

	"skillmesh/internal/entitystore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder(t *testing.T) {
	t.Parallel()

	t.Run("drops blank predicates", func(t *testing.T) {
		t.Parallel()

		q := entitystore.NewQuery("profile").
			Where("wallet", "0xabc").
			Where("", "orphan-value").
			Where("username", "").
			Where("   ", "   ").
			Build()

		require.Len(t, q.Predicates(), 1)
		assert.Equal(t, "wallet", q.Predicates()[0].Name())
		assert.Equal(t, "0xabc", q.Predicates()[0].Value())
	})

	t.Run("sorts and deduplicates predicates", func(t *testing.T) {
		t.Parallel()

		q := entitystore.NewQuery("session_confirmation").
			Where("session_key", "k1").
			Where("confirmed_by", "0xabc").
			Where("session_key", "k1").
			Build()

		require.Len(t, q.Predicates(), 2)
		assert.Equal(t, "confirmed_by", q.Predicates()[0].Name())
		assert.Equal(t, "session_key", q.Predicates()[1].Name())
	})

	t.Run("defaults to descending order and no limit", func(t *testing.T) {
		t.Parallel()

		q := entitystore.NewQuery("post").Build()

		assert.Equal(t, entitystore.OrderCreatedAtDesc, q.Ordering())
		assert.Zero(t, q.Limit())
		assert.Empty(t, q.Key())
	})

	t.Run("ignores non-positive limit", func(t *testing.T) {
		t.Parallel()

		q := entitystore.NewQuery("post").Limit(-5).Build()
		assert.Zero(t, q.Limit())

		q = entitystore.NewQuery("post").Limit(7).Build()
		assert.Equal(t, 7, q.Limit())
	})

	t.Run("trims record type and key", func(t *testing.T) {
		t.Parallel()

		q := entitystore.NewQuery("  session  ").WhereKey("  abc123  ").Build()
		assert.Equal(t, "session", q.RecordType())
		assert.Equal(t, "abc123", q.Key())
	})
}

func TestContentKey(t *testing.T) {
	t.Parallel()

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, "profile"),
		entitystore.Attr("wallet", "0xabc"),
	}
	payload := []byte(`{"wallet":"0xabc"}`)

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			entitystore.ContentKey(attrs, payload),
			entitystore.ContentKey(attrs, payload),
		)
	})

	t.Run("changes with any input", func(t *testing.T) {
		t.Parallel()

		base := entitystore.ContentKey(attrs, payload)

		assert.NotEqual(t, base, entitystore.ContentKey(attrs, []byte(`{}`)))
		assert.NotEqual(t, base, entitystore.ContentKey(attrs[:1], payload))
		assert.NotEqual(t, base, entitystore.ContentKey(entitystore.Attributes{
			entitystore.Attr(entitystore.AttrType, "profile"),
			entitystore.Attr("wallet", "0xdef"),
		}, payload))
	})
}

func TestRecordExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record := entitystore.Record{
		CreatedAt: now,
		TTL:       time.Hour,
	}

	assert.False(t, record.Expired(now))
	assert.False(t, record.Expired(now.Add(59*time.Minute)))
	assert.False(t, record.Expired(now.Add(time.Hour)))
	assert.True(t, record.Expired(now.Add(time.Hour+time.Nanosecond)))

	forever := entitystore.Record{CreatedAt: now}
	assert.False(t, forever.Expired(now.Add(100*24*time.Hour)))
}
