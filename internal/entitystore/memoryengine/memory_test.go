//go:build unit

package memoryengine_test

import (
	"errors"
	"testing"
	"time"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/entitystore/memoryengine"
	"skillmesh/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MemoryEngineTestSuite struct {
	suite.Suite
	engine *memoryengine.Engine
	clock  *clock.MockClock
}

func TestMemoryEngineSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MemoryEngineTestSuite))
}

func (s *MemoryEngineTestSuite) SetupTest() {
	s.clock = clock.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	s.engine = memoryengine.New(memoryengine.WithClock(s.clock))
}

func (s *MemoryEngineTestSuite) write(attrs entitystore.Attributes, payload string) entitystore.WriteResult {
	result, err := s.engine.Write(s.T().Context(), attrs, []byte(payload), 0)
	require.NoError(s.T(), err)
	return result
}

func (s *MemoryEngineTestSuite) profileAttrs(wallet string) entitystore.Attributes {
	return entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, "profile"),
		entitystore.Attr("wallet", wallet),
	}
}

func (s *MemoryEngineTestSuite) TestWriteAndQuery() {
	result := s.write(s.profileAttrs("0xabc"), `{"wallet":"0xabc"}`)

	assert.True(s.T(), result.Confirmed())
	assert.NotEmpty(s.T(), result.Key)
	assert.NotEmpty(s.T(), result.Receipt)

	records, err := s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").
		Where("wallet", "0xabc").
		Build())
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 1)
	assert.Equal(s.T(), result.Key, records[0].Key)
	assert.Equal(s.T(), "profile", records[0].Type())
}

func (s *MemoryEngineTestSuite) TestWriteRejectsMissingType() {
	_, err := s.engine.Write(s.T().Context(), entitystore.Attributes{
		entitystore.Attr("wallet", "0xabc"),
	}, []byte(`{}`), 0)

	assert.ErrorIs(s.T(), err, entitystore.ErrMissingType)
}

func (s *MemoryEngineTestSuite) TestWriteRejectsInvalidPayload() {
	_, err := s.engine.Write(s.T().Context(), s.profileAttrs("0xabc"), []byte(`{not json`), 0)

	assert.ErrorIs(s.T(), err, entitystore.ErrInvalidPayload)
}

func (s *MemoryEngineTestSuite) TestDuplicateContentKey() {
	s.write(s.profileAttrs("0xabc"), `{"v":1}`)

	// Same attributes and payload produce the same key.
	_, err := s.engine.Write(s.T().Context(), s.profileAttrs("0xabc"), []byte(`{"v":1}`), 0)
	assert.ErrorIs(s.T(), err, entitystore.ErrAlreadyExists)

	// The key depends only on content, never the write instant: a retried
	// identical submission is still suppressed at a later time.
	s.clock.Advance(time.Second)
	_, err = s.engine.Write(s.T().Context(), s.profileAttrs("0xabc"), []byte(`{"v":1}`), 0)
	assert.ErrorIs(s.T(), err, entitystore.ErrAlreadyExists)

	// Changed content is a new record.
	result := s.write(s.profileAttrs("0xabc"), `{"v":2}`)
	assert.True(s.T(), result.Confirmed())
	assert.Equal(s.T(), 2, s.engine.Len())
}

func (s *MemoryEngineTestSuite) TestQueryOrderingAndTieBreak() {
	first := s.write(s.profileAttrs("0xabc"), `{"v":1}`)
	// Same timestamp, different payload: order falls back to key comparison.
	second := s.write(s.profileAttrs("0xabc"), `{"v":2}`)
	s.clock.Advance(time.Minute)
	third := s.write(s.profileAttrs("0xabc"), `{"v":3}`)

	records, err := s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").
		Where("wallet", "0xabc").
		OrderDesc().
		Build())
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 3)

	assert.Equal(s.T(), third.Key, records[0].Key)
	if first.Key > second.Key {
		assert.Equal(s.T(), first.Key, records[1].Key)
	} else {
		assert.Equal(s.T(), second.Key, records[1].Key)
	}
}

func (s *MemoryEngineTestSuite) TestQueryByKey() {
	target := s.write(s.profileAttrs("0xabc"), `{"v":1}`)
	s.clock.Advance(time.Second)
	s.write(s.profileAttrs("0xdef"), `{"v":2}`)

	records, err := s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").
		WhereKey(target.Key).
		Build())
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 1)
	assert.Equal(s.T(), "0xabc", records[0].Attr("wallet"))
}

func (s *MemoryEngineTestSuite) TestQueryLimit() {
	for i := 0; i < 5; i++ {
		s.write(s.profileAttrs("0xabc"), `{"v":`+string(rune('0'+i))+`}`)
		s.clock.Advance(time.Second)
	}

	records, err := s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").
		Limit(2).
		Build())
	require.NoError(s.T(), err)
	assert.Len(s.T(), records, 2)
}

func (s *MemoryEngineTestSuite) TestFailNextWritesDoesNotStore() {
	injected := errors.New("write rejected")
	s.engine.FailNextWrites(injected)

	_, err := s.engine.Write(s.T().Context(), s.profileAttrs("0xabc"), []byte(`{}`), 0)
	assert.ErrorIs(s.T(), err, injected)
	assert.Zero(s.T(), s.engine.Len())

	// The fault is consumed; the next write succeeds.
	result := s.write(s.profileAttrs("0xabc"), `{}`)
	assert.True(s.T(), result.Confirmed())
}

func (s *MemoryEngineTestSuite) TestFailNextWritesLandedStoresAnyway() {
	injected := entitystore.MarkAmbiguous(errors.New("connection reset"), "transport failure")
	s.engine.FailNextWritesLanded(injected)

	_, err := s.engine.Write(s.T().Context(), s.profileAttrs("0xabc"), []byte(`{"v":1}`), 0)
	require.Error(s.T(), err)
	assert.True(s.T(), entitystore.IsAmbiguous(err))

	// The record landed despite the error.
	records, queryErr := s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").
		Where("wallet", "0xabc").
		Build())
	require.NoError(s.T(), queryErr)
	assert.Len(s.T(), records, 1)
}

func (s *MemoryEngineTestSuite) TestPendNextWrites() {
	s.engine.PendNextWrites(1)

	result, err := s.engine.Write(s.T().Context(), s.profileAttrs("0xabc"), []byte(`{}`), 0)
	require.NoError(s.T(), err)
	assert.True(s.T(), result.Pending())
	assert.Empty(s.T(), result.Key)

	// Durable regardless of the pending receipt.
	assert.Equal(s.T(), 1, s.engine.Len())
}

func (s *MemoryEngineTestSuite) TestHiddenWritesBecomeVisibleOnRelease() {
	s.engine.HideWrites(true)
	s.write(s.profileAttrs("0xabc"), `{}`)

	records, err := s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").Build())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), records)

	s.engine.ReleaseHidden()

	records, err = s.engine.Query(s.T().Context(), entitystore.NewQuery("profile").Build())
	require.NoError(s.T(), err)
	assert.Len(s.T(), records, 1)
}
