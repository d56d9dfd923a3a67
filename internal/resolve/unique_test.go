//go:build unit

package resolve_test

import (
	"log/slog"
	"testing"
	"time"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/entitystore/memoryengine"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/resolve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UniqueTestSuite struct {
	suite.Suite
	engine   *memoryengine.Engine
	clock    *clock.MockClock
	resolver *resolve.Resolver
}

func TestUniqueSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(UniqueTestSuite))
}

func (s *UniqueTestSuite) SetupTest() {
	s.clock = clock.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	s.engine = memoryengine.New(memoryengine.WithClock(s.clock))
	s.resolver = resolve.New(s.engine, s.clock, slog.Default())
}

func (s *UniqueTestSuite) writeProfile(wallet, username string) {
	_, err := s.engine.Write(s.T().Context(), entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, "profile"),
		entitystore.Attr("wallet", wallet),
		entitystore.Attr("username", username),
	}, []byte(`{"wallet":"`+wallet+`","username":"`+username+`"}`), 0)
	require.NoError(s.T(), err)
	s.clock.Advance(time.Second)
}

func (s *UniqueTestSuite) TestClaimOnFreeValueSucceeds() {
	err := s.resolver.ClaimUnique(s.T().Context(), "profile", "username", "alice", "wallet", "0xabc")
	assert.NoError(s.T(), err)
}

func (s *UniqueTestSuite) TestClaimOnTakenValueConflicts() {
	s.writeProfile("0xabc", "alice")

	err := s.resolver.ClaimUnique(s.T().Context(), "profile", "username", "alice", "wallet", "0xdef")
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, errs.ErrUniqueConflict)

	var conflict *resolve.UniqueConflictError
	require.ErrorAs(s.T(), err, &conflict)
	assert.Equal(s.T(), "username", conflict.Field)
	assert.Equal(s.T(), "alice", conflict.Value)
	require.Len(s.T(), conflict.Owners, 1)
	assert.Equal(s.T(), "0xabc", conflict.Owners[0].Identity)
}

func (s *UniqueTestSuite) TestOwnerCanReclaimOwnValue() {
	s.writeProfile("0xabc", "alice")

	err := s.resolver.ClaimUnique(s.T().Context(), "profile", "username", "alice", "wallet", "0xabc")
	assert.NoError(s.T(), err)
}

func (s *UniqueTestSuite) TestReleasedValueIsClaimable() {
	s.writeProfile("0xabc", "alice")
	// The owner moves to a new username; the canonical record no longer
	// claims "alice".
	s.writeProfile("0xabc", "alice-renamed")

	err := s.resolver.ClaimUnique(s.T().Context(), "profile", "username", "alice", "wallet", "0xdef")
	assert.NoError(s.T(), err)
}

func (s *UniqueTestSuite) TestClaimNormalizesCase() {
	s.writeProfile("0xabc", "alice")

	err := s.resolver.ClaimUnique(s.T().Context(), "profile", "username", "  ALICE  ", "wallet", "0xdef")
	assert.ErrorIs(s.T(), err, errs.ErrUniqueConflict)
}

func (s *UniqueTestSuite) TestAuditDetectsRacedClaims() {
	// Two writers raced through the advisory check and both landed.
	s.writeProfile("0xabc", "alice")
	s.writeProfile("0xdef", "alice")

	owners, err := s.resolver.AuditUnique(s.T().Context(), "profile", "username", "alice", "wallet")
	require.NoError(s.T(), err)
	require.Len(s.T(), owners, 2)
	assert.Equal(s.T(), "0xabc", owners[0].Identity)
	assert.Equal(s.T(), "0xdef", owners[1].Identity)
}

func (s *UniqueTestSuite) TestAuditIgnoresHistoricalClaims() {
	s.writeProfile("0xabc", "alice")
	s.writeProfile("0xabc", "bob")

	owners, err := s.resolver.AuditUnique(s.T().Context(), "profile", "username", "alice", "wallet")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), owners)
}
