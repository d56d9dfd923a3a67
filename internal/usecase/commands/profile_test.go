//go:build unit

package commands_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"skillmesh/internal/domain/profile"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/entitystore/memoryengine"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/config"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/reconcile"
	"skillmesh/internal/resolve"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProfileCommandsTestSuite struct {
	suite.Suite
	engine   *memoryengine.Engine
	clock    *clock.MockClock
	commands commands.ProfileCommands
	queries  queries.ProfileQueries
}

func TestProfileCommandsSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ProfileCommandsTestSuite))
}

func (s *ProfileCommandsTestSuite) SetupTest() {
	s.clock = clock.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	s.engine = memoryengine.New(memoryengine.WithClock(s.clock))

	logger := slog.Default()
	resolver := resolve.New(s.engine, s.clock, logger)
	reconciler := reconcile.New(config.NewTestConfig().Reconcile, logger)

	s.commands = commands.NewProfileCommands(s.engine, resolver, reconciler, s.clock, logger)
	s.queries = queries.NewProfileQueries(resolver)
}

func (s *ProfileCommandsTestSuite) upsert(wallet, username, displayName string) *commands.WriteReceipt {
	receipt, err := s.commands.UpsertProfile(s.T().Context(), commands.UpsertProfileInput{
		Wallet:      wallet,
		Username:    username,
		DisplayName: displayName,
	})
	require.NoError(s.T(), err)
	s.clock.Advance(time.Second)
	return receipt
}

func (s *ProfileCommandsTestSuite) TestUpsertAndResolve() {
	receipt := s.upsert("0xabc", "alice", "Alice")

	require.NotEmpty(s.T(), receipt.Key)
	assert.False(s.T(), receipt.Pending)

	view, err := s.queries.GetProfile(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), receipt.Key, view.Key)
	assert.Equal(s.T(), "alice", view.Username)
	assert.Equal(s.T(), "Alice", view.DisplayName)
}

func (s *ProfileCommandsTestSuite) TestUpsertAppendsNewVersion() {
	s.upsert("0xabc", "alice", "Alice")
	second := s.upsert("0xabc", "alice", "Alice v2")

	view, err := s.queries.GetProfile(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), second.Key, view.Key)
	assert.Equal(s.T(), "Alice v2", view.DisplayName)

	history, err := s.queries.GetProfileHistory(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	assert.Len(s.T(), history, 2)
}

func (s *ProfileCommandsTestSuite) TestUsernameConflict() {
	s.upsert("0xabc", "alice", "Alice")

	_, err := s.commands.UpsertProfile(s.T().Context(), commands.UpsertProfileInput{
		Wallet:      "0xdef",
		Username:    "alice",
		DisplayName: "Impostor",
	})

	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, errs.ErrUniqueConflict)

	var conflict *resolve.UniqueConflictError
	require.ErrorAs(s.T(), err, &conflict)
	assert.Equal(s.T(), profile.AttrUsername, conflict.Field)
}

func (s *ProfileCommandsTestSuite) TestOwnerKeepsUsernameAcrossVersions() {
	s.upsert("0xabc", "alice", "Alice")
	receipt := s.upsert("0xabc", "alice", "Alice again")
	assert.NotEmpty(s.T(), receipt.Key)
}

func (s *ProfileCommandsTestSuite) TestUpsertValidation() {
	_, err := s.commands.UpsertProfile(s.T().Context(), commands.UpsertProfileInput{
		Wallet:      "0xabc",
		Username:    "a!",
		DisplayName: "Alice",
	})

	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, errs.ErrValidationFailed)
}

func (s *ProfileCommandsTestSuite) TestDeleteProfile() {
	s.upsert("0xabc", "alice", "Alice")

	receipt, err := s.commands.DeleteProfile(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), receipt.Key)
	s.clock.Advance(time.Second)

	_, err = s.queries.GetProfile(s.T().Context(), "0xabc")
	assert.ErrorIs(s.T(), err, errs.ErrNotFound)

	// History still shows the deleted version.
	history, err := s.queries.GetProfileHistory(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	assert.Len(s.T(), history, 1)
}

func (s *ProfileCommandsTestSuite) TestDeleteFreesUsername() {
	s.upsert("0xabc", "alice", "Alice")
	_, err := s.commands.DeleteProfile(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	s.clock.Advance(time.Second)

	receipt := s.upsert("0xdef", "alice", "New Alice")
	assert.NotEmpty(s.T(), receipt.Key)
}

func (s *ProfileCommandsTestSuite) TestDeleteUnknownProfile() {
	_, err := s.commands.DeleteProfile(s.T().Context(), "0xmissing")
	assert.ErrorIs(s.T(), err, errs.ErrNotFound)
}

func (s *ProfileCommandsTestSuite) TestAmbiguousUpsertReconciles() {
	// The write fails on the wire but lands; reconciliation reads find it.
	s.engine.FailNextWritesLanded(
		entitystore.MarkAmbiguous(errors.New("connection reset"), "transport failure"),
	)

	receipt, err := s.commands.UpsertProfile(s.T().Context(), commands.UpsertProfileInput{
		Wallet:      "0xabc",
		Username:    "alice",
		DisplayName: "Alice",
	})
	require.NoError(s.T(), err)

	assert.True(s.T(), receipt.AlreadyApplied)
	assert.NotEmpty(s.T(), receipt.Key)

	view, viewErr := s.queries.GetProfile(s.T().Context(), "0xabc")
	require.NoError(s.T(), viewErr)
	assert.Equal(s.T(), receipt.Key, view.Key)
}

func (s *ProfileCommandsTestSuite) TestAmbiguousUpsertLostWrite() {
	s.engine.FailNextWrites(
		entitystore.MarkAmbiguous(errors.New("i/o timeout"), "transport failure"),
	)

	_, err := s.commands.UpsertProfile(s.T().Context(), commands.UpsertProfileInput{
		Wallet:      "0xabc",
		Username:    "alice",
		DisplayName: "Alice",
	})

	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, errs.ErrWriteConflict)
}

func (s *ProfileCommandsTestSuite) TestSetAndGetAvailability() {
	receipt, err := s.commands.SetAvailability(s.T().Context(), commands.SetAvailabilityInput{
		Wallet:   "0xabc",
		Timezone: "Europe/Berlin",
		Slots: []profile.AvailabilitySlot{
			{Day: "mon", Start: "09:00", End: "12:00"},
		},
	})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), receipt.Key)

	view, err := s.queries.GetAvailability(s.T().Context(), "0xabc")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Europe/Berlin", view.Timezone)
	require.Len(s.T(), view.Slots, 1)
	assert.Equal(s.T(), "mon", view.Slots[0].Day)
}

func (s *ProfileCommandsTestSuite) TestSetAvailabilityValidatesSlots() {
	_, err := s.commands.SetAvailability(s.T().Context(), commands.SetAvailabilityInput{
		Wallet: "0xabc",
		Slots: []profile.AvailabilitySlot{
			{Day: "mon", Start: "12:00", End: "09:00"},
		},
	})

	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, errs.ErrValidationFailed)
}
