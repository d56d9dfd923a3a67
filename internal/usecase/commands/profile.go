package commands

import (
	"bytes"
	"context"
	"log/slog"

	"skillmesh/internal/domain/profile"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/reconcile"
	"skillmesh/internal/resolve"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type UpsertProfileInput struct {
	Wallet      string
	Username    string
	DisplayName string
	Bio         string
	Skills      []string
}

// WriteReceipt is the common result of a reconciled write: either a key and
// receipt, or a pending marker when the store accepted the write without
// confirming it.
type WriteReceipt struct {
	Key            string
	Receipt        string
	Pending        bool
	AlreadyApplied bool
}

type SetAvailabilityInput struct {
	Wallet   string
	Timezone string
	Slots    []profile.AvailabilitySlot
}

type ProfileCommands interface {
	UpsertProfile(ctx context.Context, in UpsertProfileInput) (*WriteReceipt, error)
	DeleteProfile(ctx context.Context, wallet string) (*WriteReceipt, error)
	SetAvailability(ctx context.Context, in SetAvailabilityInput) (*WriteReceipt, error)
}

type profileCommandsImpl struct {
	store      EntityStore
	resolver   CanonicalResolver
	reconciler ConflictReconciler
	clock      clock.Clock
	logger     *slog.Logger
}

func NewProfileCommands(
	store EntityStore,
	resolver CanonicalResolver,
	reconciler ConflictReconciler,
	clk clock.Clock,
	logger *slog.Logger,
) ProfileCommands {
	return &profileCommandsImpl{
		store:      store,
		resolver:   resolver,
		reconciler: reconciler,
		clock:      clk,
		logger:     logger,
	}
}

// UpsertProfile appends a new profile version for the wallet. The username
// claim is advisory read-before-write: concurrent claims can both pass, the
// race is detected later by resolve.AuditUnique, not prevented here.
func (c *profileCommandsImpl) UpsertProfile(ctx context.Context, in UpsertProfileInput) (*WriteReceipt, error) {
	entity, err := profile.NewProfile(in.Wallet, in.Username, in.DisplayName, in.Bio, in.Skills, c.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	if err := c.resolver.ClaimUnique(
		ctx,
		profile.RecordType,
		profile.AttrUsername,
		entity.Username().String(),
		profile.AttrWallet,
		entity.Wallet().String(),
	); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entity.ToPayload())
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode profile payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, profile.RecordType),
		entitystore.Attr(profile.AttrWallet, entity.Wallet().String()),
		entitystore.Attr(profile.AttrUsername, entity.Username().String()),
	}

	outcome, err := c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.probeByPayload(profile.RecordType, profile.AttrWallet, entity.Wallet().String(), payload),
	)
	if err != nil {
		return nil, err
	}

	return receiptFromOutcome(outcome), nil
}

// DeleteProfile writes a deletion marker for the wallet's canonical record.
// The record itself stays in history forever; only resolution changes.
func (c *profileCommandsImpl) DeleteProfile(ctx context.Context, wallet string) (*WriteReceipt, error) {
	normalized, err := profile.NewWallet(wallet)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	canonical, err := c.resolver.Canonical(ctx, profile.RecordType, profile.AttrWallet, normalized.String())
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"wallet":     normalized.String(),
		"deletedKey": canonical.Key,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode deletion marker payload")
	}

	markerType := resolve.MarkerType(profile.RecordType)
	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, markerType),
		entitystore.Attr(profile.AttrWallet, normalized.String()),
		entitystore.Attr(resolve.AttrDeletedKey, canonical.Key),
	}

	outcome, err := c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.probeByAttr(markerType, resolve.AttrDeletedKey, canonical.Key),
	)
	if err != nil {
		return nil, err
	}

	return receiptFromOutcome(outcome), nil
}

func (c *profileCommandsImpl) SetAvailability(ctx context.Context, in SetAvailabilityInput) (*WriteReceipt, error) {
	normalized, err := profile.NewWallet(in.Wallet)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}
	if err := profile.ValidateSlots(in.Slots); err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	payload, err := json.Marshal(profile.AvailabilityPayload{
		Wallet:   normalized.String(),
		Timezone: in.Timezone,
		Slots:    in.Slots,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode availability payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, profile.RecordTypeAvailability),
		entitystore.Attr(profile.AttrWallet, normalized.String()),
	}

	outcome, err := c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.probeByPayload(profile.RecordTypeAvailability, profile.AttrWallet, normalized.String(), payload),
	)
	if err != nil {
		return nil, err
	}

	return receiptFromOutcome(outcome), nil
}

// probeByPayload is the reconciliation read for replace-on-write entities:
// the submitted record is found again by its identity attribute plus an
// exact payload match among the newest records.
func (c *profileCommandsImpl) probeByPayload(recordType, identityAttr, identityValue string, payload []byte) reconcile.Probe {
	return func(ctx context.Context) (entitystore.Record, error) {
		records, err := c.store.Query(ctx, entitystore.NewQuery(recordType).
			Where(identityAttr, identityValue).
			OrderDesc().
			Limit(10).
			Build())
		if err != nil {
			return entitystore.Record{}, errs.Mark(errs.Wrap(err, "reconciliation read failed"), errs.ErrStoreUnavailable)
		}
		for _, record := range records {
			if bytes.Equal(record.Payload, payload) {
				return record, nil
			}
		}
		return entitystore.Record{}, errs.ErrNotFound
	}
}

func (c *profileCommandsImpl) probeByAttr(recordType, attr, value string) reconcile.Probe {
	return func(ctx context.Context) (entitystore.Record, error) {
		records, err := c.store.Query(ctx, entitystore.NewQuery(recordType).
			Where(attr, value).
			Limit(1).
			Build())
		if err != nil {
			return entitystore.Record{}, errs.Mark(errs.Wrap(err, "reconciliation read failed"), errs.ErrStoreUnavailable)
		}
		if len(records) == 0 {
			return entitystore.Record{}, errs.ErrNotFound
		}
		return records[0], nil
	}
}

func receiptFromOutcome(outcome reconcile.Outcome) *WriteReceipt {
	return &WriteReceipt{
		Key:            outcome.Key,
		Receipt:        outcome.Receipt,
		Pending:        outcome.Pending,
		AlreadyApplied: outcome.AlreadyApplied,
	}
}
