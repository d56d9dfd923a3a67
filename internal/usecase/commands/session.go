package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"skillmesh/internal/domain/session"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/reconcile"
	"skillmesh/internal/usecase/queries"
)

type CreateSessionInput struct {
	MentorWallet    string
	LearnerWallet   string
	Skill           string
	ScheduledAt     time.Time
	RequesterWallet string
	RequiresPayment bool
}

type CreateSessionResult struct {
	Key     string
	Receipt string
	// Pending means the store accepted the session write without a
	// confirmable receipt; the session key is unknown until it surfaces.
	Pending bool
	Session *queries.SessionView
}

type ConfirmSessionResult struct {
	WriteReceipt
	AlreadyConfirmed bool
	Session          *queries.SessionView
}

type RejectSessionResult struct {
	WriteReceipt
	Session *queries.SessionView
}

type PaymentResult struct {
	WriteReceipt
	Session *queries.SessionView
}

type SessionCommands interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*CreateSessionResult, error)
	ConfirmSession(ctx context.Context, sessionKey, wallet string) (*ConfirmSessionResult, error)
	RejectSession(ctx context.Context, sessionKey, wallet, reason string) (*RejectSessionResult, error)
	SubmitPayment(ctx context.Context, sessionKey, wallet, txHash string) (*PaymentResult, error)
	ValidatePayment(ctx context.Context, sessionKey, wallet, txHash string) (*PaymentResult, error)
}

type sessionCommandsImpl struct {
	store          EntityStore
	reconciler     ConflictReconciler
	sessionQueries queries.SessionQueries
	validator      TxValidator
	clock          clock.Clock
	logger         *slog.Logger
}

func NewSessionCommands(
	store EntityStore,
	reconciler ConflictReconciler,
	sessionQueries queries.SessionQueries,
	validator TxValidator,
	clk clock.Clock,
	logger *slog.Logger,
) SessionCommands {
	return &sessionCommandsImpl{
		store:          store,
		reconciler:     reconciler,
		sessionQueries: sessionQueries,
		validator:      validator,
		clock:          clk,
		logger:         logger,
	}
}

// CreateSession writes the session record and auto-confirms the requester
// with an adjacent second write. The two writes are not atomic; if the
// confirmation fails the session still exists and the requester can confirm
// explicitly later.
func (c *sessionCommandsImpl) CreateSession(ctx context.Context, in CreateSessionInput) (*CreateSessionResult, error) {
	entity, err := session.NewSession(
		in.MentorWallet,
		in.LearnerWallet,
		in.Skill,
		in.ScheduledAt,
		in.RequesterWallet,
		in.RequiresPayment,
		c.clock.Now(),
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	payload, err := json.Marshal(entity.ToPayload())
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode session payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, session.RecordType),
		entitystore.Attr(session.AttrMentorWallet, entity.MentorWallet().String()),
		entitystore.Attr(session.AttrLearnerWallet, entity.LearnerWallet().String()),
		entitystore.Attr(session.AttrSkill, entity.Skill()),
		entitystore.Attr(session.AttrRequester, entity.RequesterWallet().String()),
	}

	result, err := c.store.Write(ctx, attrs, payload, 0)
	if err != nil {
		if errs.Is(err, entitystore.ErrAlreadyExists) {
			// Identical submission: the key is content-derived, so the
			// existing record is this session. The original create already
			// confirmed the requester.
			key := entitystore.ContentKey(attrs, payload)
			return &CreateSessionResult{
				Key:     key,
				Session: c.readBack(ctx, key),
			}, nil
		}
		if entitystore.IsAmbiguous(err) {
			c.logger.Warn("session create ambiguous, reporting pending", "error", err)
			return &CreateSessionResult{Pending: true}, nil
		}
		return nil, errs.Mark(errs.Wrap(err, "session write failed"), errs.ErrStoreUnavailable)
	}
	if result.Pending() {
		// Without a key there is nothing to attach the auto-confirmation
		// to; the requester confirms explicitly once the session surfaces.
		return &CreateSessionResult{Pending: true}, nil
	}

	if _, confirmErr := c.writeConfirmation(ctx, result.Key, entity.RequesterWallet().String()); confirmErr != nil {
		// The session record landed; surface it with the confirmation
		// failure rather than pretending the create failed.
		c.logger.Error("requester auto-confirmation failed", "session_key", result.Key, "error", confirmErr)
		return nil, confirmErr
	}

	return &CreateSessionResult{
		Key:     result.Key,
		Receipt: result.Receipt,
		Session: c.readBack(ctx, result.Key),
	}, nil
}

// ConfirmSession is idempotent per (sessionKey, wallet): an existing
// confirmation record short-circuits to success without a second write, and
// an ambiguous write failure is reconciled by reading the same pair back.
func (c *sessionCommandsImpl) ConfirmSession(ctx context.Context, sessionKey, wallet string) (*ConfirmSessionResult, error) {
	entity, err := c.loadSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if !entity.IsParticipant(normalized) {
		return nil, errs.Mark(session.ErrNotParticipant, errs.ErrValidationFailed)
	}

	if existing, findErr := c.findPartyRecord(ctx, session.RecordTypeConfirm, sessionKey, session.AttrConfirmedBy, normalized); findErr == nil {
		return &ConfirmSessionResult{
			WriteReceipt: WriteReceipt{
				Key:            existing.Key,
				Receipt:        existing.TxRef,
				AlreadyApplied: true,
			},
			AlreadyConfirmed: true,
			Session:          c.readBack(ctx, sessionKey),
		}, nil
	} else if !errs.Is(findErr, errs.ErrNotFound) {
		return nil, findErr
	}

	outcome, err := c.writeConfirmation(ctx, sessionKey, normalized)
	if err != nil {
		return nil, err
	}

	return &ConfirmSessionResult{
		WriteReceipt:     receipt(outcome),
		AlreadyConfirmed: outcome.AlreadyApplied,
		Session:          c.readBack(ctx, sessionKey),
	}, nil
}

// RejectSession is terminal regardless of confirmation state; rejecting an
// already scheduled session is a cancellation.
func (c *sessionCommandsImpl) RejectSession(ctx context.Context, sessionKey, wallet, reason string) (*RejectSessionResult, error) {
	entity, err := c.loadSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if !entity.IsParticipant(normalized) {
		return nil, errs.Mark(session.ErrNotParticipant, errs.ErrValidationFailed)
	}

	if existing, findErr := c.findPartyRecord(ctx, session.RecordTypeReject, sessionKey, session.AttrRejectedBy, normalized); findErr == nil {
		return &RejectSessionResult{
			WriteReceipt: WriteReceipt{
				Key:            existing.Key,
				Receipt:        existing.TxRef,
				AlreadyApplied: true,
			},
			Session: c.readBack(ctx, sessionKey),
		}, nil
	} else if !errs.Is(findErr, errs.ErrNotFound) {
		return nil, findErr
	}

	payload, err := json.Marshal(session.RejectionPayload{
		SessionKey: sessionKey,
		RejectedBy: normalized,
		Reason:     strings.TrimSpace(reason),
		RejectedAt: c.clock.Now(),
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode rejection payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, session.RecordTypeReject),
		entitystore.Attr(session.AttrSessionKey, sessionKey),
		entitystore.Attr(session.AttrRejectedBy, normalized),
	}

	outcome, err := c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.partyProbe(session.RecordTypeReject, sessionKey, session.AttrRejectedBy, normalized),
	)
	if err != nil {
		return nil, err
	}

	return &RejectSessionResult{
		WriteReceipt: receipt(outcome),
		Session:      c.readBack(ctx, sessionKey),
	}, nil
}

func (c *sessionCommandsImpl) SubmitPayment(ctx context.Context, sessionKey, wallet, txHash string) (*PaymentResult, error) {
	entity, err := c.loadSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if !entity.IsParticipant(normalized) {
		return nil, errs.Mark(session.ErrNotParticipant, errs.ErrValidationFailed)
	}

	trimmedHash := strings.TrimSpace(txHash)
	if trimmedHash == "" {
		return nil, errs.Mark(session.ErrMissingTxHash, errs.ErrValidationFailed)
	}

	if existing, findErr := c.findPartyRecord(ctx, session.RecordTypePaySubmit, sessionKey, session.AttrTxHash, trimmedHash); findErr == nil {
		return &PaymentResult{
			WriteReceipt: WriteReceipt{
				Key:            existing.Key,
				Receipt:        existing.TxRef,
				AlreadyApplied: true,
			},
			Session: c.readBack(ctx, sessionKey),
		}, nil
	} else if !errs.Is(findErr, errs.ErrNotFound) {
		return nil, findErr
	}

	payload, err := json.Marshal(session.PaymentSubmissionPayload{
		SessionKey:  sessionKey,
		Wallet:      normalized,
		TxHash:      trimmedHash,
		SubmittedAt: c.clock.Now(),
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode payment submission payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, session.RecordTypePaySubmit),
		entitystore.Attr(session.AttrSessionKey, sessionKey),
		entitystore.Attr(session.AttrWallet, normalized),
		entitystore.Attr(session.AttrTxHash, trimmedHash),
	}

	outcome, err := c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.partyProbe(session.RecordTypePaySubmit, sessionKey, session.AttrTxHash, trimmedHash),
	)
	if err != nil {
		return nil, err
	}

	return &PaymentResult{
		WriteReceipt: receipt(outcome),
		Session:      c.readBack(ctx, sessionKey),
	}, nil
}

// ValidatePayment consults the external transaction validator and only
// writes the validation record on a passing verdict.
func (c *sessionCommandsImpl) ValidatePayment(ctx context.Context, sessionKey, wallet, txHash string) (*PaymentResult, error) {
	entity, err := c.loadSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if !entity.IsParticipant(normalized) {
		return nil, errs.Mark(session.ErrNotParticipant, errs.ErrValidationFailed)
	}

	trimmedHash := strings.TrimSpace(txHash)
	if trimmedHash == "" {
		return nil, errs.Mark(session.ErrMissingTxHash, errs.ErrValidationFailed)
	}

	if _, findErr := c.findPartyRecord(ctx, session.RecordTypePaySubmit, sessionKey, session.AttrTxHash, trimmedHash); findErr != nil {
		if errs.Is(findErr, errs.ErrNotFound) {
			return nil, errs.Mark(errs.New("no payment submission for transaction"), errs.ErrValidationFailed)
		}
		return nil, findErr
	}

	// Idempotent: an existing validation record means a past verdict
	// already passed; the external validator is not consulted again.
	if existing, findErr := c.findPartyRecord(ctx, session.RecordTypePayValidate, sessionKey, session.AttrTxHash, trimmedHash); findErr == nil {
		return &PaymentResult{
			WriteReceipt: WriteReceipt{
				Key:            existing.Key,
				Receipt:        existing.TxRef,
				AlreadyApplied: true,
			},
			Session: c.readBack(ctx, sessionKey),
		}, nil
	} else if !errs.Is(findErr, errs.ErrNotFound) {
		return nil, findErr
	}

	verdict, err := c.validator.Validate(ctx, trimmedHash, normalized)
	if err != nil {
		return nil, errs.Wrap(err, "payment validator unavailable")
	}
	if !verdict.Valid {
		return nil, errs.Wrapf(errs.ErrValidationFailed, "payment rejected: %s", verdict.Reason)
	}

	payload, err := json.Marshal(session.PaymentValidationPayload{
		SessionKey:  sessionKey,
		TxHash:      trimmedHash,
		ValidatedAt: c.clock.Now(),
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode payment validation payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, session.RecordTypePayValidate),
		entitystore.Attr(session.AttrSessionKey, sessionKey),
		entitystore.Attr(session.AttrTxHash, trimmedHash),
	}

	outcome, err := c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.partyProbe(session.RecordTypePayValidate, sessionKey, session.AttrTxHash, trimmedHash),
	)
	if err != nil {
		return nil, err
	}

	return &PaymentResult{
		WriteReceipt: receipt(outcome),
		Session:      c.readBack(ctx, sessionKey),
	}, nil
}

func (c *sessionCommandsImpl) writeConfirmation(ctx context.Context, sessionKey, wallet string) (reconcile.Outcome, error) {
	payload, err := json.Marshal(session.ConfirmationPayload{
		SessionKey:  sessionKey,
		ConfirmedBy: wallet,
		ConfirmedAt: c.clock.Now(),
	})
	if err != nil {
		return reconcile.Outcome{}, errs.Wrap(err, "failed to encode confirmation payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, session.RecordTypeConfirm),
		entitystore.Attr(session.AttrSessionKey, sessionKey),
		entitystore.Attr(session.AttrConfirmedBy, wallet),
	}

	return c.reconciler.Execute(ctx,
		func(ctx context.Context) (entitystore.WriteResult, error) {
			return c.store.Write(ctx, attrs, payload, 0)
		},
		c.partyProbe(session.RecordTypeConfirm, sessionKey, session.AttrConfirmedBy, wallet),
	)
}

func (c *sessionCommandsImpl) loadSession(ctx context.Context, sessionKey string) (*session.Session, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return nil, errs.Mark(errs.New("session key is required"), errs.ErrValidationFailed)
	}

	records, err := c.store.Query(ctx, entitystore.NewQuery(session.RecordType).
		WhereKey(sessionKey).
		Limit(1).
		Build())
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "session lookup failed"), errs.ErrStoreUnavailable)
	}
	if len(records) == 0 {
		return nil, errs.ErrNotFound
	}

	var payload session.Payload
	if err := json.Unmarshal(records[0].Payload, &payload); err != nil {
		return nil, errs.Wrap(err, "failed to decode session payload")
	}

	entity, err := session.NewSession(
		payload.MentorWallet,
		payload.LearnerWallet,
		payload.Skill,
		payload.ScheduledAt,
		payload.RequesterWallet,
		payload.RequiresPayment,
		records[0].CreatedAt,
	)
	if err != nil {
		return nil, errs.Wrap(err, "stored session payload is invalid")
	}
	return entity, nil
}

func (c *sessionCommandsImpl) findPartyRecord(ctx context.Context, recordType, sessionKey, attr, value string) (entitystore.Record, error) {
	records, err := c.store.Query(ctx, entitystore.NewQuery(recordType).
		Where(session.AttrSessionKey, sessionKey).
		Where(attr, value).
		Limit(1).
		Build())
	if err != nil {
		return entitystore.Record{}, errs.Mark(errs.Wrap(err, "session record lookup failed"), errs.ErrStoreUnavailable)
	}
	if len(records) == 0 {
		return entitystore.Record{}, errs.ErrNotFound
	}
	return records[0], nil
}

func (c *sessionCommandsImpl) partyProbe(recordType, sessionKey, attr, value string) reconcile.Probe {
	return func(ctx context.Context) (entitystore.Record, error) {
		return c.findPartyRecord(ctx, recordType, sessionKey, attr, value)
	}
}

// readBack fetches the derived view after a mutation. Best effort: the store
// gives no read-after-write guarantee, so a missing view is logged, not
// failed.
func (c *sessionCommandsImpl) readBack(ctx context.Context, sessionKey string) *queries.SessionView {
	view, err := c.sessionQueries.GetSession(ctx, sessionKey)
	if err != nil {
		c.logger.Warn("session read-after-write missed", "session_key", sessionKey, "error", err)
		return nil
	}
	return view
}

func receipt(outcome reconcile.Outcome) WriteReceipt {
	return WriteReceipt{
		Key:            outcome.Key,
		Receipt:        outcome.Receipt,
		Pending:        outcome.Pending,
		AlreadyApplied: outcome.AlreadyApplied,
	}
}
