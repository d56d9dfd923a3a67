package queries

import (
	"context"
	"slices"
	"strings"
	"time"

	"skillmesh/internal/domain/session"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/errs"
)

// SessionView is a session plus everything derived from its record family.
// Status and PaymentStatus are recomputed on every read; they have no stored
// counterpart to drift from.
type SessionView struct {
	Key             string                `json:"key"`
	MentorWallet    string                `json:"mentorWallet"`
	LearnerWallet   string                `json:"learnerWallet"`
	Skill           string                `json:"skill"`
	ScheduledAt     time.Time             `json:"scheduledAt"`
	RequesterWallet string                `json:"requesterWallet"`
	RequiresPayment bool                  `json:"requiresPayment"`
	Status          session.Status        `json:"status"`
	PaymentStatus   session.PaymentStatus `json:"paymentStatus"`
	ConfirmedBy     []string              `json:"confirmedBy"`
	RejectedBy      []string              `json:"rejectedBy,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type SessionQueries interface {
	GetSession(ctx context.Context, key string) (*SessionView, error)
	ListSessionsByWallet(ctx context.Context, wallet string) ([]SessionView, error)
}

type sessionQueriesImpl struct {
	store EntityStore
}

func NewSessionQueries(store EntityStore) SessionQueries {
	return &sessionQueriesImpl{store: store}
}

func (q *sessionQueriesImpl) GetSession(ctx context.Context, key string) (*SessionView, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errs.Mark(errs.New("session key is required"), errs.ErrValidationFailed)
	}

	records, err := q.store.Query(ctx, entitystore.NewQuery(session.RecordType).
		WhereKey(key).
		Limit(1).
		Build())
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "session query failed"), errs.ErrStoreUnavailable)
	}
	if len(records) == 0 {
		return nil, errs.ErrNotFound
	}

	return q.buildView(ctx, records[0])
}

func (q *sessionQueriesImpl) ListSessionsByWallet(ctx context.Context, wallet string) ([]SessionView, error) {
	normalized := strings.ToLower(strings.TrimSpace(wallet))
	if normalized == "" {
		return nil, errs.Mark(errs.New("wallet is required"), errs.ErrValidationFailed)
	}

	var records []entitystore.Record
	for _, attr := range []string{session.AttrMentorWallet, session.AttrLearnerWallet} {
		page, err := q.store.Query(ctx, entitystore.NewQuery(session.RecordType).
			Where(attr, normalized).
			OrderDesc().
			Build())
		if err != nil {
			return nil, errs.Mark(errs.Wrap(err, "session list query failed"), errs.ErrStoreUnavailable)
		}
		records = append(records, page...)
	}

	slices.SortFunc(records, func(a, b entitystore.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Key, a.Key)
	})

	views := make([]SessionView, 0, len(records))
	for _, record := range records {
		view, err := q.buildView(ctx, record)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (q *sessionQueriesImpl) buildView(ctx context.Context, record entitystore.Record) (*SessionView, error) {
	var payload session.Payload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, errs.Wrap(err, "failed to decode session payload")
	}

	confirmedBy, err := q.partyAttr(ctx, session.RecordTypeConfirm, record.Key, session.AttrConfirmedBy)
	if err != nil {
		return nil, err
	}
	rejectedBy, err := q.partyAttr(ctx, session.RecordTypeReject, record.Key, session.AttrRejectedBy)
	if err != nil {
		return nil, err
	}

	hasSubmission, err := q.hasRecord(ctx, session.RecordTypePaySubmit, record.Key)
	if err != nil {
		return nil, err
	}
	hasValidation, err := q.hasRecord(ctx, session.RecordTypePayValidate, record.Key)
	if err != nil {
		return nil, err
	}

	return &SessionView{
		Key:             record.Key,
		MentorWallet:    payload.MentorWallet,
		LearnerWallet:   payload.LearnerWallet,
		Skill:           payload.Skill,
		ScheduledAt:     payload.ScheduledAt,
		RequesterWallet: payload.RequesterWallet,
		RequiresPayment: payload.RequiresPayment,
		Status: session.DeriveStatus(
			payload.MentorWallet,
			payload.LearnerWallet,
			confirmedBy,
			len(rejectedBy) > 0,
		),
		PaymentStatus: session.DerivePaymentStatus(
			payload.RequiresPayment,
			hasSubmission,
			hasValidation,
		),
		ConfirmedBy: confirmedBy,
		RejectedBy:  rejectedBy,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// partyAttr collects the distinct wallets named by attr across the session's
// records of recordType. Duplicate records for the same wallet collapse to
// one entry; duplicates are idempotent no-ops by contract.
func (q *sessionQueriesImpl) partyAttr(ctx context.Context, recordType, sessionKey, attr string) ([]string, error) {
	records, err := q.store.Query(ctx, entitystore.NewQuery(recordType).
		Where(session.AttrSessionKey, sessionKey).
		OrderAsc().
		Build())
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "session record query failed"), errs.ErrStoreUnavailable)
	}

	seen := make(map[string]struct{}, len(records))
	var wallets []string
	for _, record := range records {
		wallet := strings.ToLower(strings.TrimSpace(record.Attr(attr)))
		if wallet == "" {
			continue
		}
		if _, dup := seen[wallet]; dup {
			continue
		}
		seen[wallet] = struct{}{}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (q *sessionQueriesImpl) hasRecord(ctx context.Context, recordType, sessionKey string) (bool, error) {
	records, err := q.store.Query(ctx, entitystore.NewQuery(recordType).
		Where(session.AttrSessionKey, sessionKey).
		Limit(1).
		Build())
	if err != nil {
		return false, errs.Mark(errs.Wrap(err, "session record query failed"), errs.ErrStoreUnavailable)
	}
	return len(records) > 0, nil
}
