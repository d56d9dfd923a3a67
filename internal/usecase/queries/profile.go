package queries

import (
	"context"
	"time"

	"skillmesh/internal/domain/profile"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/errs"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProfileView is the canonical profile projection. Key and TxRef identify
// the winning record so callers can audit which version they saw.
type ProfileView struct {
	Key         string    `json:"key"`
	Wallet      string    `json:"wallet"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	TxRef       string    `json:"txRef"`
}

// ProfileRevision is one entry of the append-only profile history.
type ProfileRevision struct {
	Key       string    `json:"key"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type AvailabilityView struct {
	Key       string                     `json:"key"`
	Wallet    string                     `json:"wallet"`
	Timezone  string                     `json:"timezone,omitempty"`
	Slots     []profile.AvailabilitySlot `json:"slots"`
	CreatedAt time.Time                  `json:"createdAt"`
}

type ProfileQueries interface {
	GetProfile(ctx context.Context, wallet string) (*ProfileView, error)
	GetProfileHistory(ctx context.Context, wallet string) ([]ProfileRevision, error)
	GetAvailability(ctx context.Context, wallet string) (*AvailabilityView, error)
}

type profileQueriesImpl struct {
	resolver CanonicalResolver
}

func NewProfileQueries(resolver CanonicalResolver) ProfileQueries {
	return &profileQueriesImpl{resolver: resolver}
}

func (q *profileQueriesImpl) GetProfile(ctx context.Context, wallet string) (*ProfileView, error) {
	normalized, err := profile.NewWallet(wallet)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	record, err := q.resolver.Canonical(ctx, profile.RecordType, profile.AttrWallet, normalized.String())
	if err != nil {
		return nil, err
	}

	return profileViewFromRecord(record)
}

func (q *profileQueriesImpl) GetProfileHistory(ctx context.Context, wallet string) ([]ProfileRevision, error) {
	normalized, err := profile.NewWallet(wallet)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	records, err := q.resolver.History(ctx, profile.RecordType, profile.AttrWallet, normalized.String())
	if err != nil {
		return nil, err
	}

	revisions := make([]ProfileRevision, 0, len(records))
	for _, record := range records {
		revisions = append(revisions, ProfileRevision{
			Key:       record.Key,
			Username:  record.Attr(profile.AttrUsername),
			CreatedAt: record.CreatedAt,
		})
	}
	return revisions, nil
}

func (q *profileQueriesImpl) GetAvailability(ctx context.Context, wallet string) (*AvailabilityView, error) {
	normalized, err := profile.NewWallet(wallet)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	record, err := q.resolver.Canonical(ctx, profile.RecordTypeAvailability, profile.AttrWallet, normalized.String())
	if err != nil {
		return nil, err
	}

	var payload profile.AvailabilityPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, errs.Wrap(err, "failed to decode availability payload")
	}

	return &AvailabilityView{
		Key:       record.Key,
		Wallet:    record.Attr(profile.AttrWallet),
		Timezone:  payload.Timezone,
		Slots:     payload.Slots,
		CreatedAt: record.CreatedAt,
	}, nil
}

func profileViewFromRecord(record entitystore.Record) (*ProfileView, error) {
	var payload profile.Payload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, errs.Wrap(err, "failed to decode profile payload")
	}

	// Attributes win over payload for identity fields; historical records
	// may carry partial bodies.
	wallet := record.Attr(profile.AttrWallet)
	if wallet == "" {
		wallet = payload.Wallet
	}
	username := record.Attr(profile.AttrUsername)
	if username == "" {
		username = payload.Username
	}

	return &ProfileView{
		Key:         record.Key,
		Wallet:      wallet,
		Username:    username,
		DisplayName: payload.DisplayName,
		Bio:         payload.Bio,
		Skills:      payload.Skills,
		CreatedAt:   record.CreatedAt,
		TxRef:       record.TxRef,
	}, nil
}
