package queries

import (
	"context"
	"time"

	"skillmesh/internal/domain/post"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/errs"
)

const defaultPostLimit = 50

type PostView struct {
	Key         string    `json:"key"`
	Kind        string    `json:"kind"`
	Wallet      string    `json:"wallet"`
	Skill       string    `json:"skill"`
	Description string    `json:"description,omitempty"`
	RateCents   int64     `json:"rateCents,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// PostFilter narrows the listing; zero values mean "any".
type PostFilter struct {
	Kind   string
	Skill  string
	Wallet string
	Limit  int
}

type PostQueries interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]PostView, error)
}

type postQueriesImpl struct {
	store EntityStore
	clock clock.Clock
}

func NewPostQueries(store EntityStore, clk clock.Clock) PostQueries {
	return &postQueriesImpl{
		store: store,
		clock: clk,
	}
}

// ListPosts returns active posts, newest first. A post is active until its
// TTL horizon passes; expiry is purely time-based, there is no explicit
// status write to look for.
func (q *postQueriesImpl) ListPosts(ctx context.Context, filter PostFilter) ([]PostView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPostLimit
	}

	query := entitystore.NewQuery(post.RecordType).
		Where(post.AttrKind, filter.Kind).
		Where(post.AttrSkill, filter.Skill).
		Where(post.AttrWallet, filter.Wallet).
		OrderDesc().
		Build()

	records, err := q.store.Query(ctx, query)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "post query failed"), errs.ErrStoreUnavailable)
	}

	now := q.clock.Now()
	views := make([]PostView, 0, len(records))
	for _, record := range records {
		if record.Expired(now) {
			continue
		}
		view, decodeErr := postViewFromRecord(record)
		if decodeErr != nil {
			return nil, decodeErr
		}
		views = append(views, *view)
		if len(views) == limit {
			break
		}
	}

	return views, nil
}

func postViewFromRecord(record entitystore.Record) (*PostView, error) {
	var payload post.Payload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, errs.Wrap(err, "failed to decode post payload")
	}

	view := &PostView{
		Key:         record.Key,
		Kind:        record.Attr(post.AttrKind),
		Wallet:      record.Attr(post.AttrWallet),
		Skill:       record.Attr(post.AttrSkill),
		Description: payload.Description,
		RateCents:   payload.RateCents,
		CreatedAt:   record.CreatedAt,
	}
	if record.TTL > 0 {
		view.ExpiresAt = record.CreatedAt.Add(record.TTL)
	}
	return view, nil
}
