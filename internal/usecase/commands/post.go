package commands

import (
	"context"
	"log/slog"
	"time"

	"skillmesh/internal/domain/post"
	"skillmesh/internal/entitystore"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/errs"
)

type CreatePostInput struct {
	Kind        string
	Wallet      string
	Skill       string
	Description string
	RateCents   int64
	// TTL bounds the post's lifetime; zero selects the default.
	TTL time.Duration
}

type PostCommands interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*WriteReceipt, error)
}

type postCommandsImpl struct {
	store  EntityStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewPostCommands(store EntityStore, clk clock.Clock, logger *slog.Logger) PostCommands {
	return &postCommandsImpl{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// CreatePost appends an independent ask/offer record. Posts are not
// replace-in-place entities, so the write is direct: a content-identical
// resubmission reports AlreadyApplied, a pending result is surfaced as-is,
// and a failed write is just a failure the caller can repeat.
func (c *postCommandsImpl) CreatePost(ctx context.Context, in CreatePostInput) (*WriteReceipt, error) {
	entity, err := post.NewPost(
		post.Kind(in.Kind),
		in.Wallet,
		in.Skill,
		in.Description,
		in.RateCents,
		in.TTL,
		c.clock.Now(),
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidationFailed)
	}

	payload, err := json.Marshal(entity.ToPayload())
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode post payload")
	}

	attrs := entitystore.Attributes{
		entitystore.Attr(entitystore.AttrType, post.RecordType),
		entitystore.Attr(post.AttrKind, string(entity.Kind())),
		entitystore.Attr(post.AttrWallet, entity.Wallet().String()),
		entitystore.Attr(post.AttrSkill, entity.Skill()),
	}

	result, err := c.store.Write(ctx, attrs, payload, entity.TTL())
	if err != nil {
		if errs.Is(err, entitystore.ErrAlreadyExists) {
			// Content-identical resubmission; the existing record is it.
			return &WriteReceipt{
				Key:            entitystore.ContentKey(attrs, payload),
				AlreadyApplied: true,
			}, nil
		}
		if entitystore.IsAmbiguous(err) {
			// No identity to reconcile against; report pending and let
			// the caller re-list.
			c.logger.Warn("post write ambiguous, reporting pending", "error", err)
			return &WriteReceipt{Pending: true}, nil
		}
		return nil, errs.Mark(errs.Wrap(err, "post write failed"), errs.ErrStoreUnavailable)
	}

	return &WriteReceipt{
		Key:     result.Key,
		Receipt: result.Receipt,
		Pending: result.Pending(),
	}, nil
}
