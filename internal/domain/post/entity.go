package post

import (
	"strings"
	"time"

	"skillmesh/internal/domain/profile"
)

type Post struct {
	kind        Kind
	wallet      profile.Wallet
	skill       string
	description string
	rateCents   int64
	ttl         time.Duration
	createdAt   time.Time
}

func NewPost(
	kind Kind,
	walletAddress, skill, description string,
	rateCents int64,
	ttl time.Duration,
	now time.Time,
) (*Post, error) {
	if kind != KindAsk && kind != KindOffer {
		return nil, ErrInvalidKind
	}

	wallet, err := profile.NewWallet(walletAddress)
	if err != nil {
		return nil, err
	}

	trimmedSkill := strings.ToLower(strings.TrimSpace(skill))
	if trimmedSkill == "" {
		return nil, ErrMissingSkill
	}

	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 || ttl > MaxTTL {
		return nil, ErrInvalidTTL
	}

	return &Post{
		kind:        kind,
		wallet:      wallet,
		skill:       trimmedSkill,
		description: strings.TrimSpace(description),
		rateCents:   rateCents,
		ttl:         ttl,
		createdAt:   now,
	}, nil
}

func (p *Post) Kind() Kind             { return p.kind }
func (p *Post) Wallet() profile.Wallet { return p.wallet }
func (p *Post) Skill() string          { return p.skill }
func (p *Post) Description() string    { return p.description }
func (p *Post) RateCents() int64       { return p.rateCents }
func (p *Post) TTL() time.Duration     { return p.ttl }
func (p *Post) CreatedAt() time.Time   { return p.createdAt }

// Payload is the wire body of a post record.
type Payload struct {
	Kind        string `json:"kind"`
	Wallet      string `json:"wallet"`
	Skill       string `json:"skill"`
	Description string `json:"description,omitempty"`
	RateCents   int64  `json:"rateCents,omitempty"`
}

func (p *Post) ToPayload() Payload {
	return Payload{
		Kind:        string(p.kind),
		Wallet:      p.wallet.String(),
		Skill:       p.skill,
		Description: p.description,
		RateCents:   p.rateCents,
	}
}
