package request

import (
	"time"

	"skillmesh/internal/usecase/commands"
)

type CreatePostRequest struct {
	Kind        string `json:"kind" binding:"required"`
	Skill       string `json:"skill" binding:"required"`
	Description string `json:"description,omitempty"`
	RateCents   int64  `json:"rate_cents,omitempty"`
	TTLDays     int    `json:"ttl_days,omitempty"`
}

func (r CreatePostRequest) ToInput(wallet string) commands.CreatePostInput {
	return commands.CreatePostInput{
		Kind:        r.Kind,
		Wallet:      wallet,
		Skill:       r.Skill,
		Description: r.Description,
		RateCents:   r.RateCents,
		TTL:         time.Duration(r.TTLDays) * 24 * time.Hour,
	}
}
