package response

import (
	"time"

	"skillmesh/internal/usecase/queries"
)

type PostResponse struct {
	Key         string    `json:"key"`
	Kind        string    `json:"kind"`
	Wallet      string    `json:"wallet"`
	Skill       string    `json:"skill"`
	Description string    `json:"description,omitempty"`
	RateCents   int64     `json:"rateCents,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

func FromPostView(view queries.PostView) PostResponse {
	return PostResponse{
		Key:         view.Key,
		Kind:        view.Kind,
		Wallet:      view.Wallet,
		Skill:       view.Skill,
		Description: view.Description,
		RateCents:   view.RateCents,
		CreatedAt:   view.CreatedAt,
		ExpiresAt:   view.ExpiresAt,
	}
}
