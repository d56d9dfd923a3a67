package response

import (
	"time"

	"skillmesh/internal/domain/profile"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"
)

type ProfileResponse struct {
	Key         string    `json:"key"`
	Wallet      string    `json:"wallet"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	TxRef       string    `json:"txRef"`
}

type ProfileRevisionResponse struct {
	Key       string    `json:"key"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type AvailabilityResponse struct {
	Key       string                     `json:"key"`
	Wallet    string                     `json:"wallet"`
	Timezone  string                     `json:"timezone,omitempty"`
	Slots     []profile.AvailabilitySlot `json:"slots"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// WriteReceiptResponse reports the outcome of an append. Pending means the
// store accepted the write without confirming it; the caller should re-read
// before retrying.
type WriteReceiptResponse struct {
	Key            string `json:"key,omitempty"`
	Receipt        string `json:"receipt,omitempty"`
	Pending        bool   `json:"pending"`
	AlreadyApplied bool   `json:"alreadyApplied,omitempty"`
}

func FromProfileView(view *queries.ProfileView) *ProfileResponse {
	return &ProfileResponse{
		Key:         view.Key,
		Wallet:      view.Wallet,
		Username:    view.Username,
		DisplayName: view.DisplayName,
		Bio:         view.Bio,
		Skills:      view.Skills,
		CreatedAt:   view.CreatedAt,
		TxRef:       view.TxRef,
	}
}

func FromProfileRevision(rev queries.ProfileRevision) ProfileRevisionResponse {
	return ProfileRevisionResponse{
		Key:       rev.Key,
		Username:  rev.Username,
		CreatedAt: rev.CreatedAt,
	}
}

func FromAvailabilityView(view *queries.AvailabilityView) *AvailabilityResponse {
	return &AvailabilityResponse{
		Key:       view.Key,
		Wallet:    view.Wallet,
		Timezone:  view.Timezone,
		Slots:     view.Slots,
		CreatedAt: view.CreatedAt,
	}
}

func FromWriteReceipt(receipt *commands.WriteReceipt) *WriteReceiptResponse {
	return &WriteReceiptResponse{
		Key:            receipt.Key,
		Receipt:        receipt.Receipt,
		Pending:        receipt.Pending,
		AlreadyApplied: receipt.AlreadyApplied,
	}
}
