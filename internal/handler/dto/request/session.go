package request

import (
	"time"

	"skillmesh/internal/usecase/commands"
)

type CreateSessionRequest struct {
	MentorWallet    string    `json:"mentor_wallet" binding:"required"`
	LearnerWallet   string    `json:"learner_wallet" binding:"required"`
	Skill           string    `json:"skill" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	RequiresPayment bool      `json:"requires_payment,omitempty"`
}

func (r CreateSessionRequest) ToInput(requesterWallet string) commands.CreateSessionInput {
	return commands.CreateSessionInput{
		MentorWallet:    r.MentorWallet,
		LearnerWallet:   r.LearnerWallet,
		Skill:           r.Skill,
		ScheduledAt:     r.ScheduledAt,
		RequesterWallet: requesterWallet,
		RequiresPayment: r.RequiresPayment,
	}
}

type RejectSessionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type SubmitPaymentRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}

type ValidatePaymentRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}
