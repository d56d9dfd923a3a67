package session

import "time"

// Wire bodies of the session record family. Every field except the ones the
// state machine keys on is optional on read; historical records may lack
// later additions.

type Payload struct {
	MentorWallet    string    `json:"mentorWallet"`
	LearnerWallet   string    `json:"learnerWallet"`
	Skill           string    `json:"skill"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	RequesterWallet string    `json:"requesterWallet"`
	RequiresPayment bool      `json:"requiresPayment,omitempty"`
}

func (s *Session) ToPayload() Payload {
	return Payload{
		MentorWallet:    s.mentorWallet.String(),
		LearnerWallet:   s.learnerWallet.String(),
		Skill:           s.skill,
		ScheduledAt:     s.scheduledAt,
		RequesterWallet: s.requesterWallet.String(),
		RequiresPayment: s.requiresPayment,
	}
}

type ConfirmationPayload struct {
	SessionKey  string    `json:"sessionKey"`
	ConfirmedBy string    `json:"confirmedBy"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

type RejectionPayload struct {
	SessionKey string    `json:"sessionKey"`
	RejectedBy string    `json:"rejectedBy"`
	Reason     string    `json:"reason,omitempty"`
	RejectedAt time.Time `json:"rejectedAt"`
}

type PaymentSubmissionPayload struct {
	SessionKey  string    `json:"sessionKey"`
	Wallet      string    `json:"wallet"`
	TxHash      string    `json:"txHash"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type PaymentValidationPayload struct {
	SessionKey  string    `json:"sessionKey"`
	TxHash      string    `json:"txHash"`
	ValidatedAt time.Time `json:"validatedAt"`
}
