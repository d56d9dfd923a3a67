package response

import (
	"time"

	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"
)

type SessionResponse struct {
	Key             string    `json:"key"`
	MentorWallet    string    `json:"mentorWallet"`
	LearnerWallet   string    `json:"learnerWallet"`
	Skill           string    `json:"skill"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	RequesterWallet string    `json:"requesterWallet"`
	RequiresPayment bool      `json:"requiresPayment"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	ConfirmedBy     []string  `json:"confirmedBy"`
	RejectedBy      []string  `json:"rejectedBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SessionCreatedResponse struct {
	Key     string           `json:"key,omitempty"`
	Receipt string           `json:"receipt,omitempty"`
	Pending bool             `json:"pending"`
	Session *SessionResponse `json:"session,omitempty"`
}

type SessionConfirmResponse struct {
	AlreadyConfirmed bool             `json:"alreadyConfirmed"`
	Pending          bool             `json:"pending"`
	Session          *SessionResponse `json:"session,omitempty"`
}

type SessionRejectResponse struct {
	AlreadyRejected bool             `json:"alreadyRejected"`
	Pending         bool             `json:"pending"`
	Session         *SessionResponse `json:"session,omitempty"`
}

type SessionPaymentResponse struct {
	AlreadyApplied bool             `json:"alreadyApplied"`
	Pending        bool             `json:"pending"`
	Session        *SessionResponse `json:"session,omitempty"`
}

func FromSessionView(view *queries.SessionView) *SessionResponse {
	if view == nil {
		return nil
	}
	return &SessionResponse{
		Key:             view.Key,
		MentorWallet:    view.MentorWallet,
		LearnerWallet:   view.LearnerWallet,
		Skill:           view.Skill,
		ScheduledAt:     view.ScheduledAt,
		RequesterWallet: view.RequesterWallet,
		RequiresPayment: view.RequiresPayment,
		Status:          string(view.Status),
		PaymentStatus:   string(view.PaymentStatus),
		ConfirmedBy:     view.ConfirmedBy,
		RejectedBy:      view.RejectedBy,
		CreatedAt:       view.CreatedAt,
	}
}

func FromSessionCreated(result *commands.CreateSessionResult) *SessionCreatedResponse {
	return &SessionCreatedResponse{
		Key:     result.Key,
		Receipt: result.Receipt,
		Pending: result.Pending,
		Session: FromSessionView(result.Session),
	}
}

func FromSessionConfirm(result *commands.ConfirmSessionResult) *SessionConfirmResponse {
	return &SessionConfirmResponse{
		AlreadyConfirmed: result.AlreadyConfirmed,
		Pending:          result.Pending,
		Session:          FromSessionView(result.Session),
	}
}

func FromSessionReject(result *commands.RejectSessionResult) *SessionRejectResponse {
	return &SessionRejectResponse{
		AlreadyRejected: result.AlreadyApplied,
		Pending:         result.Pending,
		Session:         FromSessionView(result.Session),
	}
}

func FromSessionPayment(result *commands.PaymentResult) *SessionPaymentResponse {
	return &SessionPaymentResponse{
		AlreadyApplied: result.AlreadyApplied,
		Pending:        result.Pending,
		Session:        FromSessionView(result.Session),
	}
}
