package session

import (
	"strings"
	"time"

	"skillmesh/internal/domain/profile"
)

type Session struct {
	mentorWallet    profile.Wallet
	learnerWallet   profile.Wallet
	skill           string
	scheduledAt     time.Time
	requesterWallet profile.Wallet
	requiresPayment bool
	createdAt       time.Time
}

func NewSession(
	mentorAddress, learnerAddress, skill string,
	scheduledAt time.Time,
	requesterAddress string,
	requiresPayment bool,
	now time.Time,
) (*Session, error) {
	mentor, err := profile.NewWallet(mentorAddress)
	if err != nil {
		return nil, ErrMissingMentor
	}

	learner, err := profile.NewWallet(learnerAddress)
	if err != nil {
		return nil, ErrMissingLearner
	}

	if mentor.String() == learner.String() {
		return nil, ErrSameParties
	}

	trimmedSkill := strings.ToLower(strings.TrimSpace(skill))
	if trimmedSkill == "" {
		return nil, ErrMissingSkill
	}

	if scheduledAt.IsZero() {
		return nil, ErrMissingSchedule
	}

	requester, err := profile.NewWallet(requesterAddress)
	if err != nil {
		return nil, ErrInvalidRequester
	}
	if requester.String() != mentor.String() && requester.String() != learner.String() {
		return nil, ErrInvalidRequester
	}

	return &Session{
		mentorWallet:    mentor,
		learnerWallet:   learner,
		skill:           trimmedSkill,
		scheduledAt:     scheduledAt,
		requesterWallet: requester,
		requiresPayment: requiresPayment,
		createdAt:       now,
	}, nil
}

func (s *Session) MentorWallet() profile.Wallet    { return s.mentorWallet }
func (s *Session) LearnerWallet() profile.Wallet   { return s.learnerWallet }
func (s *Session) Skill() string                   { return s.skill }
func (s *Session) ScheduledAt() time.Time          { return s.scheduledAt }
func (s *Session) RequesterWallet() profile.Wallet { return s.requesterWallet }
func (s *Session) RequiresPayment() bool           { return s.requiresPayment }
func (s *Session) CreatedAt() time.Time            { return s.createdAt }

// IsParticipant reports whether the normalized wallet is one of the two
// parties.
func (s *Session) IsParticipant(wallet string) bool {
	normalized := strings.ToLower(strings.TrimSpace(wallet))
	return normalized == s.mentorWallet.String() || normalized == s.learnerWallet.String()
}

// Counterpart returns the other party's wallet.
func (s *Session) Counterpart(wallet string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(wallet))
	switch normalized {
	case s.mentorWallet.String():
		return s.learnerWallet.String(), nil
	case s.learnerWallet.String():
		return s.mentorWallet.String(), nil
	default:
		return "", ErrNotParticipant
	}
}
