package session

import "strings"

// DeriveStatus recomputes the meeting status from the confirmation and
// rejection record sets. A rejection by either party is terminal and wins
// over any number of confirmations, including cancellation of an already
// scheduled meeting.
func DeriveStatus(mentorWallet, learnerWallet string, confirmedBy []string, rejected bool) Status {
	if rejected {
		return StatusRejected
	}

	mentor := strings.ToLower(strings.TrimSpace(mentorWallet))
	learner := strings.ToLower(strings.TrimSpace(learnerWallet))

	var mentorConfirmed, learnerConfirmed bool
	for _, wallet := range confirmedBy {
		switch strings.ToLower(strings.TrimSpace(wallet)) {
		case mentor:
			mentorConfirmed = true
		case learner:
			learnerConfirmed = true
		}
	}

	switch {
	case mentorConfirmed && learnerConfirmed:
		return StatusScheduled
	case mentorConfirmed || learnerConfirmed:
		return StatusPartiallyConfirmed
	default:
		return StatusPending
	}
}

// DerivePaymentStatus recomputes the orthogonal payment sub-flow status.
// Validation implies submission even if the submission record is not yet
// visible, because validation records are only written on a validated
// submission.
func DerivePaymentStatus(requiresPayment, hasSubmission, hasValidation bool) PaymentStatus {
	if !requiresPayment {
		return PaymentNotRequired
	}
	switch {
	case hasValidation:
		return PaymentValidated
	case hasSubmission:
		return PaymentSubmitted
	default:
		return PaymentPending
	}
}
