package session

import "errors"

var (
	ErrMissingMentor    = errors.New("mentor wallet is required")
	ErrMissingLearner   = errors.New("learner wallet is required")
	ErrSameParties      = errors.New("mentor and learner must be different wallets")
	ErrMissingSkill     = errors.New("skill is required")
	ErrMissingSchedule  = errors.New("scheduled time is required")
	ErrInvalidRequester = errors.New("requester must be the mentor or the learner")
	ErrNotParticipant   = errors.New("wallet is not a party to this session")
	ErrMissingTxHash    = errors.New("transaction hash is required")
)

// Record types of the session family. Each is independently append-only;
// together they are the full state of one scheduled meeting. The session
// key returned at creation is the identity that ties them together.
const (
	RecordType            = "session"
	RecordTypeConfirm     = "session_confirmation"
	RecordTypeReject      = "session_rejection"
	RecordTypePaySubmit   = "session_payment_submission"
	RecordTypePayValidate = "session_payment_validation"

	AttrSessionKey    = "session_key"
	AttrMentorWallet  = "mentor_wallet"
	AttrLearnerWallet = "learner_wallet"
	AttrSkill         = "skill"
	AttrRequester     = "requester_wallet"
	AttrConfirmedBy   = "confirmed_by"
	AttrRejectedBy    = "rejected_by"
	AttrWallet        = "wallet"
	AttrTxHash        = "tx_hash"
)

// Status is never stored. It is recomputed from the record set on every
// read; persisting it would create a second source of truth that the
// append-only log could drift away from.
type Status string

const (
	StatusPending            Status = "pending"
	StatusPartiallyConfirmed Status = "confirmed-by-one"
	StatusScheduled          Status = "scheduled"
	StatusRejected           Status = "rejected"
)

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not-required"
	PaymentPending     PaymentStatus = "pending"
	PaymentSubmitted   PaymentStatus = "submitted"
	PaymentValidated   PaymentStatus = "validated"
)
