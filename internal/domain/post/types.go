package post

import (
	"errors"
	"time"
)

var (
	ErrInvalidKind  = errors.New("post kind must be ask or offer")
	ErrMissingSkill = errors.New("skill label is required")
	ErrInvalidTTL   = errors.New("post ttl is out of range")
)

// Posts are independent TTL-bounded records: the record's own key is the
// identity, "editing" means writing a new post and letting the old one age
// out. No canonical resolution, no deletion markers.
const (
	RecordType = "post"

	AttrWallet = "wallet"
	AttrKind   = "kind"
	AttrSkill  = "skill"
)

type Kind string

const (
	KindAsk   Kind = "ask"
	KindOffer Kind = "offer"
)

const (
	DefaultTTL = 14 * 24 * time.Hour
	MaxTTL     = 90 * 24 * time.Hour
)
