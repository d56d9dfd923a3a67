package profile

import "errors"

var (
	ErrInvalidWallet    = errors.New("wallet address is required")
	ErrInvalidUsername  = errors.New("username must be 3-32 characters of letters, digits, underscore or hyphen")
	ErrEmptyDisplayName = errors.New("display name cannot be empty")
	ErrInvalidSlot      = errors.New("availability slot is invalid")
)

// Record types and attribute tags for profile-shaped entities. The wallet is
// the identity attribute: all records sharing it form one logical profile.
const (
	RecordType             = "profile"
	RecordTypeAvailability = "availability"

	AttrWallet   = "wallet"
	AttrUsername = "username"
)
