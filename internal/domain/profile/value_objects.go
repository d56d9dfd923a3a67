package profile

import (
	"regexp"
	"strings"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Wallet is a case-normalized wallet address. The store applies no
// normalization of its own, so every identity comparison in the system goes
// through this type first.
type Wallet struct {
	address string
}

func NewWallet(address string) (Wallet, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return Wallet{}, ErrInvalidWallet
	}
	return Wallet{address: normalized}, nil
}

func (w Wallet) String() string { return w.address }

// Username is the uniqueness-constrained handle. Normalized to lowercase so
// "Alice" and "alice" claim the same value.
type Username struct {
	name string
}

func NewUsername(name string) (Username, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if len(normalized) < MinUsernameLength || len(normalized) > MaxUsernameLength {
		return Username{}, ErrInvalidUsername
	}
	if !usernamePattern.MatchString(normalized) {
		return Username{}, ErrInvalidUsername
	}
	return Username{name: normalized}, nil
}

func (u Username) String() string { return u.name }
