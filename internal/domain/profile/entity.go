package profile

import (
	"strings"
	"time"
)

type Profile struct {
	wallet      Wallet
	username    Username
	displayName string
	bio         string
	skills      []string
	createdAt   time.Time
}

func NewProfile(
	walletAddress, username, displayName, bio string,
	skills []string,
	now time.Time,
) (*Profile, error) {
	wallet, err := NewWallet(walletAddress)
	if err != nil {
		return nil, err
	}

	handle, err := NewUsername(username)
	if err != nil {
		return nil, err
	}

	trimmedName := strings.TrimSpace(displayName)
	if trimmedName == "" {
		return nil, ErrEmptyDisplayName
	}

	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		if s := strings.TrimSpace(skill); s != "" {
			cleaned = append(cleaned, s)
		}
	}

	return &Profile{
		wallet:      wallet,
		username:    handle,
		displayName: trimmedName,
		bio:         strings.TrimSpace(bio),
		skills:      cleaned,
		createdAt:   now,
	}, nil
}

func (p *Profile) Wallet() Wallet       { return p.wallet }
func (p *Profile) Username() Username   { return p.username }
func (p *Profile) DisplayName() string  { return p.displayName }
func (p *Profile) Bio() string          { return p.bio }
func (p *Profile) Skills() []string     { return p.skills }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }

// Payload is the wire body of a profile record. Fields are optional on read:
// historical records may predate any of them.
type Payload struct {
	Wallet      string   `json:"wallet"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

func (p *Profile) ToPayload() Payload {
	return Payload{
		Wallet:      p.wallet.String(),
		Username:    p.username.String(),
		DisplayName: p.displayName,
		Bio:         p.bio,
		Skills:      p.skills,
	}
}
