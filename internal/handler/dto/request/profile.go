package request

import (
	"skillmesh/internal/domain/profile"
	"skillmesh/internal/usecase/commands"
)

type UpsertProfileRequest struct {
	Username    string   `json:"username" binding:"required"`
	DisplayName string   `json:"display_name" binding:"required"`
	Bio         string   `json:"bio,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

func (r UpsertProfileRequest) ToInput(wallet string) commands.UpsertProfileInput {
	return commands.UpsertProfileInput{
		Wallet:      wallet,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Bio:         r.Bio,
		Skills:      r.Skills,
	}
}

type AvailabilitySlotRequest struct {
	Day   string `json:"day" binding:"required"`
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type SetAvailabilityRequest struct {
	Timezone string                    `json:"timezone,omitempty"`
	Slots    []AvailabilitySlotRequest `json:"slots" binding:"required"`
}

func (r SetAvailabilityRequest) ToInput(wallet string) commands.SetAvailabilityInput {
	slots := make([]profile.AvailabilitySlot, len(r.Slots))
	for i, s := range r.Slots {
		slots[i] = profile.AvailabilitySlot{
			Day:   s.Day,
			Start: s.Start,
			End:   s.End,
		}
	}
	return commands.SetAvailabilityInput{
		Wallet:   wallet,
		Timezone: r.Timezone,
		Slots:    slots,
	}
}
