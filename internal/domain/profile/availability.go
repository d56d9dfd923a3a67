package profile

import (
	"regexp"
	"strings"
)

var (
	validDays = map[string]struct{}{
		"mon": {}, "tue": {}, "wed": {}, "thu": {}, "fri": {}, "sat": {}, "sun": {},
	}
	timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// AvailabilitySlot is one weekly recurring window, times in the wallet
// owner's declared timezone.
type AvailabilitySlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityPayload is the wire body of an availability record. Like
// profiles, availability is replace-on-write: the newest record for the
// wallet is the canonical schedule.
type AvailabilityPayload struct {
	Wallet   string             `json:"wallet"`
	Timezone string             `json:"timezone,omitempty"`
	Slots    []AvailabilitySlot `json:"slots"`
}

func ValidateSlots(slots []AvailabilitySlot) error {
	for _, slot := range slots {
		day := strings.ToLower(strings.TrimSpace(slot.Day))
		if _, ok := validDays[day]; !ok {
			return ErrInvalidSlot
		}
		if !timeOfDayPattern.MatchString(slot.Start) || !timeOfDayPattern.MatchString(slot.End) {
			return ErrInvalidSlot
		}
		if slot.Start >= slot.End {
			return ErrInvalidSlot
		}
	}
	return nil
}
