package dto

import (
	"sort"
	"time"

	"staynest/internal/domain/availability"
)

const calendarDateLayout = "2006-01-02"

// Calendar is the UI-consumable projection of a listing's blocked days.
type Calendar struct {
	ListingID       string   `json:"listing_id"`
	BlockedCheckIn  []string `json:"blocked_check_in"`
	BlockedCheckOut []string `json:"blocked_check_out"`
}

func MapCalendar(listingID string, blocked availability.BlockedDates) Calendar {
	return Calendar{
		ListingID:       listingID,
		BlockedCheckIn:  sortedDates(blocked.CheckIn),
		BlockedCheckOut: sortedDates(blocked.CheckOut),
	}
}

func sortedDates(set map[time.Time]struct{}) []string {
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d.Format(calendarDateLayout))
	}
	sort.Strings(out)
	return out
}
