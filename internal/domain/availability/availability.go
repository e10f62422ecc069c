package availability

import (
	"time"

	"staynest/internal/domain/shared/daterange"
)

// IsRangeAvailable reports whether the candidate stay conflicts with any of
// the occupied ranges. Callers on the commit path must pass a freshly-read set
// of active stays; previews computed earlier are advisory only.
func IsRangeAvailable(candidate daterange.DateRange, occupied []daterange.DateRange) bool {
	for _, r := range occupied {
		if candidate.Overlaps(r) {
			return false
		}
	}
	return true
}

// BlockedDates holds day-level block sets for calendar UIs, keyed by midnight
// UTC. Advisory only: the authoritative check is the overlap predicate.
type BlockedDates struct {
	CheckIn  map[time.Time]struct{}
	CheckOut map[time.Time]struct{}
}

// ComputeBlockedDates folds occupied ranges into the two calendar block sets.
// For a stay [s, e): s is an invalid check-in (that night is occupied), e is an
// invalid check-out, and interior days s+1..e-1 are invalid for both. A
// one-night stay has no interior days. Deterministic regardless of input order.
func ComputeBlockedDates(occupied []daterange.DateRange) BlockedDates {
	blocked := BlockedDates{
		CheckIn:  make(map[time.Time]struct{}),
		CheckOut: make(map[time.Time]struct{}),
	}
	for _, r := range occupied {
		start := daterange.Day(r.CheckIn)
		end := daterange.Day(r.CheckOut)
		blocked.CheckIn[start] = struct{}{}
		blocked.CheckOut[end] = struct{}{}
		for d := start.AddDate(0, 0, 1); d.Before(end); d = d.AddDate(0, 0, 1) {
			blocked.CheckIn[d] = struct{}{}
			blocked.CheckOut[d] = struct{}{}
		}
	}
	return blocked
}
