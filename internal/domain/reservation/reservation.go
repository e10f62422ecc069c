package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/internal/domain/availability"
	"staynest/internal/domain/listings"
	"staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/events"
	"staynest/internal/domain/shared/guests"
)

var (
	ErrReservationNotFound = errors.New("reservation: not found")
	ErrDatesInPast         = errors.New("reservation: check-in must be in the future")
	ErrSelfBooking         = errors.New("reservation: hosts cannot book their own listing")
	ErrGuestTypeLimit      = errors.New("reservation: guest count outside the listing limits")
	ErrCapacityExceeded    = errors.New("reservation: guests exceed the listing capacity")
	ErrDatesUnavailable    = errors.New("reservation: dates not available")
	ErrNotAllowed          = errors.New("reservation: actor is not allowed to do that")
	ErrCancellationWindow  = errors.New("reservation: too close to check-in to cancel")
	ErrInvalidState        = errors.New("reservation: invalid state transition")
)

type ReservationID string

type Status string

const (
	StatusUpcoming       Status = "upcoming"
	StatusCompleted      Status = "completed"
	StatusCanceled       Status = "canceled"
	StatusCanceledByHost Status = "canceledByHost"
)

// EffectiveStatus derives a reservation's status from its dates and the
// current time. The stored value is only the terminal-state memo: both
// cancellation states are sticky, everything else degrades to upcoming or
// completed. This is the sole source of truth for status on every read path.
func EffectiveStatus(stored Status, end time.Time, now time.Time) Status {
	switch stored {
	case StatusCanceled, StatusCanceledByHost:
		return stored
	}
	if now.Before(end) {
		return StatusUpcoming
	}
	return StatusCompleted
}

type Reservation struct {
	ID         ReservationID
	ListingID  listings.ListingID
	UserID     string
	Range      daterange.DateRange
	Guests     guests.Counts
	Status     Status
	Price      pricing.Breakdown
	CreatedAt  time.Time
	CanceledAt *time.Time
	Version    int64
	events.EventRecorder
}

func (r *Reservation) EffectiveStatusAt(now time.Time) Status {
	return EffectiveStatus(r.Status, r.Range.CheckOut, now)
}

type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	// ActiveForListing returns every reservation for the listing whose
	// effective status is upcoming as of now.
	ActiveForListing(ctx context.Context, listingID listings.ListingID, now time.Time) ([]*Reservation, error)
	ListByGuest(ctx context.Context, userID string) ([]*Reservation, error)
}

type CreateParams struct {
	ID        ReservationID
	ListingID listings.ListingID
	UserID    string
	Range     daterange.DateRange
	Guests    guests.Counts
	Price     pricing.Breakdown
	CreatedAt time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if params.UserID == "" {
		return nil, errors.New("reservation: user id required")
	}
	if params.Guests.Occupancy() < 1 {
		return nil, errors.New("reservation: at least one guest required")
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:        params.ID,
		ListingID: params.ListingID,
		UserID:    params.UserID,
		Range:     params.Range,
		Guests:    params.Guests,
		Status:    StatusUpcoming,
		Price:     params.Price,
		CreatedAt: now,
	}
	r.Record(ReservationConfirmedEvent{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		UserID:        r.UserID,
		CheckIn:       r.Range.CheckIn,
		CheckOut:      r.Range.CheckOut,
		Total:         r.Price.Total,
		At:            now,
	})
	return r, nil
}

// ValidateBooking is the authoritative accept/reject gate. Checks run in a
// fixed order and short-circuit on the first failure, which fixes the error
// message the caller sees: dates, listing state, self-booking, per-type guest
// limits, occupancy capacity, then availability against a fresh reservation
// set.
func ValidateBooking(l *listings.Listing, requesterID string, dr daterange.DateRange, counts guests.Counts, existing []*Reservation, now time.Time) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	if !dr.CheckIn.After(daterange.Day(now)) {
		return ErrDatesInPast
	}
	if !l.Bookable() {
		return listings.ErrNotBookable
	}
	if requesterID == string(l.Host) {
		return ErrSelfBooking
	}
	if err := ValidateGuests(counts, l); err != nil {
		return err
	}
	if !availability.IsRangeAvailable(dr, ActiveRanges(existing, now)) {
		return ErrDatesUnavailable
	}
	return nil
}

// ValidateGuests checks every guest type against the listing's per-type
// limits, then the people-occupying sum against structural capacity.
func ValidateGuests(counts guests.Counts, l *listings.Listing) error {
	for _, t := range guests.Types() {
		if !l.LimitFor(t).Allows(counts.Of(t)) {
			return fmt.Errorf("%w: %s", ErrGuestTypeLimit, t)
		}
	}
	if counts.Occupancy() > l.GuestCapacity {
		return ErrCapacityExceeded
	}
	return nil
}

// ActiveRanges projects the effective-upcoming reservations onto their date
// ranges for the availability resolver.
func ActiveRanges(existing []*Reservation, now time.Time) []daterange.DateRange {
	ranges := make([]daterange.DateRange, 0, len(existing))
	for _, r := range existing {
		if r.EffectiveStatusAt(now) != StatusUpcoming {
			continue
		}
		ranges = append(ranges, r.Range)
	}
	return ranges
}

// Cancel transitions the reservation to its terminal canceled state. Only the
// reservation's guest or the listing's host may cancel, only while the
// effective status is upcoming. Guests are additionally held to the listing's
// cancellation lead time; hosts are not.
func (r *Reservation) Cancel(actorID string, host listings.HostID, minCancelDays int, now time.Time) error {
	if r.EffectiveStatusAt(now) != StatusUpcoming {
		return ErrInvalidState
	}
	var next Status
	switch actorID {
	case r.UserID:
		if daterange.DaysUntil(r.Range.CheckIn, now) < minCancelDays {
			return ErrCancellationWindow
		}
		next = StatusCanceled
	case string(host):
		next = StatusCanceledByHost
	default:
		return ErrNotAllowed
	}
	at := now.UTC()
	r.Status = next
	r.CanceledAt = &at
	r.Record(ReservationCanceledEvent{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		ByHost:        next == StatusCanceledByHost,
		At:            at,
	})
	return nil
}
