package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/domain/listings"
	"staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/guests"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func publishedListing(t *testing.T) *listings.Listing {
	t.Helper()
	l, err := listings.New(listings.CreateParams{
		ID:            "lst-1",
		Host:          "host-1",
		Title:         "Seaside flat",
		GuestCapacity: 4,
		NightPrice:    90,
		MinCancelDays: 2,
		GuestLimits: map[guests.Type]guests.Limit{
			guests.Adults: {Min: 1, Max: 4},
			guests.Pets:   {Min: 0, Max: 1},
		},
		Now: date(2025, 8, 1),
	})
	require.NoError(t, err)
	require.NoError(t, l.Publish(date(2025, 8, 1)))
	return l
}

func upcomingReservation(t *testing.T, id string, userID string, dr daterange.DateRange) *Reservation {
	t.Helper()
	r, err := New(CreateParams{
		ID:        ReservationID(id),
		ListingID: "lst-1",
		UserID:    userID,
		Range:     dr,
		Guests:    guests.Counts{guests.Adults: 2},
		Price:     pricing.ComputeBreakdown(90, dr.Nights(), nil),
		CreatedAt: date(2025, 8, 15),
	})
	require.NoError(t, err)
	return r
}

func TestEffectiveStatus(t *testing.T) {
	end := date(2025, 9, 5)

	assert.Equal(t, StatusUpcoming, EffectiveStatus(StatusUpcoming, end, date(2025, 9, 1)))
	assert.Equal(t, StatusCompleted, EffectiveStatus(StatusUpcoming, end, date(2025, 9, 5)))
	assert.Equal(t, StatusCompleted, EffectiveStatus(StatusUpcoming, end, date(2025, 9, 20)))

	// cancellation states are sticky regardless of dates
	assert.Equal(t, StatusCanceled, EffectiveStatus(StatusCanceled, end, date(2025, 9, 1)))
	assert.Equal(t, StatusCanceled, EffectiveStatus(StatusCanceled, end, date(2025, 9, 20)))
	assert.Equal(t, StatusCanceledByHost, EffectiveStatus(StatusCanceledByHost, end, date(2025, 9, 20)))
}

func TestValidateBookingAcceptsValidRequest(t *testing.T) {
	l := publishedListing(t)
	dr := mustRange(t, date(2025, 9, 5), date(2025, 9, 8))

	err := ValidateBooking(l, "guest-1", dr, guests.Counts{guests.Adults: 2}, nil, date(2025, 9, 1))
	assert.NoError(t, err)
}

func TestValidateBookingRejectsPastDates(t *testing.T) {
	l := publishedListing(t)
	now := date(2025, 9, 5)

	err := ValidateBooking(l, "guest-1", mustRange(t, date(2025, 9, 4), date(2025, 9, 8)),
		guests.Counts{guests.Adults: 1}, nil, now)
	assert.ErrorIs(t, err, ErrDatesInPast)

	// same-day check-in counts as past
	err = ValidateBooking(l, "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)),
		guests.Counts{guests.Adults: 1}, nil, now)
	assert.ErrorIs(t, err, ErrDatesInPast)
}

func TestValidateBookingRejectsUnpublishedListing(t *testing.T) {
	l := publishedListing(t)
	require.NoError(t, l.Unpublish(date(2025, 8, 2)))

	err := ValidateBooking(l, "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)),
		guests.Counts{guests.Adults: 1}, nil, date(2025, 9, 1))
	assert.ErrorIs(t, err, listings.ErrNotBookable)
}

func TestValidateBookingRejectsSelfBooking(t *testing.T) {
	l := publishedListing(t)

	err := ValidateBooking(l, "host-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)),
		guests.Counts{guests.Adults: 1}, nil, date(2025, 9, 1))
	assert.ErrorIs(t, err, ErrSelfBooking)
}

func TestValidateBookingGuestLimits(t *testing.T) {
	l := publishedListing(t)
	dr := mustRange(t, date(2025, 9, 5), date(2025, 9, 8))
	now := date(2025, 9, 1)

	err := ValidateBooking(l, "guest-1", dr, guests.Counts{guests.Adults: 2, guests.Pets: 2}, nil, now)
	assert.ErrorIs(t, err, ErrGuestTypeLimit)

	err = ValidateBooking(l, "guest-1", dr, guests.Counts{guests.Adults: 5}, nil, now)
	assert.ErrorIs(t, err, ErrGuestTypeLimit)

	// per-type limits pass but the occupying sum exceeds structural capacity
	err = ValidateBooking(l, "guest-1", dr, guests.Counts{guests.Adults: 3, guests.Children: 2}, nil, now)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// pets do not occupy capacity
	err = ValidateBooking(l, "guest-1", dr, guests.Counts{guests.Adults: 4, guests.Pets: 1}, nil, now)
	assert.NoError(t, err)
}

func TestValidateBookingRejectsOverlappingDates(t *testing.T) {
	l := publishedListing(t)
	now := date(2025, 9, 1)
	existing := []*Reservation{
		upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8))),
	}

	err := ValidateBooking(l, "guest-2", mustRange(t, date(2025, 9, 7), date(2025, 9, 10)),
		guests.Counts{guests.Adults: 1}, existing, now)
	assert.ErrorIs(t, err, ErrDatesUnavailable)

	// back-to-back turnover is allowed
	err = ValidateBooking(l, "guest-2", mustRange(t, date(2025, 9, 8), date(2025, 9, 10)),
		guests.Counts{guests.Adults: 1}, existing, now)
	assert.NoError(t, err)
}

func TestValidateBookingIgnoresCanceledReservations(t *testing.T) {
	l := publishedListing(t)
	now := date(2025, 9, 1)
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))
	require.NoError(t, res.Cancel("guest-1", l.Host, 0, now))

	err := ValidateBooking(l, "guest-2", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)),
		guests.Counts{guests.Adults: 1}, []*Reservation{res}, now)
	assert.NoError(t, err)
}

func TestValidateBookingOrderShortCircuits(t *testing.T) {
	l := publishedListing(t)
	require.NoError(t, l.Unpublish(date(2025, 8, 2)))

	// dates are checked before listing state
	err := ValidateBooking(l, "guest-1", mustRange(t, date(2025, 9, 1), date(2025, 9, 3)),
		guests.Counts{guests.Adults: 99}, nil, date(2025, 9, 4))
	assert.ErrorIs(t, err, ErrDatesInPast)
}

func TestCancelByGuestWithinWindow(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	err := res.Cancel("guest-1", "host-1", 2, date(2025, 9, 1))
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, res.Status)
	require.NotNil(t, res.CanceledAt)
}

func TestCancelByGuestTooClose(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	err := res.Cancel("guest-1", "host-1", 2, date(2025, 9, 4))
	assert.ErrorIs(t, err, ErrCancellationWindow)
	assert.Equal(t, StatusUpcoming, res.Status)
}

func TestCancelByGuestExactlyAtWindowBoundary(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	// 2 full days out with a 2-day lead time is still allowed
	err := res.Cancel("guest-1", "host-1", 2, date(2025, 9, 3))
	assert.NoError(t, err)
}

func TestCancelByHostIgnoresWindow(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	err := res.Cancel("host-1", "host-1", 2, date(2025, 9, 4))
	require.NoError(t, err)
	assert.Equal(t, StatusCanceledByHost, res.Status)
}

func TestCancelByStrangerRejected(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	err := res.Cancel("guest-2", "host-1", 2, date(2025, 9, 1))
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestCancelCompletedRejected(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	err := res.Cancel("guest-1", "host-1", 0, date(2025, 9, 9))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelTwiceRejected(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))
	require.NoError(t, res.Cancel("guest-1", "host-1", 0, date(2025, 9, 1)))

	err := res.Cancel("host-1", "host-1", 0, date(2025, 9, 1))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestActiveRanges(t *testing.T) {
	now := date(2025, 9, 10)
	upcoming := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 15), date(2025, 9, 18)))
	completed := upcomingReservation(t, "res-2", "guest-1", mustRange(t, date(2025, 9, 1), date(2025, 9, 4)))
	canceled := upcomingReservation(t, "res-3", "guest-1", mustRange(t, date(2025, 9, 20), date(2025, 9, 22)))
	require.NoError(t, canceled.Cancel("guest-1", "host-1", 0, now))

	ranges := ActiveRanges([]*Reservation{upcoming, completed, canceled}, now)
	require.Len(t, ranges, 1)
	assert.Equal(t, upcoming.Range, ranges[0])
}

func TestNewRecordsConfirmedEvent(t *testing.T) {
	res := upcomingReservation(t, "res-1", "guest-1", mustRange(t, date(2025, 9, 5), date(2025, 9, 8)))

	evs := res.PendingEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, "reservation.confirmed", evs[0].EventName())
	assert.Equal(t, "res-1", evs[0].AggregateID())
}
