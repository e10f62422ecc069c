package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlistings "staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	domainreservation "staynest/internal/domain/reservation"
	domainrange "staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/guests"
	"staynest/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	listings     *memory.ListingRepository
	reservations *memory.ReservationRepository
	outbox       *memory.Outbox
	create       *CreateReservationHandler
	cancel       *CancelReservationHandler
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		listings:     memory.NewListingRepository(),
		reservations: memory.NewReservationRepository(),
		outbox:       memory.NewOutbox(),
	}
	factory := memory.Factory{
		ListingsRepo:     f.listings,
		ReservationsRepo: f.reservations,
	}
	f.create = &CreateReservationHandler{
		UoWFactory: factory,
		Outbox:     f.outbox,
		Now:        func() time.Time { return now },
	}
	f.cancel = &CancelReservationHandler{
		UoWFactory: factory,
		Outbox:     f.outbox,
		Now:        func() time.Time { return now },
	}
	return f
}

func (f *fixture) seedListing(t *testing.T) *domainlistings.Listing {
	t.Helper()
	l, err := domainlistings.New(domainlistings.CreateParams{
		ID:            "lst-1",
		Host:          "host-1",
		Title:         "Harbor loft",
		NightPrice:    90,
		Promotions:    []domainpricing.Promotion{{MinNights: 3, DiscountPercentage: 10}},
		GuestCapacity: 4,
		MinCancelDays: 2,
		Now:           date(2025, 8, 1),
	})
	require.NoError(t, err)
	require.NoError(t, l.Publish(date(2025, 8, 1)))
	l.ClearEvents()
	require.NoError(t, f.listings.Save(context.Background(), l))
	return l
}

func (f *fixture) seedReservation(t *testing.T, id, userID string, checkIn, checkOut time.Time) {
	t.Helper()
	dr, err := domainrange.New(checkIn, checkOut)
	require.NoError(t, err)
	res, err := domainreservation.New(domainreservation.CreateParams{
		ID:        domainreservation.ReservationID(id),
		ListingID: "lst-1",
		UserID:    userID,
		Range:     dr,
		Guests:    guests.Counts{guests.Adults: 2},
		Price:     domainpricing.ComputeBreakdown(90, dr.Nights(), nil),
		CreatedAt: date(2025, 8, 10),
	})
	require.NoError(t, err)
	res.ClearEvents()
	require.NoError(t, f.reservations.Save(context.Background(), res))
}

func TestCreateReservationAppliesPromotion(t *testing.T) {
	now := date(2025, 8, 20)
	f := newFixture(t, now)
	f.seedListing(t)
	f.seedReservation(t, "res-existing", "guest-1", date(2025, 9, 1), date(2025, 9, 5))

	// check-in on the existing checkout day: same-day turnover
	result, err := f.create.Handle(context.Background(), CreateReservationCommand{
		CommandID: "res-new",
		ListingID: "lst-1",
		UserID:    "guest-2",
		CheckIn:   date(2025, 9, 5),
		CheckOut:  date(2025, 9, 8),
		Guests:    guests.Counts{guests.Adults: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "res-new", result.ReservationID)
	assert.Equal(t, 3, result.Price.Nights)
	assert.Equal(t, 270.0, result.Price.Subtotal)
	assert.Equal(t, 27.0, result.Price.DiscountAmount)
	assert.Equal(t, 243.0, result.Price.Total)

	stored, err := f.reservations.ByID(context.Background(), "res-new")
	require.NoError(t, err)
	assert.Equal(t, domainreservation.StatusUpcoming, stored.Status)
	assert.Equal(t, 243.0, stored.Price.Total)
}

func TestCreateReservationRejectsOverlap(t *testing.T) {
	now := date(2025, 8, 20)
	f := newFixture(t, now)
	f.seedListing(t)
	f.seedReservation(t, "res-existing", "guest-1", date(2025, 9, 1), date(2025, 9, 5))

	_, err := f.create.Handle(context.Background(), CreateReservationCommand{
		CommandID: "res-new",
		ListingID: "lst-1",
		UserID:    "guest-2",
		CheckIn:   date(2025, 9, 4),
		CheckOut:  date(2025, 9, 6),
		Guests:    guests.Counts{guests.Adults: 2},
	})
	assert.ErrorIs(t, err, domainreservation.ErrDatesUnavailable)

	_, lookupErr := f.reservations.ByID(context.Background(), "res-new")
	assert.ErrorIs(t, lookupErr, domainreservation.ErrReservationNotFound)
}

func TestCreateReservationPricesFromCurrentListingRate(t *testing.T) {
	now := date(2025, 8, 20)
	f := newFixture(t, now)
	l := f.seedListing(t)

	// host raises the rate before the guest commits; the commit re-prices
	require.NoError(t, l.SetNightPrice(120, date(2025, 8, 15)))
	require.NoError(t, f.listings.Save(context.Background(), l))

	result, err := f.create.Handle(context.Background(), CreateReservationCommand{
		CommandID: "res-new",
		ListingID: "lst-1",
		UserID:    "guest-2",
		CheckIn:   date(2025, 9, 5),
		CheckOut:  date(2025, 9, 7),
		Guests:    guests.Counts{guests.Adults: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 240.0, result.Price.Total)
}

func TestCreateReservationUnknownListing(t *testing.T) {
	f := newFixture(t, date(2025, 8, 20))

	_, err := f.create.Handle(context.Background(), CreateReservationCommand{
		CommandID: "res-new",
		ListingID: "lst-missing",
		UserID:    "guest-1",
		CheckIn:   date(2025, 9, 5),
		CheckOut:  date(2025, 9, 8),
		Guests:    guests.Counts{guests.Adults: 1},
	})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
}

func TestCreateReservationRecordsConfirmedEvent(t *testing.T) {
	f := newFixture(t, date(2025, 8, 20))
	f.seedListing(t)

	_, err := f.create.Handle(context.Background(), CreateReservationCommand{
		CommandID: "res-new",
		ListingID: "lst-1",
		UserID:    "guest-2",
		CheckIn:   date(2025, 9, 5),
		CheckOut:  date(2025, 9, 8),
		Guests:    guests.Counts{guests.Adults: 2},
	})
	require.NoError(t, err)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "reservation.confirmed", pending[0].Name)
	assert.Equal(t, "res-new", pending[0].Aggregate)
}

func TestCancelReservationByGuest(t *testing.T) {
	now := date(2025, 9, 1)
	f := newFixture(t, now)
	f.seedListing(t)
	f.seedReservation(t, "res-1", "guest-1", date(2025, 9, 5), date(2025, 9, 8))

	result, err := f.cancel.Handle(context.Background(), CancelReservationCommand{
		ReservationID: "res-1",
		ActorID:       "guest-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainreservation.StatusCanceled), result.Status)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "reservation.canceled", pending[0].Name)
}

func TestCancelReservationFreesDates(t *testing.T) {
	now := date(2025, 9, 1)
	f := newFixture(t, now)
	f.seedListing(t)
	f.seedReservation(t, "res-1", "guest-1", date(2025, 9, 5), date(2025, 9, 8))

	_, err := f.cancel.Handle(context.Background(), CancelReservationCommand{
		ReservationID: "res-1",
		ActorID:       "guest-1",
	})
	require.NoError(t, err)

	_, err = f.create.Handle(context.Background(), CreateReservationCommand{
		CommandID: "res-2",
		ListingID: "lst-1",
		UserID:    "guest-2",
		CheckIn:   date(2025, 9, 5),
		CheckOut:  date(2025, 9, 8),
		Guests:    guests.Counts{guests.Adults: 1},
	})
	assert.NoError(t, err)
}

func TestCancelReservationInsideWindow(t *testing.T) {
	now := date(2025, 9, 4)
	f := newFixture(t, now)
	f.seedListing(t)
	f.seedReservation(t, "res-1", "guest-1", date(2025, 9, 5), date(2025, 9, 8))

	_, err := f.cancel.Handle(context.Background(), CancelReservationCommand{
		ReservationID: "res-1",
		ActorID:       "guest-1",
	})
	assert.ErrorIs(t, err, domainreservation.ErrCancellationWindow)

	// the host is not bound by the lead time
	result, err := f.cancel.Handle(context.Background(), CancelReservationCommand{
		ReservationID: "res-1",
		ActorID:       "host-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainreservation.StatusCanceledByHost), result.Status)
}
