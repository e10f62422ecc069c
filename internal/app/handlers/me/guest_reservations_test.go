package me

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

func setupHandler(t *testing.T, now time.Time) (*ListGuestReservationsHandler, *memory.ReservationRepository) {
	t.Helper()
	listingsRepo := memory.NewListingRepository()
	reservationsRepo := memory.NewReservationRepository()

	l, err := domainlistings.New(domainlistings.CreateParams{
		ID:            "lst-1",
		Host:          "host-1",
		Title:         "Harbor loft",
		City:          "Tallinn",
		Country:       "Estonia",
		NightPrice:    90,
		GuestCapacity: 4,
		Now:           date(2025, 8, 1),
	})
	require.NoError(t, err)
	require.NoError(t, listingsRepo.Save(context.Background(), l))

	h := &ListGuestReservationsHandler{
		UoWFactory: memory.Factory{
			ListingsRepo:     listingsRepo,
			ReservationsRepo: reservationsRepo,
		},
		Now: func() time.Time { return now },
	}
	return h, reservationsRepo
}

func seedReservation(t *testing.T, repo *memory.ReservationRepository, id, userID, listingID string, checkIn, checkOut time.Time) *domainreservation.Reservation {
	t.Helper()
	dr, err := domainrange.New(checkIn, checkOut)
	require.NoError(t, err)
	res, err := domainreservation.New(domainreservation.CreateParams{
		ID:        domainreservation.ReservationID(id),
		ListingID: domainlistings.ListingID(listingID),
		UserID:    userID,
		Range:     dr,
		Guests:    guests.Counts{guests.Adults: 2},
		Price:     domainpricing.ComputeBreakdown(90, dr.Nights(), nil),
		CreatedAt: date(2025, 8, 10),
	})
	require.NoError(t, err)
	res.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), res))
	return res
}

func TestListGuestReservationsDerivesStatus(t *testing.T) {
	now := date(2025, 9, 10)
	h, repo := setupHandler(t, now)
	seedReservation(t, repo, "res-upcoming", "guest-1", "lst-1", date(2025, 9, 15), date(2025, 9, 18))
	seedReservation(t, repo, "res-done", "guest-1", "lst-1", date(2025, 9, 1), date(2025, 9, 4))
	seedReservation(t, repo, "res-other", "guest-2", "lst-1", date(2025, 9, 20), date(2025, 9, 22))

	out, err := h.Handle(context.Background(), ListGuestReservationsQuery{UserID: "guest-1"})
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	byID := map[string]string{}
	for _, item := range out.Items {
		byID[item.ID] = item.Status
	}
	assert.Equal(t, "completed", byID["res-done"])
	assert.Equal(t, "upcoming", byID["res-upcoming"])
}

func TestListGuestReservationsKeepsStoredPrice(t *testing.T) {
	now := date(2025, 9, 10)
	h, repo := setupHandler(t, now)
	seedReservation(t, repo, "res-1", "guest-1", "lst-1", date(2025, 9, 15), date(2025, 9, 18))

	out, err := h.Handle(context.Background(), ListGuestReservationsQuery{UserID: "guest-1"})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, 270.0, out.Items[0].Price.Total)
	assert.Equal(t, "Harbor loft", out.Items[0].Listing.Title)
}

func TestListGuestReservationsToleratesMissingListing(t *testing.T) {
	now := date(2025, 9, 10)
	h, repo := setupHandler(t, now)
	seedReservation(t, repo, "res-1", "guest-1", "lst-gone", date(2025, 9, 15), date(2025, 9, 18))

	out, err := h.Handle(context.Background(), ListGuestReservationsQuery{UserID: "guest-1"})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "lst-gone", out.Items[0].Listing.ID)
	assert.Empty(t, out.Items[0].Listing.Title)
}

func TestListGuestReservationsRequiresUser(t *testing.T) {
	h, _ := setupHandler(t, date(2025, 9, 10))

	_, err := h.Handle(context.Background(), ListGuestReservationsQuery{})
	assert.Error(t, err)
}
