package me

import (
	"context"
	"errors"
	"time"

	"staynest/internal/app/dto"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainlistings "staynest/internal/domain/listings"
)

const listGuestReservationsKey = "me.reservations"

type ListGuestReservationsQuery struct {
	UserID string
}

func (q ListGuestReservationsQuery) Key() string { return listGuestReservationsKey }

type ListGuestReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

// Handle returns the guest's reservations with status re-derived as of now and
// the stored breakdown echoed as-is; reservations are never re-priced after
// creation.
func (h *ListGuestReservationsHandler) Handle(ctx context.Context, q ListGuestReservationsQuery) (dto.ReservationCollection, error) {
	if q.UserID == "" {
		return dto.ReservationCollection{}, errors.New("me: user id required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.ReservationCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.ReservationCollection{}, err
		}
		ctx = uow.Bind(ctx, unit)
		defer unit.Rollback(ctx)
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}

	items, err := unit.Reservations().ListByGuest(ctx, q.UserID)
	if err != nil {
		return dto.ReservationCollection{}, err
	}

	out := dto.ReservationCollection{Items: make([]dto.ReservationSummary, 0, len(items))}
	for _, r := range items {
		listing, err := unit.Listings().ByID(ctx, r.ListingID)
		if err != nil {
			if errors.Is(err, domainlistings.ErrListingNotFound) {
				listing = nil
			} else {
				return dto.ReservationCollection{}, err
			}
		}
		out.Items = append(out.Items, dto.MapReservationSummary(r, listing, now))
	}
	return out, nil
}

var _ queries.Handler[ListGuestReservationsQuery, dto.ReservationCollection] = (*ListGuestReservationsHandler)(nil)
