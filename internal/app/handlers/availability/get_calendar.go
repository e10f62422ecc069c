package availability

import (
	"context"
	"time"

	"staynest/internal/app/dto"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainavailability "staynest/internal/domain/availability"
	domainlistings "staynest/internal/domain/listings"
	domainreservation "staynest/internal/domain/reservation"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	ListingID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

// CalendarCache holds precomputed calendars for a short TTL. The cache is
// strictly advisory: misses and errors fall through to a fresh computation,
// and the booking commit path never consults it.
type CalendarCache interface {
	Get(ctx context.Context, listingID string) (dto.Calendar, bool)
	Set(ctx context.Context, calendar dto.Calendar)
}

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Cache      CalendarCache
	Now        func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	if h.Cache != nil {
		if cached, ok := h.Cache.Get(ctx, q.ListingID); ok {
			return cached, nil
		}
	}

	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.Calendar{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.Calendar{}, err
		}
		ctx = uow.Bind(ctx, unit)
		defer unit.Rollback(ctx)
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}
	active, err := unit.Reservations().ActiveForListing(ctx, listing.ID, now)
	if err != nil {
		return dto.Calendar{}, err
	}

	blocked := domainavailability.ComputeBlockedDates(domainreservation.ActiveRanges(active, now))
	calendar := dto.MapCalendar(string(listing.ID), blocked)
	if h.Cache != nil {
		h.Cache.Set(ctx, calendar)
	}
	return calendar, nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
