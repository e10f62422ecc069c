package booking

import (
	"context"
	"errors"
	"time"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	"staynest/internal/app/middleware"
	"staynest/internal/app/outbox"
	"staynest/internal/app/uow"
	domainlistings "staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	domainreservation "staynest/internal/domain/reservation"
	domainrange "staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/guests"
)

const createReservationKey = "reservation.create"

type CreateReservationCommand struct {
	CommandID       string
	ListingID       string
	UserID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          guests.Counts
	IdempotencyKeyV string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &CreateReservationResult{} }

type CreateReservationResult struct {
	ReservationID string             `json:"reservation_id"`
	Price         dto.PriceBreakdown `json:"price"`
}

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

// CalendarInvalidator drops a listing's cached calendar after a reservation
// write. The cache is advisory, so invalidation is fire-and-forget.
type CalendarInvalidator interface {
	Invalidate(ctx context.Context, listingID string)
}

// CreateReservationHandler is the authoritative booking gate. Whatever a
// calendar or checkout preview computed earlier is advisory; this handler
// re-validates over a fresh read of the listing and its active reservations
// and prices the stay from the listing's current rate, never a client quote.
type CreateReservationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Calendar   CalendarInvalidator
	Now        func() time.Time
}

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*CreateReservationResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.Bind(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	existing, err := unit.Reservations().ActiveForListing(ctx, listing.ID, now)
	if err != nil {
		return nil, err
	}
	if err := domainreservation.ValidateBooking(listing, cmd.UserID, dr, cmd.Guests, existing, now); err != nil {
		return nil, err
	}

	price := domainpricing.Quote(listing.NightPrice, dr, listing.Promotions)

	res, err := domainreservation.New(domainreservation.CreateParams{
		ID:        domainreservation.ReservationID(cmd.CommandID),
		ListingID: listing.ID,
		UserID:    cmd.UserID,
		Range:     dr,
		Guests:    cmd.Guests,
		Price:     price,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}

	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Calendar != nil {
		h.Calendar.Invalidate(ctx, string(listing.ID))
	}

	return &CreateReservationResult{
		ReservationID: string(res.ID),
		Price:         dto.MapBreakdown(price),
	}, nil
}

func (h *CreateReservationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateReservationHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateReservationCommand, *CreateReservationResult] = (*CreateReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateReservationCommand)(nil)
