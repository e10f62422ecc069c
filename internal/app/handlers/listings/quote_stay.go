package listings

import (
	"context"
	"time"

	"staynest/internal/app/dto"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainlistings "staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	domainrange "staynest/internal/domain/shared/daterange"
)

const quoteStayKey = "listings.quote"

type QuoteStayQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle prices a candidate stay for checkout previews. It runs the same
// promotion selection and breakdown arithmetic as the commit path, so the two
// can never disagree; the result is still advisory until the booking commits.
func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.PriceBreakdown, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.PriceBreakdown{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.PriceBreakdown{}, err
		}
		ctx = uow.Bind(ctx, unit)
		defer unit.Rollback(ctx)
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.PriceBreakdown{}, err
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.PriceBreakdown{}, err
	}
	return dto.MapBreakdown(domainpricing.Quote(listing.NightPrice, dr, listing.Promotions)), nil
}

var _ queries.Handler[QuoteStayQuery, dto.PriceBreakdown] = (*QuoteStayHandler)(nil)
