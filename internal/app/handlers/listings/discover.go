package listings

import (
	"context"

	"staynest/internal/app/dto"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainlistings "staynest/internal/domain/listings"
	domainranking "staynest/internal/domain/ranking"
)

const discoverListingsKey = "listings.discover"

type DiscoverListingsQuery struct {
	Params domainlistings.SearchParams
}

func (q DiscoverListingsQuery) Key() string { return discoverListingsKey }

type DiscoverListingsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle filters the catalog through the repository. Price sorts are ordered
// and paged by the store; for the popular and featured surfaces the store
// returns the full filtered set, which is ranked (and, for featured,
// eligibility-filtered) here before the page window is cut, so page one always
// carries the globally top-scored listings and Total counts the ranked set.
func (h *DiscoverListingsHandler) Handle(ctx context.Context, q DiscoverListingsQuery) (dto.ListingCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.ListingCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.ListingCollection{}, err
		}
		ctx = uow.Bind(ctx, unit)
		defer unit.Rollback(ctx)
	}

	params := q.Params.Normalized()
	result, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingCollection{}, err
	}

	items := result.Items
	total := result.Total
	switch params.Sort {
	case domainlistings.SortByPopular:
		items = domainranking.RankByPopularity(items)
	case domainlistings.SortByFeatured:
		items = domainranking.RankByFeatured(items)
	}
	if params.Sort.Ranked() {
		total = len(items)
		items = pageWindow(items, params.Offset, params.Limit)
	}

	out := dto.ListingCollection{
		Items: make([]dto.ListingCard, 0, len(items)),
		Total: total,
	}
	for _, l := range items {
		out.Items = append(out.Items, dto.MapListingCard(l))
	}
	return out, nil
}

func pageWindow(items []*domainlistings.Listing, offset, limit int) []*domainlistings.Listing {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var _ queries.Handler[DiscoverListingsQuery, dto.ListingCollection] = (*DiscoverListingsHandler)(nil)
