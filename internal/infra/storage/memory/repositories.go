package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainlistings "staynest/internal/domain/listings"
	domainreservation "staynest/internal/domain/reservation"
)

// ListingRepository is an in-memory implementation backing tests and the
// no-Mongo dev mode.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return listing, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

// Search returns listings that satisfy the provided filters. Price sorts are
// sorted and paged here; ranked sorts return the full filtered set in stable
// ID order so the caller can score across every match before paging.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		select {
		case <-ctx.Done():
			return domainlistings.SearchResult{}, ctx.Err()
		default:
		}

		if opts.OnlyPublished && !listing.Bookable() {
			continue
		}
		if opts.Host != "" && listing.Host != opts.Host {
			continue
		}
		if opts.City != "" && !strings.EqualFold(listing.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(listing.Country, opts.Country) {
			continue
		}
		if opts.MinGuests > 0 && listing.GuestCapacity < opts.MinGuests {
			continue
		}
		if opts.PriceMin > 0 && listing.NightPrice < opts.PriceMin {
			continue
		}
		if opts.PriceMax > 0 && listing.NightPrice > opts.PriceMax {
			continue
		}
		matches = append(matches, listing)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlistings.SortByPriceDesc:
			if matches[i].NightPrice == matches[j].NightPrice {
				return matches[i].ID < matches[j].ID
			}
			return matches[i].NightPrice > matches[j].NightPrice
		case domainlistings.SortByPriceAsc:
			if matches[i].NightPrice == matches[j].NightPrice {
				return matches[i].ID < matches[j].ID
			}
			return matches[i].NightPrice < matches[j].NightPrice
		default:
			// ranking sorts reorder later; keep a stable base order
			return matches[i].ID < matches[j].ID
		}
	})

	total := len(matches)
	if opts.Sort.Ranked() {
		return domainlistings.SearchResult{Items: matches, Total: total}, nil
	}
	if opts.Offset >= total {
		return domainlistings.SearchResult{Items: nil, Total: total}, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return domainlistings.SearchResult{Items: matches[opts.Offset:end], Total: total}, nil
}

// ReservationRepository keeps reservations in memory.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservation.ReservationID]*domainreservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		items: make(map[domainreservation.ReservationID]*domainreservation.Reservation),
	}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainreservation.ErrReservationNotFound
	}
	return res, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[res.ID] = res
	return nil
}

func (r *ReservationRepository) ActiveForListing(ctx context.Context, listingID domainlistings.ListingID, now time.Time) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreservation.Reservation
	for _, res := range r.items {
		if res.ListingID != listingID {
			continue
		}
		if res.EffectiveStatusAt(now) != domainreservation.StatusUpcoming {
			continue
		}
		out = append(out, res)
	}
	sortReservations(out)
	return out, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, userID string) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreservation.Reservation
	for _, res := range r.items {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	sortReservations(out)
	return out, nil
}

func sortReservations(items []*domainreservation.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Range.CheckIn.Equal(items[j].Range.CheckIn) {
			return items[i].ID < items[j].ID
		}
		return items[i].Range.CheckIn.Before(items[j].Range.CheckIn)
	})
}
