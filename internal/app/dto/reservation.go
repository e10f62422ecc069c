package dto

import (
	"time"

	domainlistings "staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	domainreservation "staynest/internal/domain/reservation"
	"staynest/internal/domain/shared/guests"
)

type PriceBreakdown struct {
	Nights             int     `json:"nights"`
	NightPrice         float64 `json:"night_price"`
	Subtotal           float64 `json:"subtotal"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount"`
	Total              float64 `json:"total"`
}

type ReservationListingSnapshot struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type ReservationSummary struct {
	ID         string                     `json:"id"`
	Listing    ReservationListingSnapshot `json:"listing"`
	CheckIn    time.Time                  `json:"check_in"`
	CheckOut   time.Time                  `json:"check_out"`
	Guests     map[string]int             `json:"guests"`
	Status     string                     `json:"status"`
	Price      PriceBreakdown             `json:"price"`
	CreatedAt  time.Time                  `json:"created_at"`
	CanceledAt *time.Time                 `json:"canceled_at,omitempty"`
}

type ReservationCollection struct {
	Items []ReservationSummary `json:"items"`
}

// MapReservationSummary re-derives effective status as of now; the stored
// status is never echoed verbatim.
func MapReservationSummary(r *domainreservation.Reservation, listing *domainlistings.Listing, now time.Time) ReservationSummary {
	snapshot := ReservationListingSnapshot{ID: string(r.ListingID)}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.City = listing.City
		snapshot.Country = listing.Country
	}
	counts := make(map[string]int, len(r.Guests))
	for _, t := range guests.Types() {
		if n := r.Guests.Of(t); n > 0 {
			counts[string(t)] = n
		}
	}
	return ReservationSummary{
		ID:         string(r.ID),
		Listing:    snapshot,
		CheckIn:    r.Range.CheckIn,
		CheckOut:   r.Range.CheckOut,
		Guests:     counts,
		Status:     string(r.EffectiveStatusAt(now)),
		Price:      MapBreakdown(r.Price),
		CreatedAt:  r.CreatedAt,
		CanceledAt: r.CanceledAt,
	}
}

func MapBreakdown(b domainpricing.Breakdown) PriceBreakdown {
	return PriceBreakdown{
		Nights:             b.Nights,
		NightPrice:         b.NightPrice,
		Subtotal:           b.Subtotal,
		DiscountPercentage: b.DiscountPercentage,
		DiscountAmount:     b.DiscountAmount,
		Total:              b.Total,
	}
}
