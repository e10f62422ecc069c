package dto

import (
	domainlistings "staynest/internal/domain/listings"
)

type ListingCard struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	NightPrice  float64 `json:"night_price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	PhotoCount  int     `json:"photo_count"`
}

type ListingCollection struct {
	Items []ListingCard `json:"items"`
	Total int           `json:"total"`
}

func MapListingCard(l *domainlistings.Listing) ListingCard {
	return ListingCard{
		ID:          string(l.ID),
		Title:       l.Title,
		City:        l.City,
		Country:     l.Country,
		NightPrice:  l.NightPrice,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		PhotoCount:  len(l.Photos),
	}
}

type ListingOverview struct {
	ListingCard
	Description   string         `json:"description"`
	GuestCapacity int            `json:"guest_capacity"`
	MinCancelDays int            `json:"min_cancel_days"`
	Promotions    []PromotionDTO `json:"promotions"`
}

type PromotionDTO struct {
	MinNights          int     `json:"min_nights"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Description        string  `json:"description"`
}

func MapListingOverview(l *domainlistings.Listing) ListingOverview {
	promos := make([]PromotionDTO, 0, len(l.Promotions))
	for _, p := range l.Promotions {
		promos = append(promos, PromotionDTO{
			MinNights:          p.MinNights,
			DiscountPercentage: p.DiscountPercentage,
			Description:        p.Description,
		})
	}
	return ListingOverview{
		ListingCard:   MapListingCard(l),
		Description:   l.Description,
		GuestCapacity: l.GuestCapacity,
		MinCancelDays: l.MinCancelDays,
		Promotions:    promos,
	}
}
