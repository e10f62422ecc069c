package ranking

import (
	"sort"

	"staynest/internal/domain/listings"
)

// PopularityScore weighs demand signals into a 0..100 score. Absent or zero
// signals contribute nothing, so an untouched listing scores exactly 0.
func PopularityScore(l *listings.Listing) float64 {
	return 40*capped(float64(l.FavoritesCount)/50) +
		35*capped(float64(l.ReservationsCount)/30) +
		25*(l.Rating/5)
}

// FeaturedScore weighs quality signals. Review volume only counts once a
// listing has at least 3 reviews.
func FeaturedScore(l *listings.Listing) float64 {
	reviews := 0.0
	if l.ReviewCount >= 3 {
		reviews = capped(float64(l.ReviewCount) / 20)
	}
	return 50*(l.Rating/5) +
		30*reviews +
		15*capped(float64(len(l.Photos))/10)
}

// RankByPopularity orders listings by descending popularity score. The sort is
// stable, so identical input always yields identical output.
func RankByPopularity(items []*listings.Listing) []*listings.Listing {
	return rank(items, PopularityScore)
}

// RankByFeatured pre-filters to published listings rated 4.0 or higher, then
// orders by descending featured score.
func RankByFeatured(items []*listings.Listing) []*listings.Listing {
	eligible := make([]*listings.Listing, 0, len(items))
	for _, l := range items {
		if l.Rating >= 4.0 && l.Bookable() {
			eligible = append(eligible, l)
		}
	}
	return rank(eligible, FeaturedScore)
}

func rank(items []*listings.Listing, score func(*listings.Listing) float64) []*listings.Listing {
	out := append([]*listings.Listing(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	return out
}

func capped(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
