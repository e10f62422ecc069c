package pricing

import (
	"math"
	"time"

	"staynest/internal/domain/shared/daterange"
)

// Promotion is a long-stay discount tier: stays of at least MinNights qualify
// for DiscountPercentage off the subtotal.
type Promotion struct {
	MinNights          int     `json:"min_nights"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Description        string  `json:"description"`
}

// Breakdown is the full price derivation for one stay. It is recomputed on
// every read and never accumulated across steps: each field is rounded exactly
// once at the point it is derived.
type Breakdown struct {
	Nights             int     `json:"nights"`
	NightPrice         float64 `json:"night_price"`
	Subtotal           float64 `json:"subtotal"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount"`
	Total              float64 `json:"total"`
}

// NightsBetween counts calendar nights between two timestamps with
// time-of-day stripped, floored at 1. The floor is defensive: range validity
// is checked separately by daterange.Validate.
func NightsBetween(start, end time.Time) int {
	return daterange.DateRange{CheckIn: start, CheckOut: end}.Nights()
}

// SelectPromotion picks the applicable tier for a stay of the given length:
// the qualifying promotion with the highest MinNights wins, so longer-stay
// thresholds take precedence when several qualify. Among equal MinNights the
// higher discount wins, which keeps selection independent of slice order.
// Returns nil when no tier qualifies.
func SelectPromotion(promotions []Promotion, nights int) *Promotion {
	var best *Promotion
	for i := range promotions {
		p := &promotions[i]
		if p.MinNights > nights {
			continue
		}
		if best == nil ||
			p.MinNights > best.MinNights ||
			(p.MinNights == best.MinNights && p.DiscountPercentage > best.DiscountPercentage) {
			best = p
		}
	}
	return best
}

// ComputeBreakdown derives the stay price from the nightly rate, the stay
// length and an optional promotion.
func ComputeBreakdown(nightPrice float64, nights int, promotion *Promotion) Breakdown {
	subtotal := round2(nightPrice * float64(nights))
	discountPct := 0.0
	if promotion != nil {
		discountPct = promotion.DiscountPercentage
	}
	discountAmount := round2(subtotal * discountPct / 100)
	return Breakdown{
		Nights:             nights,
		NightPrice:         nightPrice,
		Subtotal:           subtotal,
		DiscountPercentage: discountPct,
		DiscountAmount:     discountAmount,
		Total:              round2(subtotal - discountAmount),
	}
}

// Quote is the single entry point shared by search previews, checkout previews
// and the commit path, so the three call sites cannot drift.
func Quote(nightPrice float64, dr daterange.DateRange, promotions []Promotion) Breakdown {
	nights := dr.Nights()
	return ComputeBreakdown(nightPrice, nights, SelectPromotion(promotions, nights))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
