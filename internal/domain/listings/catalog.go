package listings

import "strings"

// CatalogSort defines a supported ordering for discovery surfaces.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByPopular   CatalogSort = "popular"
	SortByFeatured  CatalogSort = "featured"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// Ranked reports whether the ordering is computed by the ranking engine. For
// ranked sorts repositories must return the full filtered set in a stable base
// order; scoring and paging happen after, over the whole set.
func (s CatalogSort) Ranked() bool {
	return s == SortByPopular || s == SortByFeatured
}

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Host          HostID
	City          string
	Country       string
	MinGuests     int
	PriceMin      float64
	PriceMax      float64
	Sort          CatalogSort
	Limit         int
	Offset        int
	OnlyPublished bool
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	normalized.Country = strings.TrimSpace(strings.ToLower(normalized.Country))
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.PriceMin < 0 {
		normalized.PriceMin = 0
	}
	if normalized.PriceMax > 0 && normalized.PriceMax < normalized.PriceMin {
		normalized.PriceMax = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByPopular, SortByFeatured:
	default:
		normalized.Sort = SortByPopular
	}
	return normalized
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []*Listing
	Total int
}
