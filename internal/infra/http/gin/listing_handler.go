package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/dto"
	listingapp "staynest/internal/app/handlers/listings"
	"staynest/internal/app/queries"
	domainlistings "staynest/internal/domain/listings"
)

// ListingHandler wires catalog and pricing queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
}

// Catalog responds with a filtered, ranked collection of listings.
func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.DiscoverListingsQuery{
		Params: domainlistings.SearchParams{
			City:          c.Query("city"),
			Country:       c.Query("country"),
			MinGuests:     parseInt(c.Query("min_guests")),
			PriceMin:      parseFloat(c.Query("price_min")),
			PriceMax:      parseFloat(c.Query("price_max")),
			Sort:          domainlistings.CatalogSort(c.Query("sort")),
			Limit:         parseInt(c.Query("limit")),
			Offset:        parseInt(c.Query("offset")),
			OnlyPublished: true,
		},
	}
	result, err := queries.Ask[listingapp.DiscoverListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Overview(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := listingapp.GetOverviewQuery{ListingID: listingID}
	result, err := queries.Ask[listingapp.GetOverviewQuery, dto.ListingOverview](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote prices a candidate stay without reserving anything.
func (h ListingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	checkIn, ok := parseDate(c.Query("check_in"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be YYYY-MM-DD"})
		return
	}
	checkOut, ok := parseDate(c.Query("check_out"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be YYYY-MM-DD"})
		return
	}
	query := listingapp.QuoteStayQuery{
		ListingID: listingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	}
	result, err := queries.Ask[listingapp.QuoteStayQuery, dto.PriceBreakdown](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDate(raw string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var _ ListingHTTP = ListingHandler{}
