package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/dto"
	availabilityapp "staynest/internal/app/handlers/availability"
	"staynest/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// Calendar returns the blocked check-in and check-out dates for a listing.
// The response is advisory; the booking command re-validates on commit.
func (h AvailabilityHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := availabilityapp.GetCalendarQuery{ListingID: listingID}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
