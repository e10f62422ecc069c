package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainlistings "staynest/internal/domain/listings"
	domainreservation "staynest/internal/domain/reservation"
	domainrange "staynest/internal/domain/shared/daterange"
	mongodb "staynest/internal/infra/db/mongo"
)

// respondError maps domain sentinels onto HTTP statuses. Unknown errors are
// reported as 500 without leaking the message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainlistings.ErrListingNotFound),
		errors.Is(err, domainreservation.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainreservation.ErrSelfBooking),
		errors.Is(err, domainreservation.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainlistings.ErrNotBookable),
		errors.Is(err, domainreservation.ErrDatesUnavailable),
		errors.Is(err, domainreservation.ErrCancellationWindow),
		errors.Is(err, domainreservation.ErrInvalidState),
		errors.Is(err, mongodb.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainrange.ErrSameDay),
		errors.Is(err, domainrange.ErrInverted),
		errors.Is(err, domainreservation.ErrDatesInPast),
		errors.Is(err, domainreservation.ErrGuestTypeLimit),
		errors.Is(err, domainreservation.ErrCapacityExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// requireUser reads the caller identity propagated by the edge proxy. The
// service trusts the header; authenticating it is the gateway's job.
func requireUser(c *gin.Context) (string, bool) {
	user := c.GetHeader("X-User-ID")
	if user == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID"})
		return "", false
	}
	return user, true
}
