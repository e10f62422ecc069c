package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staynest/internal/app/commands"
	bookingapp "staynest/internal/app/handlers/booking"
	"staynest/internal/domain/shared/guests"
)

type ReservationHandler struct {
	Commands commands.Bus
}

type createReservationRequest struct {
	ListingID string         `json:"listing_id"`
	CheckIn   time.Time      `json:"check_in"`
	CheckOut  time.Time      `json:"check_out"`
	Guests    map[string]int `json:"guests"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	counts, err := parseGuestCounts(req.Guests)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateReservationCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		UserID:          user,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          counts,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateReservationCommand, *bookingapp.CreateReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	reservationID := c.Param("id")
	if reservationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation id is required"})
		return
	}
	cmd := bookingapp.CancelReservationCommand{
		ReservationID: reservationID,
		ActorID:       user,
	}
	result, err := commands.Dispatch[bookingapp.CancelReservationCommand, *bookingapp.CancelReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseGuestCounts(raw map[string]int) (guests.Counts, error) {
	counts := guests.Counts{}
	for name, n := range raw {
		t, err := guests.ParseType(name)
		if err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, nil
}

var _ ReservationHTTP = ReservationHandler{}
