package reservation

import (
	"time"

	"staynest/internal/domain/listings"
)

type ReservationConfirmedEvent struct {
	ReservationID ReservationID      `json:"reservation_id"`
	ListingID     listings.ListingID `json:"listing_id"`
	UserID        string             `json:"user_id"`
	CheckIn       time.Time          `json:"check_in"`
	CheckOut      time.Time          `json:"check_out"`
	Total         float64            `json:"total"`
	At            time.Time          `json:"at"`
}

func (e ReservationConfirmedEvent) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmedEvent) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationConfirmedEvent) OccurredAt() time.Time { return e.At }

type ReservationCanceledEvent struct {
	ReservationID ReservationID      `json:"reservation_id"`
	ListingID     listings.ListingID `json:"listing_id"`
	ByHost        bool               `json:"by_host"`
	At            time.Time          `json:"at"`
}

func (e ReservationCanceledEvent) EventName() string     { return "reservation.canceled" }
func (e ReservationCanceledEvent) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCanceledEvent) OccurredAt() time.Time { return e.At }
