package daterange

import (
	"errors"
	"time"
)

var (
	ErrSameDay  = errors.New("daterange: check-in and check-out can't be the same day")
	ErrInverted = errors.New("daterange: check-in should be prior to check-out")
)

// DateRange represents a half-open stay interval [checkIn, checkOut).
// The checkout day is not occupied, which allows same-day turnover.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.Equal(dr.CheckOut) {
		return ErrSameDay
	}
	if dr.CheckOut.Before(dr.CheckIn) {
		return ErrInverted
	}
	return nil
}

// Nights returns the calendar-day length of the stay with time-of-day
// stripped. Inverted or zero-length input floors to 1 night; validity is the
// caller's concern, not this function's.
func (dr DateRange) Nights() int {
	nights := int(Day(dr.CheckOut).Sub(Day(dr.CheckIn)).Hours() / 24)
	if nights < 1 {
		return 1
	}
	return nights
}

// Overlaps reports strict half-open overlap: touching boundaries do not
// conflict, so a new check-in on an existing checkout day is allowed.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// Day truncates a timestamp to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of whole calendar days from now until t, with
// both sides normalized to midnight.
func DaysUntil(t, now time.Time) int {
	return int(Day(t).Sub(Day(now)).Hours() / 24)
}
