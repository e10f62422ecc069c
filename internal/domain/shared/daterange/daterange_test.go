package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesTimeOfDay(t *testing.T) {
	checkIn := time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)
	checkOut := time.Date(2025, 9, 4, 11, 0, 0, 0, time.UTC)

	dr, err := New(checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 9, 1), dr.CheckIn)
	assert.Equal(t, date(2025, 9, 4), dr.CheckOut)
	assert.Equal(t, 3, dr.Nights())
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	_, err := New(date(2025, 9, 1), date(2025, 9, 1))
	assert.ErrorIs(t, err, ErrSameDay)

	_, err = New(date(2025, 9, 4), date(2025, 9, 1))
	assert.ErrorIs(t, err, ErrInverted)
}

func TestNewSameCalendarDayDifferentHours(t *testing.T) {
	// different times on the same day collapse to a zero-length range
	_, err := New(
		time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 1, 23, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, ErrSameDay)
}

func TestNightsFloorsAtOne(t *testing.T) {
	inverted := DateRange{CheckIn: date(2025, 9, 4), CheckOut: date(2025, 9, 1)}
	assert.Equal(t, 1, inverted.Nights())

	zero := DateRange{CheckIn: date(2025, 9, 1), CheckOut: date(2025, 9, 1)}
	assert.Equal(t, 1, zero.Nights())
}

func TestOverlapsHalfOpen(t *testing.T) {
	stay := DateRange{CheckIn: date(2025, 9, 1), CheckOut: date(2025, 9, 5)}

	cases := []struct {
		name    string
		other   DateRange
		overlap bool
	}{
		{"identical", DateRange{date(2025, 9, 1), date(2025, 9, 5)}, true},
		{"contained", DateRange{date(2025, 9, 2), date(2025, 9, 3)}, true},
		{"straddles start", DateRange{date(2025, 8, 30), date(2025, 9, 2)}, true},
		{"straddles end", DateRange{date(2025, 9, 4), date(2025, 9, 7)}, true},
		{"same-day turnover after", DateRange{date(2025, 9, 5), date(2025, 9, 8)}, false},
		{"same-day turnover before", DateRange{date(2025, 8, 28), date(2025, 9, 1)}, false},
		{"disjoint", DateRange{date(2025, 9, 10), date(2025, 9, 12)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, stay.Overlaps(tc.other))
			assert.Equal(t, tc.overlap, tc.other.Overlaps(stay))
		})
	}
}

func TestContainsDate(t *testing.T) {
	stay := DateRange{CheckIn: date(2025, 9, 1), CheckOut: date(2025, 9, 5)}
	assert.True(t, stay.ContainsDate(date(2025, 9, 1)))
	assert.True(t, stay.ContainsDate(date(2025, 9, 4)))
	assert.False(t, stay.ContainsDate(date(2025, 9, 5)))
	assert.False(t, stay.ContainsDate(date(2025, 8, 31)))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 9, 1, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysUntil(date(2025, 9, 4), now))
	assert.Equal(t, 0, DaysUntil(date(2025, 9, 1), now))
	assert.Equal(t, -2, DaysUntil(date(2025, 8, 30), now))
}
