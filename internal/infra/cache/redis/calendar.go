package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"staynest/internal/app/dto"
	availabilityhandlers "staynest/internal/app/handlers/availability"
	bookinghandlers "staynest/internal/app/handlers/booking"
)

// CalendarCache stores rendered calendars under a short TTL. The cache is
// advisory: every miss or decode error falls through to a fresh compute, and
// the booking path never consults it.
type CalendarCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewCalendarCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *CalendarCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CalendarCache{client: client, ttl: ttl, log: log}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *CalendarCache) Get(ctx context.Context, listingID string) (dto.Calendar, bool) {
	raw, err := c.client.Get(ctx, calendarKey(listingID)).Bytes()
	if err != nil {
		if err != redis.Nil && c.log != nil {
			c.log.DebugContext(ctx, "calendar cache read failed", "listing", listingID, "err", err)
		}
		return dto.Calendar{}, false
	}
	var calendar dto.Calendar
	if err := json.Unmarshal(raw, &calendar); err != nil {
		return dto.Calendar{}, false
	}
	return calendar, true
}

func (c *CalendarCache) Set(ctx context.Context, calendar dto.Calendar) {
	raw, err := json.Marshal(calendar)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, calendarKey(calendar.ListingID), raw, c.ttl).Err(); err != nil && c.log != nil {
		c.log.DebugContext(ctx, "calendar cache write failed", "listing", calendar.ListingID, "err", err)
	}
}

// Invalidate drops a listing's cached calendar after a reservation write.
func (c *CalendarCache) Invalidate(ctx context.Context, listingID string) {
	if err := c.client.Del(ctx, calendarKey(listingID)).Err(); err != nil && c.log != nil {
		c.log.DebugContext(ctx, "calendar cache invalidation failed", "listing", listingID, "err", err)
	}
}

func calendarKey(listingID string) string {
	return "calendar:" + listingID
}

var _ availabilityhandlers.CalendarCache = (*CalendarCache)(nil)
var _ bookinghandlers.CalendarInvalidator = (*CalendarCache)(nil)
