package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/events"
	"staynest/internal/domain/shared/guests"
)

var (
	ErrListingNotFound = errors.New("listings: not found")
	ErrNotBookable     = errors.New("listings: listing is not published")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrHostRequired    = errors.New("listings: host is required")
	ErrGuestCapacity   = errors.New("listings: guest capacity must be at least 1")
	ErrNightPrice      = errors.New("listings: night price must be non-negative")
	ErrCancelDays      = errors.New("listings: min cancel days must be non-negative")
	ErrGuestLimits     = errors.New("listings: guest limit min must be <= max")
	ErrInvalidState    = errors.New("listings: invalid state transition")
)

type ListingID string
type HostID string

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingPublished ListingState = "PUBLISHED"
	ListingSuspended ListingState = "SUSPENDED"
)

type Listing struct {
	ID            ListingID
	Host          HostID
	Title         string
	Description   string
	City          string
	Country       string
	State         ListingState
	NightPrice    float64
	Promotions    []pricing.Promotion
	GuestCapacity int
	GuestLimits   map[guests.Type]guests.Limit
	MinCancelDays int
	Photos        []string

	// Aggregate counters maintained by the surrounding application; read-only
	// snapshot inputs for discovery ranking.
	FavoritesCount    int
	ReservationsCount int
	Rating            float64
	ReviewCount       int

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

// Bookable reports whether new reservations may target this listing.
func (l *Listing) Bookable() bool {
	return l.State == ListingPublished
}

// LimitFor returns the configured bounds for a guest type. Types without an
// explicit limit accept any non-negative count up to the structural capacity.
func (l *Listing) LimitFor(t guests.Type) guests.Limit {
	if limit, ok := l.GuestLimits[t]; ok {
		return limit
	}
	return guests.Limit{Min: 0, Max: l.GuestCapacity}
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID            ListingID
	Host          HostID
	Title         string
	Description   string
	City          string
	Country       string
	NightPrice    float64
	Promotions    []pricing.Promotion
	GuestCapacity int
	GuestLimits   map[guests.Type]guests.Limit
	MinCancelDays int
	Photos        []string
	Now           time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.GuestCapacity < 1 {
		return nil, ErrGuestCapacity
	}
	if params.NightPrice < 0 {
		return nil, ErrNightPrice
	}
	if params.MinCancelDays < 0 {
		return nil, ErrCancelDays
	}
	limits := make(map[guests.Type]guests.Limit, len(params.GuestLimits))
	for t, limit := range params.GuestLimits {
		if limit.Min > limit.Max || limit.Min < 0 {
			return nil, ErrGuestLimits
		}
		limits[t] = limit
	}
	now := params.Now.UTC()
	listing := &Listing{
		ID:            params.ID,
		Host:          params.Host,
		Title:         strings.TrimSpace(params.Title),
		Description:   strings.TrimSpace(params.Description),
		City:          strings.TrimSpace(params.City),
		Country:       strings.TrimSpace(params.Country),
		State:         ListingDraft,
		NightPrice:    params.NightPrice,
		Promotions:    append([]pricing.Promotion(nil), params.Promotions...),
		GuestCapacity: params.GuestCapacity,
		GuestLimits:   limits,
		MinCancelDays: params.MinCancelDays,
		Photos:        append([]string(nil), params.Photos...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, HostID: listing.Host, At: now})
	return listing, nil
}

func (l *Listing) Publish(now time.Time) error {
	if l.State == ListingPublished {
		return nil
	}
	if l.GuestCapacity < 1 {
		return ErrGuestCapacity
	}
	l.State = ListingPublished
	l.UpdatedAt = now.UTC()
	l.Record(ListingPublishedEvent{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Unpublish(now time.Time) error {
	if l.State != ListingPublished {
		return ErrInvalidState
	}
	l.State = ListingDraft
	l.UpdatedAt = now.UTC()
	l.Record(ListingUnpublishedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Suspend(now time.Time, reason string) error {
	if l.State != ListingPublished {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

// SetNightPrice updates the current rate. Existing reservations keep the
// breakdown they were created with.
func (l *Listing) SetNightPrice(price float64, now time.Time) error {
	if price < 0 {
		return ErrNightPrice
	}
	l.NightPrice = price
	l.UpdatedAt = now.UTC()
	return nil
}

// SetPromotions replaces the promotion tiers.
func (l *Listing) SetPromotions(promos []pricing.Promotion, now time.Time) {
	l.Promotions = append([]pricing.Promotion(nil), promos...)
	l.UpdatedAt = now.UTC()
}
