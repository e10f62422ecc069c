package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/guests"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	filter := bson.M{"_id": doc.ID, "version": listing.Version}
	doc.Version = listing.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	out, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if out.MatchedCount == 0 && out.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	listing.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if opts.OnlyPublished {
		filter["state"] = string(domainlistings.ListingPublished)
	}
	if opts.Host != "" {
		filter["host"] = string(opts.Host)
	}
	if opts.City != "" {
		filter["city_lc"] = opts.City
	}
	if opts.Country != "" {
		filter["country_lc"] = opts.Country
	}
	if opts.MinGuests > 0 {
		filter["guest_capacity"] = bson.M{"$gte": opts.MinGuests}
	}
	price := bson.M{}
	if opts.PriceMin > 0 {
		price["$gte"] = opts.PriceMin
	}
	if opts.PriceMax > 0 {
		price["$lte"] = opts.PriceMax
	}
	if len(price) > 0 {
		filter["night_price"] = price
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	// ranked sorts are scored in the application over the whole filtered set,
	// so skip/limit only apply to store-ordered sorts
	findOpts := options.Find().SetSort(searchSort(opts.Sort))
	if !opts.Sort.Ranked() {
		findOpts = findOpts.SetSkip(int64(opts.Offset)).SetLimit(int64(opts.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	result := domainlistings.SearchResult{Total: int(total)}
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		result.Items = append(result.Items, doc.toAggregate())
	}
	return result, cursor.Err()
}

func searchSort(sort domainlistings.CatalogSort) bson.D {
	switch sort {
	case domainlistings.SortByPriceAsc:
		return bson.D{{Key: "night_price", Value: 1}, {Key: "_id", Value: 1}}
	case domainlistings.SortByPriceDesc:
		return bson.D{{Key: "night_price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		// ranking sorts reorder in the application layer
		return bson.D{{Key: "_id", Value: 1}}
	}
}

type listingDocument struct {
	ID                string                    `bson:"_id"`
	Host              string                    `bson:"host"`
	Title             string                    `bson:"title"`
	Description       string                    `bson:"description"`
	City              string                    `bson:"city"`
	CityLC            string                    `bson:"city_lc"`
	Country           string                    `bson:"country"`
	CountryLC         string                    `bson:"country_lc"`
	State             string                    `bson:"state"`
	NightPrice        float64                   `bson:"night_price"`
	Promotions        []domainpricing.Promotion `bson:"promotions"`
	GuestCapacity     int                       `bson:"guest_capacity"`
	GuestLimits       map[string]limitDocument  `bson:"guest_limits"`
	MinCancelDays     int                       `bson:"min_cancel_days"`
	Photos            []string                  `bson:"photos"`
	FavoritesCount    int                       `bson:"favorites_count"`
	ReservationsCount int                       `bson:"reservations_count"`
	Rating            float64                   `bson:"rating"`
	ReviewCount       int                       `bson:"review_count"`
	CreatedAt         int64                     `bson:"created_at"`
	UpdatedAt         int64                     `bson:"updated_at"`
	Version           int64                     `bson:"version"`
}

type limitDocument struct {
	Min int `bson:"min"`
	Max int `bson:"max"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	limits := make(map[string]limitDocument, len(l.GuestLimits))
	for t, limit := range l.GuestLimits {
		limits[string(t)] = limitDocument{Min: limit.Min, Max: limit.Max}
	}
	return listingDocument{
		ID:                string(l.ID),
		Host:              string(l.Host),
		Title:             l.Title,
		Description:       l.Description,
		City:              l.City,
		CityLC:            strings.ToLower(l.City),
		Country:           l.Country,
		CountryLC:         strings.ToLower(l.Country),
		State:             string(l.State),
		NightPrice:        l.NightPrice,
		Promotions:        l.Promotions,
		GuestCapacity:     l.GuestCapacity,
		GuestLimits:       limits,
		MinCancelDays:     l.MinCancelDays,
		Photos:            l.Photos,
		FavoritesCount:    l.FavoritesCount,
		ReservationsCount: l.ReservationsCount,
		Rating:            l.Rating,
		ReviewCount:       l.ReviewCount,
		CreatedAt:         l.CreatedAt.UnixMilli(),
		UpdatedAt:         l.UpdatedAt.UnixMilli(),
		Version:           l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	limits := make(map[guests.Type]guests.Limit, len(d.GuestLimits))
	for t, limit := range d.GuestLimits {
		limits[guests.Type(t)] = guests.Limit{Min: limit.Min, Max: limit.Max}
	}
	return &domainlistings.Listing{
		ID:                domainlistings.ListingID(d.ID),
		Host:              domainlistings.HostID(d.Host),
		Title:             d.Title,
		Description:       d.Description,
		City:              d.City,
		Country:           d.Country,
		State:             domainlistings.ListingState(d.State),
		NightPrice:        d.NightPrice,
		Promotions:        d.Promotions,
		GuestCapacity:     d.GuestCapacity,
		GuestLimits:       limits,
		MinCancelDays:     d.MinCancelDays,
		Photos:            d.Photos,
		FavoritesCount:    d.FavoritesCount,
		ReservationsCount: d.ReservationsCount,
		Rating:            d.Rating,
		ReviewCount:       d.ReviewCount,
		CreatedAt:         timestampToTime(d.CreatedAt),
		UpdatedAt:         timestampToTime(d.UpdatedAt),
		Version:           d.Version,
	}
}
