package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	domainreservation "staynest/internal/domain/reservation"
	domainrange "staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/guests"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("agg_reservation")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "range.check_out", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReservationRepository{col: col}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrReservationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
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
	res.Version = doc.Version
	return nil
}

// ActiveForListing filters on the broad date/status predicate in the query and
// leaves the authoritative effective-status decision to the domain.
func (r *ReservationRepository) ActiveForListing(ctx context.Context, listingID domainlistings.ListingID, now time.Time) ([]*domainreservation.Reservation, error) {
	filter := bson.M{
		"listing_id":      string(listingID),
		"status":          bson.M{"$nin": []string{string(domainreservation.StatusCanceled), string(domainreservation.StatusCanceledByHost)}},
		"range.check_out": bson.M{"$gt": now.UnixMilli()},
	}
	return r.find(ctx, filter, now, true)
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, userID string) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"user_id": userID}, time.Time{}, false)
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M, now time.Time, onlyUpcoming bool) ([]*domainreservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainreservation.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		res := doc.toAggregate()
		if onlyUpcoming && res.EffectiveStatusAt(now) != domainreservation.StatusUpcoming {
			continue
		}
		out = append(out, res)
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID         string                  `bson:"_id"`
	ListingID  string                  `bson:"listing_id"`
	UserID     string                  `bson:"user_id"`
	Range      rangeDocument           `bson:"range"`
	Guests     map[string]int          `bson:"guests"`
	Status     string                  `bson:"status"`
	Price      domainpricing.Breakdown `bson:"price"`
	CreatedAt  int64                   `bson:"created_at"`
	CanceledAt *int64                  `bson:"canceled_at,omitempty"`
	Version    int64                   `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:        string(res.ID),
		ListingID: string(res.ListingID),
		UserID:    res.UserID,
		Range:     rangeDocument{CheckIn: res.Range.CheckIn.UnixMilli(), CheckOut: res.Range.CheckOut.UnixMilli()},
		Guests:    map[string]int{},
		Status:    string(res.Status),
		Price:     res.Price,
		CreatedAt: res.CreatedAt.UnixMilli(),
		Version:   res.Version,
	}
	for t, n := range res.Guests {
		doc.Guests[string(t)] = n
	}
	if res.CanceledAt != nil {
		ms := res.CanceledAt.UnixMilli()
		doc.CanceledAt = &ms
	}
	return doc
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	counts := make(guests.Counts, len(d.Guests))
	for t, n := range d.Guests {
		counts[guests.Type(t)] = n
	}
	res := &domainreservation.Reservation{
		ID:        domainreservation.ReservationID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		UserID:    d.UserID,
		Range:     domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:    counts,
		Status:    domainreservation.Status(d.Status),
		Price:     d.Price,
		CreatedAt: timestampToTime(d.CreatedAt),
		Version:   d.Version,
	}
	if d.CanceledAt != nil {
		t := timestampToTime(*d.CanceledAt)
		res.CanceledAt = &t
	}
	return res
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
