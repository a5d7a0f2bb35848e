package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"marketplace/database"
	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRequestBookingRepo implements RequestBookingRepository using MongoDB.
type MongoRequestBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestBookingRepo uses the "service_request_bookings" collection of db.
func NewMongoRequestBookingRepo(db *mongo.Database) (RequestBookingRepository, error) {
	r := &MongoRequestBookingRepo{coll: db.Collection("service_request_bookings")}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoRequestBookingRepo) Create(ctx context.Context, b *models.RequestBooking) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	b.Normalize()
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to create booking: %w", database.MapMongoError(err))
	}
	return nil
}

func (r *MongoRequestBookingRepo) FindByRequestAndSeller(ctx context.Context, requestID, sellerID string) (*models.RequestBooking, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var b models.RequestBooking
	filter := bson.M{"request_id": requestID, "seller_id": sellerID}
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", database.MapMongoError(err))
	}
	b.Normalize()
	return &b, nil
}

func (r *MongoRequestBookingRepo) ListBySeller(ctx context.Context, sellerID string) ([]models.RequestBooking, error) {
	return r.find(ctx, bson.M{"seller_id": sellerID}, -1)
}

func (r *MongoRequestBookingRepo) ListByRequest(ctx context.Context, requestID string) ([]models.RequestBooking, error) {
	return r.find(ctx, bson.M{"request_id": requestID}, 1)
}

func (r *MongoRequestBookingRepo) find(ctx context.Context, filter bson.M, order int) ([]models.RequestBooking, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "booked_at", Value: order}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.RequestBooking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	for i := range bookings {
		bookings[i].Normalize()
	}
	return bookings, nil
}

// ensureIndexes backs the one-booking-per-seller rule with a unique index.
func (r *MongoRequestBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}, {Key: "seller_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "booked_at", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
