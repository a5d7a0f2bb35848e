package requestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/database"
	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultFindLimit = 100

// MongoServiceRequestRepo implements ServiceRequestRepository using MongoDB.
type MongoServiceRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRequestRepo uses the "service_requests" collection of db.
func NewMongoServiceRequestRepo(db *mongo.Database) (ServiceRequestRepository, error) {
	r := &MongoServiceRequestRepo{coll: db.Collection("service_requests")}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoServiceRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	req.Normalize()
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create service request: %w", database.MapMongoError(err))
	}
	return nil
}

func (r *MongoServiceRequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to fetch service request %s: %w", id, database.MapMongoError(err))
	}
	req.Normalize()
	return &req, nil
}

func (r *MongoServiceRequestRepo) Find(ctx context.Context, f models.RequestFilter) ([]models.ServiceRequest, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.ExperienceLevel != "" {
		filter["experience_level"] = f.ExperienceLevel
	}
	budget := bson.M{}
	if f.MinBudget > 0 {
		budget["$gte"] = f.MinBudget
	}
	if f.MaxBudget > 0 {
		budget["$lte"] = f.MaxBudget
	}
	if len(budget) > 0 {
		filter["budget"] = budget
	}

	limit := f.Limit
	if limit <= 0 || limit > defaultFindLimit {
		limit = defaultFindLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query service requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.ServiceRequest{}
	for cursor.Next(ctx) {
		var req models.ServiceRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, fmt.Errorf("failed to decode service request: %w", err)
		}
		req.Normalize()
		requests = append(requests, req)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("service request cursor error: %w", err)
	}
	return requests, nil
}

func (r *MongoServiceRequestRepo) MarkInProgress(ctx context.Context, id, proposalID string) error {
	filter := bson.M{"id": id, "status": models.RequestOpen}
	update := bson.M{"$set": bson.M{
		"status":               models.RequestInProgress,
		"accepted_proposal_id": proposalID,
	}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *MongoServiceRequestRepo) Reopen(ctx context.Context, id, proposalID string) error {
	filter := bson.M{
		"id":                   id,
		"status":               models.RequestInProgress,
		"accepted_proposal_id": proposalID,
	}
	update := bson.M{
		"$set":   bson.M{"status": models.RequestOpen},
		"$unset": bson.M{"accepted_proposal_id": ""},
	}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *MongoServiceRequestRepo) MarkCompleted(ctx context.Context, id string, at time.Time) (*models.ServiceRequest, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": bson.A{models.RequestOpen, models.RequestInProgress}},
	}
	update := bson.M{"$set": bson.M{
		"status":       models.RequestCompleted,
		"completed_at": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.ServiceRequest
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("service request %s: %w", id, database.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete service request %s: %w", id, database.MapMongoError(err))
	}
	req.Normalize()
	return &req, nil
}

func (r *MongoServiceRequestRepo) DeleteOpen(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "status": models.RequestOpen})
	if err != nil {
		return fmt.Errorf("failed to delete service request %s: %w", id, database.MapMongoError(err))
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("service request %s is not open: %w", id, database.ErrConflict)
	}
	return nil
}

func (r *MongoServiceRequestRepo) SetPaymentSession(ctx context.Context, id, sessionID string) error {
	filter := bson.M{"id": id, "payment_status": bson.M{"$ne": models.PaymentPaid}}
	update := bson.M{"$set": bson.M{
		"stripe_session_id": sessionID,
		"payment_status":    models.PaymentPending,
	}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *MongoServiceRequestRepo) MarkPaidBySession(ctx context.Context, sessionID string) (*models.ServiceRequest, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.ServiceRequest
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"stripe_session_id": sessionID},
		bson.M{"$set": bson.M{"payment_status": models.PaymentPaid}},
		opts,
	).Decode(&req)
	if err != nil {
		return nil, fmt.Errorf("failed to mark session %s paid: %w", sessionID, database.MapMongoError(err))
	}
	req.Normalize()
	return &req, nil
}

func (r *MongoServiceRequestRepo) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update service request %s: %w", id, database.MapMongoError(err))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("service request %s: %w", id, database.ErrConflict)
	}
	return nil
}
