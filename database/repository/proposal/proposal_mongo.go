package proposalRepo

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

// MongoProposalRepo implements ProposalRepository using MongoDB.
type MongoProposalRepo struct {
	coll *mongo.Collection
}

// NewMongoProposalRepo uses the "proposals" collection of db.
func NewMongoProposalRepo(db *mongo.Database) (ProposalRepository, error) {
	r := &MongoProposalRepo{coll: db.Collection("proposals")}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	p.Normalize()
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create proposal: %w", database.MapMongoError(err))
	}
	return nil
}

func (r *MongoProposalRepo) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoProposalRepo) FindByRequestAndFreelancer(ctx context.Context, requestID, freelancerID string) (*models.Proposal, error) {
	return r.findOne(ctx, bson.M{"service_request_id": requestID, "freelancer_id": freelancerID})
}

func (r *MongoProposalRepo) ListByRequest(ctx context.Context, requestID string) ([]models.Proposal, error) {
	return r.find(ctx, bson.M{"service_request_id": requestID}, 1)
}

func (r *MongoProposalRepo) ListByFreelancer(ctx context.Context, freelancerID string) ([]models.Proposal, error) {
	return r.find(ctx, bson.M{"freelancer_id": freelancerID}, -1)
}

func (r *MongoProposalRepo) CountByRequest(ctx context.Context, requestID string) (int, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"service_request_id": requestID})
	if err != nil {
		return 0, fmt.Errorf("failed to count proposals for %s: %w", requestID, err)
	}
	return int(n), nil
}

func (r *MongoProposalRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "decided_at": time.Now().UTC()}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("proposal %s: another proposal already accepted: %w", id, database.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update proposal %s: %w", id, database.MapMongoError(err))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("proposal %s is not %s: %w", id, from, database.ErrConflict)
	}
	return nil
}

func (r *MongoProposalRepo) RejectOthers(ctx context.Context, requestID, keepID string) (int, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"service_request_id": requestID,
		"id":                 bson.M{"$ne": keepID},
		"status":             models.ProposalPending,
	}
	update := bson.M{"$set": bson.M{"status": models.ProposalRejected, "decided_at": time.Now().UTC()}}
	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reject sibling proposals of %s: %w", requestID, database.MapMongoError(err))
	}
	return int(result.ModifiedCount), nil
}

func (r *MongoProposalRepo) DeleteByRequest(ctx context.Context, requestID string) (int, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"service_request_id": requestID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete proposals of %s: %w", requestID, database.MapMongoError(err))
	}
	return int(result.DeletedCount), nil
}

func (r *MongoProposalRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete proposal %s: %w", id, err)
	}
	return nil
}

func (r *MongoProposalRepo) findOne(ctx context.Context, filter bson.M) (*models.Proposal, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var p models.Proposal
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to fetch proposal: %w", database.MapMongoError(err))
	}
	p.Normalize()
	return &p, nil
}

func (r *MongoProposalRepo) find(ctx context.Context, filter bson.M, order int) ([]models.Proposal, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer cursor.Close(ctx)

	proposals := []models.Proposal{}
	for cursor.Next(ctx) {
		var p models.Proposal
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode proposal: %w", err)
		}
		p.Normalize()
		proposals = append(proposals, p)
	}
	return proposals, cursor.Err()
}
