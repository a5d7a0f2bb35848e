package proposalRepo

import (
	"context"
	"fmt"
	"time"

	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the lookup indexes and the uniqueness guarantees
// behind duplicate and double-accept detection.
func (r *MongoProposalRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Partial unique: at most one accepted proposal per request.
	oneAccepted := options.Index().
		SetUnique(true).
		SetPartialFilterExpression(bson.M{"status": models.ProposalAccepted}).
		SetName("one_accepted_per_request")

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "service_request_id", Value: 1}, {Key: "freelancer_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "service_request_id", Value: 1}}, Options: oneAccepted},
		{Keys: bson.D{{Key: "freelancer_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create proposal indexes: %w", err)
	}
	return nil
}
