package freelancerRepo

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

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

// MongoFreelancerRepo implements FreelancerRepository using MongoDB.
type MongoFreelancerRepo struct {
	coll *mongo.Collection
}

// NewMongoFreelancerRepo uses the "freelancer_profiles" collection of db.
func NewMongoFreelancerRepo(db *mongo.Database) (FreelancerRepository, error) {
	r := &MongoFreelancerRepo{coll: db.Collection("freelancer_profiles")}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoFreelancerRepo) GetByUserID(ctx context.Context, userID string) (*models.FreelancerProfile, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var p models.FreelancerProfile
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", userID, database.MapMongoError(err))
	}
	p.Normalize()
	return &p, nil
}

func (r *MongoFreelancerRepo) Create(ctx context.Context, p *models.FreelancerProfile) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	p.Normalize()
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", database.MapMongoError(err))
	}
	return nil
}

func (r *MongoFreelancerRepo) UpdateProfileFields(ctx context.Context, userID string, in models.FreelancerProfileInput) (*models.FreelancerProfile, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"title":            in.Title,
		"bio":              in.Bio,
		"skills":           in.Skills,
		"categories":       in.Categories,
		"experience_years": in.ExperienceYears,
		"hourly_rate":      in.HourlyRate,
		"portfolio_url":    in.PortfolioURL,
		"portfolio":        in.Portfolio,
		"education":        in.Education,
		"certifications":   in.Certifications,
		"languages":        in.Languages,
		"location":         in.Location,
		"website":          in.Website,
		"availability":     in.Availability,
		"updated_at":       time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.FreelancerProfile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile for %s: %w", userID, database.MapMongoError(err))
	}
	p.Normalize()
	return &p, nil
}

func (r *MongoFreelancerRepo) Find(ctx context.Context, f models.FreelancerFilter) ([]models.FreelancerProfile, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.Category != "" {
		filter["categories"] = f.Category
	}
	if len(f.Skills) > 0 {
		filter["skills"] = bson.M{"$in": f.Skills}
	}
	rate := bson.M{}
	if f.MinRate > 0 {
		rate["$gte"] = f.MinRate
	}
	if f.MaxRate > 0 {
		rate["$lte"] = f.MaxRate
	}
	if len(rate) > 0 {
		filter["hourly_rate"] = rate
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "user_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []models.FreelancerProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	for i := range profiles {
		profiles[i].Normalize()
	}
	return profiles, nil
}

func (r *MongoFreelancerRepo) ForEach(ctx context.Context, fn func(*models.FreelancerProfile) error) error {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetBatchSize(200))
	if err != nil {
		return fmt.Errorf("failed to scan profiles: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.FreelancerProfile
		if err := cursor.Decode(&p); err != nil {
			return fmt.Errorf("failed to decode profile: %w", err)
		}
		p.Normalize()
		if err := fn(&p); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *MongoFreelancerRepo) Delete(ctx context.Context, userID string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete profile for %s: %w", userID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("profile for %s: %w", userID, database.ErrNotFound)
	}
	return nil
}

func (r *MongoFreelancerRepo) IncrementStats(ctx context.Context, userID string, delta models.StatsDelta) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$inc": bson.M{
		"completed_projects": delta.CompletedProjects,
		"total_jobs":         delta.TotalJobs,
		"total_earnings":     delta.TotalEarnings,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update stats for %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for %s: %w", userID, database.ErrNotFound)
	}
	return nil
}

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoFreelancerRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
		{Keys: bson.D{{Key: "skills", Value: 1}}},
		{Keys: bson.D{{Key: "hourly_rate", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}
	return nil
}
