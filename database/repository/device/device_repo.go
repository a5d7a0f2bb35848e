package deviceRepo

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

// DeviceRepository keeps the latest push token per user.
type DeviceRepository interface {
	SetFCMToken(ctx context.Context, userID, token string) error
	// GetFCMToken returns database.ErrNotFound when the user has no device.
	GetFCMToken(ctx context.Context, userID string) (string, error)
}

type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo uses the "devices" collection of db.
func NewMongoDeviceRepo(db *mongo.Database) (DeviceRepository, error) {
	r := &MongoDeviceRepo{coll: db.Collection("devices")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create device indexes: %w", err)
	}
	return r, nil
}

func (r *MongoDeviceRepo) SetFCMToken(ctx context.Context, userID, token string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": models.DeviceToken{UserID: userID, FCMToken: token, UpdatedAt: time.Now().UTC()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store fcm token for %s: %w", userID, err)
	}
	return nil
}

func (r *MongoDeviceRepo) GetFCMToken(ctx context.Context, userID string) (string, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var d models.DeviceToken
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d); err != nil {
		return "", fmt.Errorf("failed to fetch device for %s: %w", userID, database.MapMongoError(err))
	}
	if d.FCMToken == "" {
		return "", database.ErrNotFound
	}
	return d.FCMToken, nil
}
