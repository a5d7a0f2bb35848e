package models

import "time"

// DeviceToken links a user to the FCM token of their latest device.
type DeviceToken struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	FCMToken  string    `bson:"fcm_token" json:"fcm_token"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
