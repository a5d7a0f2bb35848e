package models

import "time"

// Request booking statuses.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

// RequestBooking is a seller's non-exclusive claim on an open service request.
// Request fields are copied at booking time.
type RequestBooking struct {
	ID                 string     `bson:"id" json:"id"`
	RequestID          string     `bson:"request_id" json:"request_id"`
	SellerID           string     `bson:"seller_id" json:"seller_id"`
	SellerName         string     `bson:"seller_name" json:"seller_name"`
	ClientID           string     `bson:"client_id" json:"client_id"`
	RequestTitle       string     `bson:"request_title" json:"request_title"`
	RequestDescription string     `bson:"request_description" json:"request_description"`
	Category           string     `bson:"category" json:"category"`
	Budget             float64    `bson:"budget" json:"budget"`
	Deadline           time.Time  `bson:"deadline" json:"deadline"`
	Status             string     `bson:"status" json:"status"`
	BookedAt           time.Time  `bson:"booked_at" json:"booked_at"`
	CompletedAt        *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

func (b *RequestBooking) Normalize() {
	if b.Status == "" {
		b.Status = BookingPending
	}
}
