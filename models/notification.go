package models

import "time"

// Notification types emitted by the request lifecycle.
const (
	NotifyNewOpportunity   = "new_opportunity"
	NotifyNewProposal      = "new_proposal"
	NotifyProposalAccepted = "proposal_accepted"
	NotifyProposalRejected = "proposal_rejected"
	NotifyProjectCompleted = "project_completed"
	NotifyRequestBooked    = "service_request_booked"
	NotifyPaymentReceived  = "payment_received"
)

type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"user_id" json:"user_id"`
	Type      string            `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Message   string            `bson:"message" json:"message"`
	Link      string            `bson:"link,omitempty" json:"link,omitempty"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}
