package requestRepo

import (
	"context"
	"time"

	"marketplace/models"
)

// ServiceRequestRepository defines data access for service requests.
// Status transitions are conditional updates; a transition whose precondition
// no longer holds returns database.ErrConflict.
type ServiceRequestRepository interface {
	// Create inserts a new request.
	Create(ctx context.Context, req *models.ServiceRequest) error
	// GetByID returns database.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	// Find returns requests matching the filter, newest first.
	Find(ctx context.Context, filter models.RequestFilter) ([]models.ServiceRequest, error)
	// MarkInProgress moves an open request to in_progress and records the accepted proposal.
	MarkInProgress(ctx context.Context, id, proposalID string) error
	// Reopen undoes MarkInProgress for the given proposal.
	Reopen(ctx context.Context, id, proposalID string) error
	// MarkCompleted moves an open or in_progress request to completed and
	// returns the request as written.
	MarkCompleted(ctx context.Context, id string, at time.Time) (*models.ServiceRequest, error)
	// DeleteOpen removes the request only while it is open.
	DeleteOpen(ctx context.Context, id string) error
	// SetPaymentSession stores a checkout session for an unpaid request.
	SetPaymentSession(ctx context.Context, id, sessionID string) error
	// MarkPaidBySession flags the request owning sessionID as paid.
	MarkPaidBySession(ctx context.Context, sessionID string) (*models.ServiceRequest, error)
}
