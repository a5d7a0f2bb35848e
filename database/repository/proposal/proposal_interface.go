package proposalRepo

import (
	"context"

	"marketplace/models"
)

// ProposalRepository defines data access for proposals.
type ProposalRepository interface {
	// Create inserts a proposal. A second proposal from the same freelancer
	// on the same request returns database.ErrDuplicate.
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	// FindByRequestAndFreelancer returns database.ErrNotFound when the freelancer has not proposed.
	FindByRequestAndFreelancer(ctx context.Context, requestID, freelancerID string) (*models.Proposal, error)
	// ListByRequest returns proposals oldest first.
	ListByRequest(ctx context.Context, requestID string) ([]models.Proposal, error)
	// ListByFreelancer returns proposals newest first.
	ListByFreelancer(ctx context.Context, freelancerID string) ([]models.Proposal, error)
	CountByRequest(ctx context.Context, requestID string) (int, error)
	// UpdateStatus moves a proposal from one status to another, or returns database.ErrConflict.
	UpdateStatus(ctx context.Context, id, from, to string) error
	// RejectOthers rejects every pending proposal of the request except keepID.
	RejectOthers(ctx context.Context, requestID, keepID string) (int, error)
	DeleteByRequest(ctx context.Context, requestID string) (int, error)
	// Delete removes one proposal; a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
