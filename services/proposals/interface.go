package proposals

import (
	"context"
	"fmt"
	"time"

	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/services/matching"
	"marketplace/services/notification"

	"go.uber.org/zap"
)

// ProposalService manages freelancer bids on service requests.
type ProposalService interface {
	Submit(ctx context.Context, p models.Principal, requestID string, in models.ProposalInput) (*models.Proposal, error)
	List(ctx context.Context, p models.Principal, requestID string) ([]models.ProposalView, error)
	Accept(ctx context.Context, p models.Principal, requestID, proposalID string) (*models.Proposal, error)
	Reject(ctx context.Context, p models.Principal, requestID, proposalID string) (*models.Proposal, error)
	ListMine(ctx context.Context, p models.Principal) ([]models.MyProposalView, error)
}

type DefaultProposalService struct {
	Repos  *repository.Repositories
	Scorer matching.Scorer
	Sink   notification.Sink
	Logger *zap.Logger

	now func() time.Time
}

func NewDefaultProposalService(
	repos *repository.Repositories,
	scorer matching.Scorer,
	sink notification.Sink,
	logger *zap.Logger,
) (*DefaultProposalService, error) {
	if repos == nil || scorer == nil || sink == nil || logger == nil {
		return nil, fmt.Errorf("proposal service initialization error: one or more dependencies are nil")
	}
	return &DefaultProposalService{
		Repos:  repos,
		Scorer: scorer,
		Sink:   sink,
		Logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}
