package requests

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

// RequestService owns the service-request lifecycle: open, in_progress,
// completed, or deleted while open.
type RequestService interface {
	Create(ctx context.Context, p models.Principal, in models.ServiceRequestInput) (*models.ServiceRequest, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.ServiceRequestView, error)
	Browse(ctx context.Context, p models.Principal, q BrowseQuery) ([]models.ServiceRequestView, error)
	Complete(ctx context.Context, p models.Principal, id string) (*models.ServiceRequest, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// BrowseQuery filters the request listing. Status applies to buyers only;
// sellers always browse open requests.
type BrowseQuery struct {
	Status          string
	Category        string
	ExperienceLevel string
	MinBudget       float64
	MaxBudget       float64
	Limit           int
}

// DefaultRequestService is the production implementation.
type DefaultRequestService struct {
	Repos      *repository.Repositories
	Scorer     matching.Scorer
	Sink       notification.Sink
	Dispatcher notification.MatchDispatcher
	Logger     *zap.Logger

	now func() time.Time
}

func NewDefaultRequestService(
	repos *repository.Repositories,
	scorer matching.Scorer,
	sink notification.Sink,
	dispatcher notification.MatchDispatcher,
	logger *zap.Logger,
) (*DefaultRequestService, error) {
	if repos == nil || scorer == nil || sink == nil || dispatcher == nil || logger == nil {
		return nil, fmt.Errorf("request service initialization error: one or more dependencies are nil")
	}
	return &DefaultRequestService{
		Repos:      repos,
		Scorer:     scorer,
		Sink:       sink,
		Dispatcher: dispatcher,
		Logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}
