package bookings

import (
	"context"
	"fmt"
	"time"

	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/services/notification"

	"go.uber.org/zap"
)

// BookingService is the non-exclusive booking track. Any number of sellers
// can book an open request; booking never changes the request's status.
type BookingService interface {
	Book(ctx context.Context, p models.Principal, requestID string) (*models.RequestBooking, error)
	ListMine(ctx context.Context, p models.Principal) ([]models.RequestBooking, error)
	ListForRequest(ctx context.Context, p models.Principal, requestID string) ([]models.RequestBooking, error)
}

type DefaultBookingService struct {
	Repos  *repository.Repositories
	Sink   notification.Sink
	Logger *zap.Logger

	now func() time.Time
}

func NewDefaultBookingService(repos *repository.Repositories, sink notification.Sink, logger *zap.Logger) (*DefaultBookingService, error) {
	if repos == nil || sink == nil || logger == nil {
		return nil, fmt.Errorf("booking service initialization error: one or more dependencies are nil")
	}
	return &DefaultBookingService{
		Repos:  repos,
		Sink:   sink,
		Logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}
