package bookings

import (
	"context"
	"errors"
	"fmt"

	"marketplace/database"
	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) Book(ctx context.Context, p models.Principal, requestID string) (*models.RequestBooking, error) {
	if !p.IsSeller() {
		return nil, utils.Forbidden("only sellers can book service requests")
	}
	req, err := s.Repos.Requests.GetByID(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("service request not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load service request", err)
	}
	if req.Status != models.RequestOpen {
		return nil, utils.InvalidState("service request is not available for booking")
	}

	if _, err := s.Repos.Bookings.FindByRequestAndSeller(ctx, requestID, p.ID); err == nil {
		return nil, utils.Conflict("you have already booked this service request")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, utils.Internal("failed to check existing booking", err)
	}

	booking := &models.RequestBooking{
		ID:                 uuid.NewString(),
		RequestID:          req.ID,
		SellerID:           p.ID,
		SellerName:         p.Name,
		ClientID:           req.ClientID,
		RequestTitle:       req.Title,
		RequestDescription: req.Description,
		Category:           req.Category,
		Budget:             req.Budget,
		Deadline:           req.Deadline,
		Status:             models.BookingPending,
		BookedAt:           s.now(),
	}
	if err := s.Repos.Bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.Conflict("you have already booked this service request")
		}
		return nil, utils.Internal("failed to create booking", err)
	}
	s.Logger.Info("service request booked",
		zap.String("booking_id", booking.ID),
		zap.String("request_id", req.ID),
		zap.String("seller_id", p.ID),
	)

	seller := p.Name
	if seller == "" {
		seller = "A seller"
	}
	notification.Deliver(ctx, s.Sink, s.Logger, models.Notification{
		UserID:  req.ClientID,
		Type:    models.NotifyRequestBooked,
		Title:   "Service Request Booked",
		Message: fmt.Sprintf("%s booked your request '%s'", seller, req.Title),
		Link:    "/buyer-dashboard",
		Data:    map[string]string{"request_id": req.ID, "booking_id": booking.ID, "seller_id": p.ID},
	})
	return booking, nil
}

// ListMine returns the seller's bookings, newest first.
func (s *DefaultBookingService) ListMine(ctx context.Context, p models.Principal) ([]models.RequestBooking, error) {
	if !p.IsSeller() {
		return nil, utils.Forbidden("only sellers have bookings")
	}
	found, err := s.Repos.Bookings.ListBySeller(ctx, p.ID)
	if err != nil {
		return nil, utils.Internal("failed to list bookings", err)
	}
	return found, nil
}

// ListForRequest shows the request owner which sellers booked it.
func (s *DefaultBookingService) ListForRequest(ctx context.Context, p models.Principal, requestID string) ([]models.RequestBooking, error) {
	req, err := s.Repos.Requests.GetByID(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("service request not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load service request", err)
	}
	if req.ClientID != p.ID {
		return nil, utils.Forbidden("only the request owner can view its bookings")
	}
	found, err := s.Repos.Bookings.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, utils.Internal("failed to list bookings", err)
	}
	return found, nil
}
