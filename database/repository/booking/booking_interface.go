package bookingRepo

import (
	"context"

	"marketplace/models"
)

// RequestBookingRepository defines data access for the request booking track.
type RequestBookingRepository interface {
	// Create returns database.ErrDuplicate when the seller already booked the request.
	Create(ctx context.Context, b *models.RequestBooking) error
	// FindByRequestAndSeller returns database.ErrNotFound when no booking exists.
	FindByRequestAndSeller(ctx context.Context, requestID, sellerID string) (*models.RequestBooking, error)
	// ListBySeller returns bookings newest first.
	ListBySeller(ctx context.Context, sellerID string) ([]models.RequestBooking, error)
	// ListByRequest returns bookings oldest first.
	ListByRequest(ctx context.Context, requestID string) ([]models.RequestBooking, error)
}
