package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"marketplace/database"
	"marketplace/models"
)

// RequestBookingRepo is an in-process RequestBookingRepository.
type RequestBookingRepo struct {
	mu    sync.RWMutex
	items []models.RequestBooking
}

func NewRequestBookingRepo() *RequestBookingRepo {
	return &RequestBookingRepo{}
}

func (r *RequestBookingRepo) Create(_ context.Context, b *models.RequestBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.ID == b.ID || (existing.RequestID == b.RequestID && existing.SellerID == b.SellerID) {
			return fmt.Errorf("booking for %s by %s: %w", b.RequestID, b.SellerID, database.ErrDuplicate)
		}
	}
	b.Normalize()
	r.items = append(r.items, *b)
	return nil
}

func (r *RequestBookingRepo) FindByRequestAndSeller(_ context.Context, requestID, sellerID string) (*models.RequestBooking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.items {
		if b.RequestID == requestID && b.SellerID == sellerID {
			cp := b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("booking for %s by %s: %w", requestID, sellerID, database.ErrNotFound)
}

func (r *RequestBookingRepo) ListBySeller(_ context.Context, sellerID string) ([]models.RequestBooking, error) {
	out := r.collect(func(b models.RequestBooking) bool { return b.SellerID == sellerID })
	reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out, nil
}

func (r *RequestBookingRepo) ListByRequest(_ context.Context, requestID string) ([]models.RequestBooking, error) {
	out := r.collect(func(b models.RequestBooking) bool { return b.RequestID == requestID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookedAt.Before(out[j].BookedAt) })
	return out, nil
}

func (r *RequestBookingRepo) collect(keep func(models.RequestBooking) bool) []models.RequestBooking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.RequestBooking{}
	for _, b := range r.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
