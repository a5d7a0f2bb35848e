package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketplace/database"
	"marketplace/models"
)

// ServiceRequestRepo is an in-process ServiceRequestRepository. Every
// mutation happens under one lock, so the conditional transitions behave
// like single-document atomic updates.
type ServiceRequestRepo struct {
	mu    sync.RWMutex
	items map[string]*models.ServiceRequest
	order []string
}

func NewServiceRequestRepo() *ServiceRequestRepo {
	return &ServiceRequestRepo{items: map[string]*models.ServiceRequest{}}
}

func (r *ServiceRequestRepo) Create(_ context.Context, req *models.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[req.ID]; ok {
		return fmt.Errorf("service request %s: %w", req.ID, database.ErrDuplicate)
	}
	req.Normalize()
	cp := cloneRequest(req)
	r.items[req.ID] = cp
	r.order = append(r.order, req.ID)
	return nil
}

func (r *ServiceRequestRepo) GetByID(_ context.Context, id string) (*models.ServiceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("service request %s: %w", id, database.ErrNotFound)
	}
	return cloneRequest(req), nil
}

func (r *ServiceRequestRepo) Find(_ context.Context, f models.RequestFilter) ([]models.ServiceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.ServiceRequest{}
	for i := len(r.order) - 1; i >= 0; i-- {
		req, ok := r.items[r.order[i]]
		if !ok || !matchesRequest(req, f) {
			continue
		}
		out = append(out, *cloneRequest(req))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ServiceRequestRepo) MarkInProgress(_ context.Context, id, proposalID string) error {
	return r.transition(id, func(req *models.ServiceRequest) bool {
		if req.Status != models.RequestOpen {
			return false
		}
		req.Status = models.RequestInProgress
		req.AcceptedProposalID = proposalID
		return true
	})
}

func (r *ServiceRequestRepo) Reopen(_ context.Context, id, proposalID string) error {
	return r.transition(id, func(req *models.ServiceRequest) bool {
		if req.Status != models.RequestInProgress || req.AcceptedProposalID != proposalID {
			return false
		}
		req.Status = models.RequestOpen
		req.AcceptedProposalID = ""
		return true
	})
}

func (r *ServiceRequestRepo) MarkCompleted(_ context.Context, id string, at time.Time) (*models.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.items[id]
	if !ok || (req.Status != models.RequestOpen && req.Status != models.RequestInProgress) {
		return nil, fmt.Errorf("service request %s: %w", id, database.ErrConflict)
	}
	req.Status = models.RequestCompleted
	req.CompletedAt = &at
	return cloneRequest(req), nil
}

func (r *ServiceRequestRepo) DeleteOpen(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.items[id]
	if !ok || req.Status != models.RequestOpen {
		return fmt.Errorf("service request %s is not open: %w", id, database.ErrConflict)
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ServiceRequestRepo) SetPaymentSession(_ context.Context, id, sessionID string) error {
	return r.transition(id, func(req *models.ServiceRequest) bool {
		if req.PaymentStatus == models.PaymentPaid {
			return false
		}
		req.StripeSessionID = sessionID
		req.PaymentStatus = models.PaymentPending
		return true
	})
}

func (r *ServiceRequestRepo) MarkPaidBySession(_ context.Context, sessionID string) (*models.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.items {
		if sessionID != "" && req.StripeSessionID == sessionID {
			req.PaymentStatus = models.PaymentPaid
			return cloneRequest(req), nil
		}
	}
	return nil, fmt.Errorf("session %s: %w", sessionID, database.ErrNotFound)
}

func (r *ServiceRequestRepo) transition(id string, apply func(*models.ServiceRequest) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.items[id]
	if !ok || !apply(req) {
		return fmt.Errorf("service request %s: %w", id, database.ErrConflict)
	}
	return nil
}

func matchesRequest(req *models.ServiceRequest, f models.RequestFilter) bool {
	switch {
	case f.ClientID != "" && req.ClientID != f.ClientID:
		return false
	case f.Status != "" && req.Status != f.Status:
		return false
	case f.Category != "" && req.Category != f.Category:
		return false
	case f.ExperienceLevel != "" && req.ExperienceLevel != f.ExperienceLevel:
		return false
	case f.MinBudget > 0 && req.Budget < f.MinBudget:
		return false
	case f.MaxBudget > 0 && req.Budget > f.MaxBudget:
		return false
	}
	return true
}

func cloneRequest(req *models.ServiceRequest) *models.ServiceRequest {
	cp := *req
	cp.SkillsRequired = append([]string(nil), req.SkillsRequired...)
	if req.CompletedAt != nil {
		at := *req.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}
