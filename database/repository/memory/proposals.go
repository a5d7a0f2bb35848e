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

// ProposalRepo is an in-process ProposalRepository enforcing the same
// uniqueness rules as the Mongo indexes.
type ProposalRepo struct {
	mu    sync.RWMutex
	items map[string]*models.Proposal
	order []string
}

func NewProposalRepo() *ProposalRepo {
	return &ProposalRepo{items: map[string]*models.Proposal{}}
}

func (r *ProposalRepo) Create(_ context.Context, p *models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; ok {
		return fmt.Errorf("proposal %s: %w", p.ID, database.ErrDuplicate)
	}
	for _, existing := range r.items {
		if existing.ServiceRequestID == p.ServiceRequestID && existing.FreelancerID == p.FreelancerID {
			return fmt.Errorf("proposal for %s by %s: %w", p.ServiceRequestID, p.FreelancerID, database.ErrDuplicate)
		}
	}
	p.Normalize()
	cp := *p
	r.items[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *ProposalRepo) GetByID(_ context.Context, id string) (*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", id, database.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *ProposalRepo) FindByRequestAndFreelancer(_ context.Context, requestID, freelancerID string) (*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.ServiceRequestID == requestID && p.FreelancerID == freelancerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("proposal for %s by %s: %w", requestID, freelancerID, database.ErrNotFound)
}

func (r *ProposalRepo) ListByRequest(_ context.Context, requestID string) ([]models.Proposal, error) {
	out := r.collect(func(p *models.Proposal) bool { return p.ServiceRequestID == requestID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ProposalRepo) ListByFreelancer(_ context.Context, freelancerID string) ([]models.Proposal, error) {
	out := r.collect(func(p *models.Proposal) bool { return p.FreelancerID == freelancerID })
	reverse(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProposalRepo) CountByRequest(_ context.Context, requestID string) (int, error) {
	return len(r.collect(func(p *models.Proposal) bool { return p.ServiceRequestID == requestID })), nil
}

func (r *ProposalRepo) UpdateStatus(_ context.Context, id, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.Status != from {
		return fmt.Errorf("proposal %s is not %s: %w", id, from, database.ErrConflict)
	}
	if to == models.ProposalAccepted {
		for _, other := range r.items {
			if other.ServiceRequestID == p.ServiceRequestID && other.Status == models.ProposalAccepted {
				return fmt.Errorf("proposal %s: another proposal already accepted: %w", id, database.ErrConflict)
			}
		}
	}
	now := time.Now().UTC()
	p.Status = to
	p.DecidedAt = &now
	return nil
}

func (r *ProposalRepo) RejectOthers(_ context.Context, requestID, keepID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	n := 0
	for _, p := range r.items {
		if p.ServiceRequestID != requestID || p.ID == keepID || p.Status != models.ProposalPending {
			continue
		}
		p.Status = models.ProposalRejected
		p.DecidedAt = &now
		n++
	}
	return n, nil
}

func (r *ProposalRepo) DeleteByRequest(_ context.Context, requestID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if p := r.items[id]; p.ServiceRequestID == requestID {
			delete(r.items, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return n, nil
}

func (r *ProposalRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
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

// collect returns copies in insertion order.
func (r *ProposalRepo) collect(keep func(*models.Proposal) bool) []models.Proposal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Proposal{}
	for _, id := range r.order {
		if p := r.items[id]; keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
