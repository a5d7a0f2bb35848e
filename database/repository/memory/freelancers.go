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

// FreelancerRepo is an in-process FreelancerRepository.
type FreelancerRepo struct {
	mu    sync.RWMutex
	items map[string]*models.FreelancerProfile
}

func NewFreelancerRepo() *FreelancerRepo {
	return &FreelancerRepo{items: map[string]*models.FreelancerProfile{}}
}

func (r *FreelancerRepo) GetByUserID(_ context.Context, userID string) (*models.FreelancerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[userID]
	if !ok {
		return nil, fmt.Errorf("profile for %s: %w", userID, database.ErrNotFound)
	}
	return cloneProfile(p), nil
}

func (r *FreelancerRepo) Create(_ context.Context, p *models.FreelancerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.UserID]; ok {
		return fmt.Errorf("profile for %s: %w", p.UserID, database.ErrDuplicate)
	}
	p.Normalize()
	r.items[p.UserID] = cloneProfile(p)
	return nil
}

func (r *FreelancerRepo) UpdateProfileFields(_ context.Context, userID string, in models.FreelancerProfileInput) (*models.FreelancerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[userID]
	if !ok {
		return nil, fmt.Errorf("profile for %s: %w", userID, database.ErrNotFound)
	}
	p.Title = in.Title
	p.Bio = in.Bio
	p.Skills = append([]string(nil), in.Skills...)
	p.Categories = append([]string(nil), in.Categories...)
	p.ExperienceYears = in.ExperienceYears
	p.HourlyRate = in.HourlyRate
	p.PortfolioURL = in.PortfolioURL
	p.Portfolio = in.Portfolio
	p.Education = in.Education
	p.Certifications = in.Certifications
	p.Languages = append([]string(nil), in.Languages...)
	p.Location = in.Location
	p.Website = in.Website
	p.Availability = in.Availability
	p.UpdatedAt = time.Now().UTC()
	p.Normalize()
	return cloneProfile(p), nil
}

func (r *FreelancerRepo) Find(_ context.Context, f models.FreelancerFilter) ([]models.FreelancerProfile, error) {
	r.mu.RLock()
	out := []models.FreelancerProfile{}
	for _, p := range r.items {
		if matchesProfile(p, f) {
			out = append(out, *cloneProfile(p))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].UserID < out[j].UserID
	})
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FreelancerRepo) ForEach(ctx context.Context, fn func(*models.FreelancerProfile) error) error {
	r.mu.RLock()
	snapshot := make([]*models.FreelancerProfile, 0, len(r.items))
	for _, p := range r.items {
		snapshot = append(snapshot, cloneProfile(p))
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].UserID < snapshot[j].UserID })
	for _, p := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *FreelancerRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[userID]; !ok {
		return fmt.Errorf("profile for %s: %w", userID, database.ErrNotFound)
	}
	delete(r.items, userID)
	return nil
}

func (r *FreelancerRepo) IncrementStats(_ context.Context, userID string, delta models.StatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[userID]
	if !ok {
		return fmt.Errorf("profile for %s: %w", userID, database.ErrNotFound)
	}
	p.CompletedProjects += delta.CompletedProjects
	p.TotalJobs += delta.TotalJobs
	p.TotalEarnings += delta.TotalEarnings
	return nil
}

func matchesProfile(p *models.FreelancerProfile, f models.FreelancerFilter) bool {
	if f.Category != "" && !contains(p.Categories, f.Category) {
		return false
	}
	if len(f.Skills) > 0 {
		hit := false
		for _, s := range f.Skills {
			if contains(p.Skills, s) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.MinRate > 0 && p.HourlyRate < f.MinRate {
		return false
	}
	if f.MaxRate > 0 && p.HourlyRate > f.MaxRate {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneProfile(p *models.FreelancerProfile) *models.FreelancerProfile {
	cp := *p
	cp.Skills = append([]string(nil), p.Skills...)
	cp.Categories = append([]string(nil), p.Categories...)
	cp.Languages = append([]string(nil), p.Languages...)
	return &cp
}
