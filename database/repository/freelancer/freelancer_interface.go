package freelancerRepo

import (
	"context"

	"marketplace/models"
)

// FreelancerRepository defines data access for freelancer profiles, keyed by user id.
type FreelancerRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.FreelancerProfile, error)
	// Create returns database.ErrDuplicate when the user already has a profile.
	Create(ctx context.Context, p *models.FreelancerProfile) error
	// UpdateProfileFields overwrites the editable fields only; stats and created_at are kept.
	UpdateProfileFields(ctx context.Context, userID string, in models.FreelancerProfileInput) (*models.FreelancerProfile, error)
	Find(ctx context.Context, filter models.FreelancerFilter) ([]models.FreelancerProfile, error)
	// ForEach streams every profile to fn until fn returns an error.
	ForEach(ctx context.Context, fn func(*models.FreelancerProfile) error) error
	Delete(ctx context.Context, userID string) error
	IncrementStats(ctx context.Context, userID string, delta models.StatsDelta) error
}
