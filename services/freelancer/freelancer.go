package freelancer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/database"
	freelancerRepo "marketplace/database/repository/freelancer"
	"marketplace/models"
	"marketplace/utils"

	"go.uber.org/zap"
)

// ProfileService manages seller profiles used for matching.
type ProfileService interface {
	Upsert(ctx context.Context, p models.Principal, in models.FreelancerProfileInput) (*models.FreelancerProfile, bool, error)
	GetMine(ctx context.Context, p models.Principal) (*models.FreelancerProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.FreelancerProfile, error)
	Search(ctx context.Context, filter models.FreelancerFilter) ([]models.FreelancerProfile, error)
	Delete(ctx context.Context, p models.Principal) error
}

type DefaultProfileService struct {
	Repo   freelancerRepo.FreelancerRepository
	Logger *zap.Logger

	now func() time.Time
}

func NewDefaultProfileService(repo freelancerRepo.FreelancerRepository, logger *zap.Logger) (*DefaultProfileService, error) {
	if repo == nil || logger == nil {
		return nil, fmt.Errorf("freelancer service initialization error: one or more dependencies are nil")
	}
	return &DefaultProfileService{
		Repo:   repo,
		Logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func validateProfile(in models.FreelancerProfileInput) (models.FreelancerProfileInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Bio = strings.TrimSpace(in.Bio)
	if in.Title == "" {
		return in, utils.Validation("title", "title is required")
	}
	if in.Bio == "" {
		return in, utils.Validation("bio", "bio is required")
	}
	skills := make([]string, 0, len(in.Skills))
	for _, s := range in.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		return in, utils.Validation("skills", "at least one skill is required")
	}
	in.Skills = skills
	if in.HourlyRate <= 0 {
		return in, utils.Validation("hourly_rate", "hourly_rate must be greater than 0")
	}
	if in.ExperienceYears < 0 {
		return in, utils.Validation("experience_years", "experience_years cannot be negative")
	}
	return in, nil
}

// Upsert creates the caller's profile or overwrites its editable fields.
// The bool reports whether a new profile was created. Earned stats and
// created_at are never touched by an update.
func (s *DefaultProfileService) Upsert(ctx context.Context, p models.Principal, in models.FreelancerProfileInput) (*models.FreelancerProfile, bool, error) {
	if !p.IsSeller() {
		return nil, false, utils.Forbidden("only sellers can have a freelancer profile")
	}
	in, err := validateProfile(in)
	if err != nil {
		return nil, false, err
	}

	_, err = s.Repo.GetByUserID(ctx, p.ID)
	switch {
	case err == nil:
		return s.update(ctx, p.ID, in)
	case !errors.Is(err, database.ErrNotFound):
		return nil, false, utils.Internal("failed to load freelancer profile", err)
	}

	now := s.now()
	profile := &models.FreelancerProfile{
		UserID:          p.ID,
		Name:            p.Name,
		Title:           in.Title,
		Bio:             in.Bio,
		Skills:          in.Skills,
		Categories:      in.Categories,
		ExperienceYears: in.ExperienceYears,
		HourlyRate:      in.HourlyRate,
		PortfolioURL:    in.PortfolioURL,
		Portfolio:       in.Portfolio,
		Education:       in.Education,
		Certifications:  in.Certifications,
		Languages:       in.Languages,
		Location:        in.Location,
		Website:         in.Website,
		Availability:    in.Availability,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	profile.Normalize()
	if err := s.Repo.Create(ctx, profile); err != nil {
		// Lost a create race with a concurrent save of the same user.
		if errors.Is(err, database.ErrDuplicate) {
			return s.update(ctx, p.ID, in)
		}
		return nil, false, utils.Internal("failed to create freelancer profile", err)
	}
	s.Logger.Info("freelancer profile created", zap.String("user_id", p.ID))
	return profile, true, nil
}

func (s *DefaultProfileService) update(ctx context.Context, userID string, in models.FreelancerProfileInput) (*models.FreelancerProfile, bool, error) {
	profile, err := s.Repo.UpdateProfileFields(ctx, userID, in)
	if err != nil {
		return nil, false, utils.Internal("failed to update freelancer profile", err)
	}
	s.Logger.Info("freelancer profile updated", zap.String("user_id", userID))
	return profile, false, nil
}

func (s *DefaultProfileService) GetMine(ctx context.Context, p models.Principal) (*models.FreelancerProfile, error) {
	return s.GetByUserID(ctx, p.ID)
}

func (s *DefaultProfileService) GetByUserID(ctx context.Context, userID string) (*models.FreelancerProfile, error) {
	profile, err := s.Repo.GetByUserID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("freelancer profile not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load freelancer profile", err)
	}
	return profile, nil
}

func (s *DefaultProfileService) Search(ctx context.Context, filter models.FreelancerFilter) ([]models.FreelancerProfile, error) {
	if filter.MinRate > 0 && filter.MaxRate > 0 && filter.MinRate > filter.MaxRate {
		return nil, utils.Validation("min_rate", "min_rate cannot exceed max_rate")
	}
	found, err := s.Repo.Find(ctx, filter)
	if err != nil {
		return nil, utils.Internal("failed to search freelancer profiles", err)
	}
	return found, nil
}

func (s *DefaultProfileService) Delete(ctx context.Context, p models.Principal) error {
	err := s.Repo.Delete(ctx, p.ID)
	if errors.Is(err, database.ErrNotFound) {
		return utils.NotFound("freelancer profile not found")
	}
	if err != nil {
		return utils.Internal("failed to delete freelancer profile", err)
	}
	s.Logger.Info("freelancer profile deleted", zap.String("user_id", p.ID))
	return nil
}
