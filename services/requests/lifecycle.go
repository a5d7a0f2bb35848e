package requests

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"marketplace/database"
	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultRequestService) Create(ctx context.Context, p models.Principal, in models.ServiceRequestInput) (*models.ServiceRequest, error) {
	if !p.IsBuyer() {
		return nil, utils.Forbidden("only buyers can post service requests")
	}
	now := s.now()
	req, err := validateInput(in, now)
	if err != nil {
		return nil, err
	}
	req.ID = uuid.NewString()
	req.ClientID = p.ID
	req.ClientName = p.Name
	req.Status = models.RequestOpen
	req.CreatedAt = now

	if err := s.Repos.Requests.Create(ctx, req); err != nil {
		return nil, utils.Internal("failed to create service request", err)
	}
	s.Logger.Info("service request created", zap.String("request_id", req.ID), zap.String("client_id", p.ID))

	if err := s.Dispatcher.DispatchMatch(ctx, req.ID); err != nil {
		s.Logger.Warn("failed to schedule match fanout", zap.String("request_id", req.ID), zap.Error(err))
	}
	return req, nil
}

func (s *DefaultRequestService) Get(ctx context.Context, p models.Principal, id string) (*models.ServiceRequestView, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.view(ctx, req)
	if err != nil {
		return nil, err
	}
	if !p.IsSeller() {
		return view, nil
	}

	profile, err := s.profileOf(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	score := s.Scorer.ScoreFor(ctx, profile, req)
	view.MatchScore = &score

	mine, err := s.Repos.Proposals.FindByRequestAndFreelancer(ctx, req.ID, p.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		applied := false
		view.HasApplied = &applied
	case err != nil:
		return nil, utils.Internal("failed to load proposal", err)
	default:
		applied := true
		view.HasApplied = &applied
		view.MyProposal = mine
	}
	return view, nil
}

func (s *DefaultRequestService) Browse(ctx context.Context, p models.Principal, q BrowseQuery) ([]models.ServiceRequestView, error) {
	filter := models.RequestFilter{
		Category:        q.Category,
		ExperienceLevel: q.ExperienceLevel,
		MinBudget:       q.MinBudget,
		MaxBudget:       q.MaxBudget,
		Limit:           q.Limit,
	}
	if p.IsBuyer() {
		filter.ClientID = p.ID
		filter.Status = q.Status
	} else {
		filter.Status = models.RequestOpen
	}

	found, err := s.Repos.Requests.Find(ctx, filter)
	if err != nil {
		return nil, utils.Internal("failed to list service requests", err)
	}

	var profile *models.FreelancerProfile
	if p.IsSeller() {
		if profile, err = s.profileOf(ctx, p.ID); err != nil {
			return nil, err
		}
	}

	views := make([]models.ServiceRequestView, 0, len(found))
	for i := range found {
		view, err := s.view(ctx, &found[i])
		if err != nil {
			return nil, err
		}
		if p.IsSeller() {
			score := s.Scorer.ScoreFor(ctx, profile, &found[i])
			view.MatchScore = &score
		}
		views = append(views, *view)
	}
	if p.IsSeller() {
		sort.SliceStable(views, func(i, j int) bool { return *views[i].MatchScore > *views[j].MatchScore })
	}
	return views, nil
}

func (s *DefaultRequestService) Complete(ctx context.Context, p models.Principal, id string) (*models.ServiceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != p.ID {
		return nil, utils.Forbidden("only the request owner can complete it")
	}

	at := s.now()
	if at.Before(req.CreatedAt) {
		at = req.CreatedAt
	}
	// The written document carries any proposal accepted since the load.
	req, err = s.Repos.Requests.MarkCompleted(ctx, id, at)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, utils.InvalidState("service request is already completed")
		}
		return nil, utils.Internal("failed to complete service request", err)
	}

	if req.AcceptedProposalID != "" {
		s.rewardFreelancer(ctx, req)
	}
	return req, nil
}

// rewardFreelancer notifies the accepted freelancer and credits their
// stats. Both are best effort.
func (s *DefaultRequestService) rewardFreelancer(ctx context.Context, req *models.ServiceRequest) {
	proposal, err := s.Repos.Proposals.GetByID(ctx, req.AcceptedProposalID)
	if err != nil {
		s.Logger.Warn("accepted proposal not found on completion",
			zap.String("request_id", req.ID),
			zap.String("proposal_id", req.AcceptedProposalID),
			zap.Error(err),
		)
		return
	}

	notification.Deliver(ctx, s.Sink, s.Logger, models.Notification{
		UserID:  proposal.FreelancerID,
		Type:    models.NotifyProjectCompleted,
		Title:   "Project Completed",
		Message: fmt.Sprintf("'%s' has been marked as completed", req.Title),
		Link:    "/seller-dashboard",
		Data:    map[string]string{"request_id": req.ID, "proposal_id": proposal.ID},
	})

	delta := models.StatsDelta{CompletedProjects: 1, TotalJobs: 1, TotalEarnings: proposal.ProposedPrice}
	if err := s.Repos.Freelancers.IncrementStats(ctx, proposal.FreelancerID, delta); err != nil {
		s.Logger.Warn("failed to update freelancer stats",
			zap.String("freelancer_id", proposal.FreelancerID),
			zap.Error(err),
		)
	}
}

// Delete removes an open request and its proposals. Requests with an
// accepted proposal or already completed cannot be deleted.
func (s *DefaultRequestService) Delete(ctx context.Context, p models.Principal, id string) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if req.ClientID != p.ID {
		return utils.Forbidden("only the request owner can delete it")
	}

	var removed int
	err = s.Repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repos.Requests.DeleteOpen(ctx, id); err != nil {
			return err
		}
		n, err := s.Repos.Proposals.DeleteByRequest(ctx, id)
		removed = n
		return err
	})
	if errors.Is(err, database.ErrConflict) {
		return utils.InvalidState("only open service requests can be deleted")
	}
	if err != nil {
		return utils.Internal("failed to delete service request", err)
	}
	s.Logger.Info("service request deleted", zap.String("request_id", id), zap.Int("proposals_removed", removed))
	return nil
}

func (s *DefaultRequestService) load(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := s.Repos.Requests.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("service request not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load service request", err)
	}
	return req, nil
}

func (s *DefaultRequestService) view(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequestView, error) {
	count, err := s.Repos.Proposals.CountByRequest(ctx, req.ID)
	if err != nil {
		return nil, utils.Internal("failed to count proposals", err)
	}
	return &models.ServiceRequestView{ServiceRequest: *req, ProposalCount: count}, nil
}

// profileOf returns nil without error when the seller has no profile yet;
// a missing profile scores 0.
func (s *DefaultRequestService) profileOf(ctx context.Context, userID string) (*models.FreelancerProfile, error) {
	profile, err := s.Repos.Freelancers.GetByUserID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Internal("failed to load freelancer profile", err)
	}
	return profile, nil
}
