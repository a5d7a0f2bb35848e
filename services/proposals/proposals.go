package proposals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"marketplace/database"
	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func validateInput(in models.ProposalInput) (models.ProposalInput, error) {
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	if in.CoverLetter == "" {
		return in, utils.Validation("cover_letter", "cover_letter is required")
	}
	if in.ProposedPrice <= 0 {
		return in, utils.Validation("proposed_price", "proposed_price must be greater than 0")
	}
	if in.DeliveryTimeDays <= 0 {
		return in, utils.Validation("delivery_time_days", "delivery_time_days must be greater than 0")
	}
	return in, nil
}

// Submit records a seller's proposal. The match score is computed once here
// and never recalculated.
func (s *DefaultProposalService) Submit(ctx context.Context, p models.Principal, requestID string, in models.ProposalInput) (*models.Proposal, error) {
	if !p.IsSeller() {
		return nil, utils.Forbidden("only sellers can submit proposals")
	}
	in, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestOpen {
		return nil, utils.InvalidState("service request is not accepting proposals")
	}

	if _, err := s.Repos.Proposals.FindByRequestAndFreelancer(ctx, requestID, p.ID); err == nil {
		return nil, utils.Conflict("you have already submitted a proposal for this request")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, utils.Internal("failed to check existing proposal", err)
	}

	var profile *models.FreelancerProfile
	switch prof, err := s.Repos.Freelancers.GetByUserID(ctx, p.ID); {
	case err == nil:
		profile = prof
	case !errors.Is(err, database.ErrNotFound):
		return nil, utils.Internal("failed to load freelancer profile", err)
	}

	proposal := &models.Proposal{
		ID:               uuid.NewString(),
		ServiceRequestID: requestID,
		FreelancerID:     p.ID,
		FreelancerName:   p.Name,
		CoverLetter:      in.CoverLetter,
		ProposedPrice:    in.ProposedPrice,
		DeliveryTimeDays: in.DeliveryTimeDays,
		MatchScore:       s.Scorer.ScoreFor(ctx, profile, req),
		Status:           models.ProposalPending,
		CreatedAt:        s.now(),
	}
	if err := s.Repos.Proposals.Create(ctx, proposal); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.Conflict("you have already submitted a proposal for this request")
		}
		return nil, utils.Internal("failed to create proposal", err)
	}
	if err := s.confirmOpen(ctx, proposal); err != nil {
		return nil, err
	}
	s.Logger.Info("proposal submitted",
		zap.String("proposal_id", proposal.ID),
		zap.String("request_id", requestID),
		zap.Int("match_score", proposal.MatchScore),
	)

	notification.Deliver(ctx, s.Sink, s.Logger, models.Notification{
		UserID:  req.ClientID,
		Type:    models.NotifyNewProposal,
		Title:   "New Proposal Received",
		Message: fmt.Sprintf("%s sent a proposal for '%s'", displayName(p), req.Title),
		Link:    "/buyer-dashboard",
		Data:    map[string]string{"request_id": requestID, "proposal_id": proposal.ID},
	})
	return proposal, nil
}

// List returns the proposals on a request for its owner, best match first.
func (s *DefaultProposalService) List(ctx context.Context, p models.Principal, requestID string) ([]models.ProposalView, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ClientID != p.ID {
		return nil, utils.Forbidden("only the request owner can view its proposals")
	}

	found, err := s.Repos.Proposals.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, utils.Internal("failed to list proposals", err)
	}
	views := make([]models.ProposalView, 0, len(found))
	for _, proposal := range found {
		view := models.ProposalView{Proposal: proposal}
		profile, err := s.Repos.Freelancers.GetByUserID(ctx, proposal.FreelancerID)
		switch {
		case err == nil:
			view.Freelancer = profile.Summary()
		case !errors.Is(err, database.ErrNotFound):
			return nil, utils.Internal("failed to load freelancer profile", err)
		}
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].MatchScore > views[j].MatchScore })
	return views, nil
}

// Accept moves the request to in_progress and the chosen proposal to
// accepted, rejecting every other pending proposal. At most one proposal per
// request can ever be accepted.
func (s *DefaultProposalService) Accept(ctx context.Context, p models.Principal, requestID, proposalID string) (*models.Proposal, error) {
	req, proposal, err := s.loadOwned(ctx, p, requestID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalPending {
		return nil, utils.InvalidState("proposal is no longer pending")
	}

	var rejected int
	err = s.Repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repos.Requests.MarkInProgress(ctx, requestID, proposalID); err != nil {
			return err
		}
		if err := s.Repos.Proposals.UpdateStatus(ctx, proposalID, models.ProposalPending, models.ProposalAccepted); err != nil {
			if database.InTransaction(ctx) {
				return err
			}
			if rerr := s.Repos.Requests.Reopen(ctx, requestID, proposalID); rerr != nil {
				s.Logger.Error("failed to reopen request after accept conflict",
					zap.String("request_id", requestID),
					zap.String("proposal_id", proposalID),
					zap.Error(rerr),
				)
			}
			return err
		}
		n, err := s.Repos.Proposals.RejectOthers(ctx, requestID, proposalID)
		rejected = n
		return err
	})
	if errors.Is(err, database.ErrConflict) {
		return nil, utils.InvalidState("service request already has an accepted proposal")
	}
	if err != nil {
		return nil, utils.Internal("failed to accept proposal", err)
	}

	now := s.now()
	proposal.Status = models.ProposalAccepted
	proposal.DecidedAt = &now
	s.Logger.Info("proposal accepted",
		zap.String("proposal_id", proposalID),
		zap.String("request_id", requestID),
		zap.Int("rejected", rejected),
	)

	notification.Deliver(ctx, s.Sink, s.Logger, models.Notification{
		UserID:  proposal.FreelancerID,
		Type:    models.NotifyProposalAccepted,
		Title:   "Proposal Accepted!",
		Message: fmt.Sprintf("Your proposal for '%s' was accepted", req.Title),
		Link:    "/seller-dashboard",
		Data:    map[string]string{"request_id": requestID, "proposal_id": proposalID},
	})
	return proposal, nil
}

func (s *DefaultProposalService) Reject(ctx context.Context, p models.Principal, requestID, proposalID string) (*models.Proposal, error) {
	req, proposal, err := s.loadOwned(ctx, p, requestID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.Repos.Proposals.UpdateStatus(ctx, proposalID, models.ProposalPending, models.ProposalRejected); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, utils.InvalidState("proposal is no longer pending")
		}
		return nil, utils.Internal("failed to reject proposal", err)
	}
	now := s.now()
	proposal.Status = models.ProposalRejected
	proposal.DecidedAt = &now

	notification.Deliver(ctx, s.Sink, s.Logger, models.Notification{
		UserID:  proposal.FreelancerID,
		Type:    models.NotifyProposalRejected,
		Title:   "Proposal Update",
		Message: fmt.Sprintf("Your proposal for '%s' was not selected", req.Title),
		Link:    "/seller-dashboard",
		Data:    map[string]string{"request_id": requestID, "proposal_id": proposalID},
	})
	return proposal, nil
}

// ListMine returns the seller's own proposals, newest first.
func (s *DefaultProposalService) ListMine(ctx context.Context, p models.Principal) ([]models.MyProposalView, error) {
	if !p.IsSeller() {
		return nil, utils.Forbidden("only sellers have proposals")
	}
	found, err := s.Repos.Proposals.ListByFreelancer(ctx, p.ID)
	if err != nil {
		return nil, utils.Internal("failed to list proposals", err)
	}
	views := make([]models.MyProposalView, 0, len(found))
	for _, proposal := range found {
		view := models.MyProposalView{Proposal: proposal}
		req, err := s.Repos.Requests.GetByID(ctx, proposal.ServiceRequestID)
		switch {
		case err == nil:
			view.RequestTitle = req.Title
			view.RequestStatus = req.Status
		case !errors.Is(err, database.ErrNotFound):
			return nil, utils.Internal("failed to load service request", err)
		}
		views = append(views, view)
	}
	return views, nil
}

// confirmOpen re-reads the request after the proposal was written. Delete
// and Accept change the request before touching its proposals, so a request
// still open here will see this proposal in their cascade. Otherwise the
// proposal is withdrawn.
func (s *DefaultProposalService) confirmOpen(ctx context.Context, proposal *models.Proposal) error {
	req, err := s.Repos.Requests.GetByID(ctx, proposal.ServiceRequestID)
	if err == nil && req.Status == models.RequestOpen {
		return nil
	}
	if derr := s.Repos.Proposals.Delete(ctx, proposal.ID); derr != nil {
		s.Logger.Error("failed to withdraw proposal on closed request",
			zap.String("proposal_id", proposal.ID),
			zap.String("request_id", proposal.ServiceRequestID),
			zap.Error(derr),
		)
	}
	switch {
	case errors.Is(err, database.ErrNotFound):
		return utils.NotFound("service request not found")
	case err != nil:
		return utils.Internal("failed to load service request", err)
	}
	return utils.InvalidState("service request is not accepting proposals")
}

func (s *DefaultProposalService) loadRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := s.Repos.Requests.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("service request not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load service request", err)
	}
	return req, nil
}

// loadOwned checks ownership of the request and that the proposal belongs
// to it.
func (s *DefaultProposalService) loadOwned(ctx context.Context, p models.Principal, requestID, proposalID string) (*models.ServiceRequest, *models.Proposal, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.ClientID != p.ID {
		return nil, nil, utils.Forbidden("only the request owner can decide on proposals")
	}
	proposal, err := s.Repos.Proposals.GetByID(ctx, proposalID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && proposal.ServiceRequestID != requestID) {
		return nil, nil, utils.NotFound("proposal not found")
	}
	if err != nil {
		return nil, nil, utils.Internal("failed to load proposal", err)
	}
	return req, proposal, nil
}

func displayName(p models.Principal) string {
	if p.Name != "" {
		return p.Name
	}
	return "A freelancer"
}
