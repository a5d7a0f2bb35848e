package proposals

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/services/matching"
	"marketplace/utils"

	"go.uber.org/zap"
)

var (
	buyer   = models.Principal{ID: "buyer-1", Role: models.RoleBuyer, Name: "Bea"}
	other   = models.Principal{ID: "buyer-2", Role: models.RoleBuyer}
	sellerA = models.Principal{ID: "seller-a", Role: models.RoleSeller, Name: "Ana"}
	sellerB = models.Principal{ID: "seller-b", Role: models.RoleSeller, Name: "Ben"}
)

type recordingSink struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (s *recordingSink) Notify(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSink) ofType(typ string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func setup(t *testing.T) (*DefaultProposalService, *repository.Repositories, *recordingSink, *models.ServiceRequest) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	sink := &recordingSink{}
	svc, err := NewDefaultProposalService(repos, matching.PureScorer{}, sink, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDefaultProposalService: %v", err)
	}
	clock := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	req := &models.ServiceRequest{
		ID:              "req-1",
		ClientID:        buyer.ID,
		Title:           "Data pipeline",
		Category:        "data",
		Budget:          3000,
		SkillsRequired:  []string{"python", "sql"},
		ExperienceLevel: models.ExperienceIntermediate,
		Status:          models.RequestOpen,
		CreatedAt:       clock,
	}
	if err := repos.Requests.Create(context.Background(), req); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return svc, repos, sink, req
}

func validInput() models.ProposalInput {
	return models.ProposalInput{CoverLetter: "I can do this", ProposedPrice: 2500, DeliveryTimeDays: 10}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	svc, repos, sink, req := setup(t)
	_ = repos.Freelancers.Create(ctx, &models.FreelancerProfile{
		UserID: sellerA.ID, Skills: []string{"python", "sql"}, Categories: []string{"data"},
		ExperienceYears: 5, HourlyRate: 50, FreelancerStats: models.FreelancerStats{SuccessRate: 92},
	})

	proposal, err := svc.Submit(ctx, sellerA, req.ID, validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if proposal.Status != models.ProposalPending || proposal.MatchScore != 100 {
		t.Fatalf("proposal = %+v", proposal)
	}
	if got := sink.ofType(models.NotifyNewProposal); len(got) != 1 || got[0].UserID != buyer.ID {
		t.Fatalf("new_proposal notifications = %+v", got)
	}

	// The score is frozen even if the profile changes later.
	_, _ = repos.Freelancers.UpdateProfileFields(ctx, sellerA.ID, models.FreelancerProfileInput{Skills: []string{"go"}})
	stored, _ := repos.Proposals.GetByID(ctx, proposal.ID)
	if stored.MatchScore != 100 {
		t.Fatalf("stored score = %d; want 100", stored.MatchScore)
	}

	if _, err := svc.Submit(ctx, sellerA, req.ID, validInput()); !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("duplicate err = %v; want conflict", err)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, req := setup(t)

	if _, err := svc.Submit(ctx, buyer, req.ID, validInput()); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("buyer err = %v; want forbidden", err)
	}
	if _, err := svc.Submit(ctx, sellerA, "nope", validInput()); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("missing err = %v; want not_found", err)
	}

	bad := validInput()
	bad.ProposedPrice = 0
	if _, err := svc.Submit(ctx, sellerA, req.ID, bad); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("zero price err = %v; want validation", err)
	}
	bad = validInput()
	bad.CoverLetter = " "
	if _, err := svc.Submit(ctx, sellerA, req.ID, bad); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("empty cover letter err = %v; want validation", err)
	}

	_ = repos.Requests.MarkInProgress(ctx, req.ID, "elsewhere")
	if _, err := svc.Submit(ctx, sellerA, req.ID, validInput()); !utils.IsKind(err, utils.KindInvalidState) {
		t.Fatalf("closed request err = %v; want invalid_state", err)
	}
}

func TestSubmit_WithoutProfileScoresZero(t *testing.T) {
	svc, _, _, req := setup(t)
	proposal, err := svc.Submit(context.Background(), sellerB, req.ID, validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if proposal.MatchScore != 0 {
		t.Fatalf("score = %d; want 0", proposal.MatchScore)
	}
}

func TestList_SortedByScore(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, req := setup(t)
	_ = repos.Freelancers.Create(ctx, &models.FreelancerProfile{
		UserID: sellerB.ID, Title: "Data engineer", Skills: []string{"python", "sql"}, HourlyRate: 40,
	})

	low, _ := svc.Submit(ctx, sellerA, req.ID, validInput())
	high, _ := svc.Submit(ctx, sellerB, req.ID, validInput())

	if _, err := svc.List(ctx, other, req.ID); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("non-owner err = %v; want forbidden", err)
	}

	views, err := svc.List(ctx, buyer, req.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 || views[0].ID != high.ID || views[1].ID != low.ID {
		t.Fatalf("order = %s, %s", views[0].ID, views[1].ID)
	}
	if views[0].Freelancer == nil || views[0].Freelancer.Title != "Data engineer" {
		t.Fatalf("missing freelancer summary: %+v", views[0].Freelancer)
	}
	if views[1].Freelancer != nil {
		t.Fatalf("seller without profile has a summary")
	}
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	svc, repos, sink, req := setup(t)
	a, _ := svc.Submit(ctx, sellerA, req.ID, validInput())
	b, _ := svc.Submit(ctx, sellerB, req.ID, validInput())

	if _, err := svc.Accept(ctx, other, req.ID, a.ID); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("non-owner err = %v; want forbidden", err)
	}

	accepted, err := svc.Accept(ctx, buyer, req.ID, a.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != models.ProposalAccepted {
		t.Fatalf("status = %q", accepted.Status)
	}

	stored, _ := repos.Requests.GetByID(ctx, req.ID)
	if stored.Status != models.RequestInProgress || stored.AcceptedProposalID != a.ID {
		t.Fatalf("request after accept = %+v", stored)
	}
	sibling, _ := repos.Proposals.GetByID(ctx, b.ID)
	if sibling.Status != models.ProposalRejected {
		t.Fatalf("sibling status = %q; want rejected", sibling.Status)
	}
	if got := sink.ofType(models.NotifyProposalAccepted); len(got) != 1 || got[0].UserID != sellerA.ID {
		t.Fatalf("accepted notifications = %+v", got)
	}

	if _, err := svc.Accept(ctx, buyer, req.ID, b.ID); !utils.IsKind(err, utils.KindInvalidState) {
		t.Fatalf("second accept err = %v; want invalid_state", err)
	}
}

// changeAfterLoad runs change once, right after the first request read.
type changeAfterLoad struct {
	repository.ServiceRequestRepository
	once   sync.Once
	change func(ctx context.Context, id string)
}

func (r *changeAfterLoad) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := r.ServiceRequestRepository.GetByID(ctx, id)
	r.once.Do(func() { r.change(ctx, id) })
	return req, err
}

func TestSubmit_RequestDeletedMidway(t *testing.T) {
	ctx := context.Background()
	svc, repos, sink, req := setup(t)
	inner := repos.Requests
	repos.Requests = &changeAfterLoad{ServiceRequestRepository: inner, change: func(ctx context.Context, id string) {
		_ = inner.DeleteOpen(ctx, id)
		_, _ = repos.Proposals.DeleteByRequest(ctx, id)
	}}

	if _, err := svc.Submit(ctx, sellerA, req.ID, validInput()); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("err = %v; want not_found", err)
	}
	if n, _ := repos.Proposals.CountByRequest(ctx, req.ID); n != 0 {
		t.Fatalf("%d proposals left on a deleted request", n)
	}
	if got := sink.ofType(models.NotifyNewProposal); len(got) != 0 {
		t.Fatalf("buyer notified about a withdrawn proposal: %+v", got)
	}
}

func TestSubmit_RequestAcceptedMidway(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, req := setup(t)
	inner := repos.Requests
	repos.Requests = &changeAfterLoad{ServiceRequestRepository: inner, change: func(ctx context.Context, id string) {
		_ = inner.MarkInProgress(ctx, id, "elsewhere")
	}}

	if _, err := svc.Submit(ctx, sellerA, req.ID, validInput()); !utils.IsKind(err, utils.KindInvalidState) {
		t.Fatalf("err = %v; want invalid_state", err)
	}
	if _, err := repos.Proposals.FindByRequestAndFreelancer(ctx, req.ID, sellerA.ID); err == nil {
		t.Fatalf("pending proposal persisted on an in_progress request")
	}
}

func TestAccept_ProposalFromAnotherRequest(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, req := setup(t)
	_ = repos.Proposals.Create(ctx, &models.Proposal{ID: "foreign", ServiceRequestID: "req-2", FreelancerID: sellerA.ID})

	if _, err := svc.Accept(ctx, buyer, req.ID, "foreign"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("err = %v; want not_found", err)
	}
	if _, err := svc.Accept(ctx, buyer, req.ID, "missing"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("err = %v; want not_found", err)
	}
}

func TestAccept_ConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, req := setup(t)

	sellers := []models.Principal{sellerA, sellerB,
		{ID: "seller-c", Role: models.RoleSeller},
		{ID: "seller-d", Role: models.RoleSeller},
	}
	ids := make([]string, 0, len(sellers))
	for _, s := range sellers {
		p, err := svc.Submit(ctx, s, req.ID, validInput())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids = append(ids, p.ID)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Accept(ctx, buyer, req.ID, id)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !utils.IsKind(err, utils.KindInvalidState) {
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("%d accepts succeeded; want exactly 1", successes)
	}
	all, _ := repos.Proposals.ListByRequest(ctx, req.ID)
	accepted := 0
	for _, p := range all {
		if p.Status == models.ProposalAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("%d proposals accepted; want 1", accepted)
	}
	stored, _ := repos.Requests.GetByID(ctx, req.ID)
	if stored.Status != models.RequestInProgress {
		t.Fatalf("request status = %q", stored.Status)
	}
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	svc, repos, sink, req := setup(t)
	a, _ := svc.Submit(ctx, sellerA, req.ID, validInput())

	rejected, err := svc.Reject(ctx, buyer, req.ID, a.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.ProposalRejected {
		t.Fatalf("status = %q", rejected.Status)
	}
	if got := sink.ofType(models.NotifyProposalRejected); len(got) != 1 || got[0].UserID != sellerA.ID {
		t.Fatalf("rejected notifications = %+v", got)
	}
	if _, err := svc.Reject(ctx, buyer, req.ID, a.ID); !utils.IsKind(err, utils.KindInvalidState) {
		t.Fatalf("second reject err = %v; want invalid_state", err)
	}
	stored, _ := repos.Requests.GetByID(ctx, req.ID)
	if stored.Status != models.RequestOpen {
		t.Fatalf("reject changed request status to %q", stored.Status)
	}
}

// rejectFirst lets a Reject win the race against the first accept attempt.
type rejectFirst struct {
	repository.ProposalRepository
	once sync.Once
}

func (r *rejectFirst) UpdateStatus(ctx context.Context, id, from, to string) error {
	if to == models.ProposalAccepted {
		r.once.Do(func() { _ = r.ProposalRepository.UpdateStatus(ctx, id, models.ProposalPending, models.ProposalRejected) })
	}
	return r.ProposalRepository.UpdateStatus(ctx, id, from, to)
}

func TestAccept_LosesToRejectAndReopensRequest(t *testing.T) {
	ctx := context.Background()
	svc, repos, sink, req := setup(t)
	a, _ := svc.Submit(ctx, sellerA, req.ID, validInput())
	b, _ := svc.Submit(ctx, sellerB, req.ID, validInput())
	repos.Proposals = &rejectFirst{ProposalRepository: repos.Proposals}

	if _, err := svc.Accept(ctx, buyer, req.ID, a.ID); !utils.IsKind(err, utils.KindInvalidState) {
		t.Fatalf("err = %v; want invalid_state", err)
	}
	stored, _ := repos.Requests.GetByID(ctx, req.ID)
	if stored.Status != models.RequestOpen || stored.AcceptedProposalID != "" {
		t.Fatalf("request not reopened: %+v", stored)
	}
	lost, _ := repos.Proposals.GetByID(ctx, a.ID)
	if lost.Status != models.ProposalRejected {
		t.Fatalf("proposal status = %q; want rejected", lost.Status)
	}
	if got := sink.ofType(models.NotifyProposalAccepted); len(got) != 0 {
		t.Fatalf("accepted notifications = %+v", got)
	}

	// The reopened request can still take another proposal.
	if _, err := svc.Accept(ctx, buyer, req.ID, b.ID); err != nil {
		t.Fatalf("Accept after reopen: %v", err)
	}
}

func TestAcceptAndReject_Race(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		svc, repos, _, req := setup(t)
		a, _ := svc.Submit(ctx, sellerA, req.ID, validInput())

		var (
			wg                   sync.WaitGroup
			acceptErr, rejectErr error
		)
		wg.Add(2)
		go func() { defer wg.Done(); _, acceptErr = svc.Accept(ctx, buyer, req.ID, a.ID) }()
		go func() { defer wg.Done(); _, rejectErr = svc.Reject(ctx, buyer, req.ID, a.ID) }()
		wg.Wait()

		if (acceptErr == nil) == (rejectErr == nil) {
			t.Fatalf("accept err = %v, reject err = %v; want exactly one success", acceptErr, rejectErr)
		}
		stored, _ := repos.Requests.GetByID(ctx, req.ID)
		proposal, _ := repos.Proposals.GetByID(ctx, a.ID)
		if acceptErr == nil {
			if stored.Status != models.RequestInProgress || proposal.Status != models.ProposalAccepted {
				t.Fatalf("accept won but request %q, proposal %q", stored.Status, proposal.Status)
			}
			continue
		}
		if !utils.IsKind(acceptErr, utils.KindInvalidState) {
			t.Fatalf("accept err = %v; want invalid_state", acceptErr)
		}
		if stored.Status != models.RequestOpen || stored.AcceptedProposalID != "" || proposal.Status != models.ProposalRejected {
			t.Fatalf("reject won but request %+v, proposal %q", stored, proposal.Status)
		}
	}
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, req := setup(t)
	second := &models.ServiceRequest{ID: "req-2", ClientID: buyer.ID, Title: "Landing page", Budget: 500, Status: models.RequestOpen}
	_ = repos.Requests.Create(ctx, second)

	first, _ := svc.Submit(ctx, sellerA, req.ID, validInput())
	latest, _ := svc.Submit(ctx, sellerA, second.ID, validInput())

	mine, err := svc.ListMine(ctx, sellerA)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != latest.ID || mine[1].ID != first.ID {
		t.Fatalf("ListMine = %+v", mine)
	}
	if mine[0].RequestTitle != "Landing page" || mine[0].RequestStatus != models.RequestOpen {
		t.Fatalf("request summary missing: %+v", mine[0])
	}
	if _, err := svc.ListMine(ctx, buyer); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("buyer err = %v; want forbidden", err)
	}
}
