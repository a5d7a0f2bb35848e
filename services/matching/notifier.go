package matching

import (
	"context"
	"errors"
	"fmt"

	"marketplace/database"
	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/services/notification"

	"go.uber.org/zap"
)

// Notifier tells every freelancer scoring at least MatchThreshold about a
// new request.
type Notifier struct {
	requests    repository.ServiceRequestRepository
	freelancers repository.FreelancerRepository
	scorer      Scorer
	sink        notification.Sink
	log         *zap.Logger
}

func NewNotifier(
	requests repository.ServiceRequestRepository,
	freelancers repository.FreelancerRepository,
	scorer Scorer,
	sink notification.Sink,
	log *zap.Logger,
) (*Notifier, error) {
	if requests == nil || freelancers == nil || scorer == nil || sink == nil || log == nil {
		return nil, fmt.Errorf("match notifier initialization error: missing dependency")
	}
	return &Notifier{requests: requests, freelancers: freelancers, scorer: scorer, sink: sink, log: log}, nil
}

// NotifyCandidates returns the number of freelancers notified. A request
// that no longer exists or is no longer open is skipped silently.
func (n *Notifier) NotifyCandidates(ctx context.Context, requestID string) (int, error) {
	req, err := n.requests.GetByID(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if req.Status != models.RequestOpen {
		return 0, nil
	}

	notified := 0
	err = n.freelancers.ForEach(ctx, func(p *models.FreelancerProfile) error {
		if p.UserID == req.ClientID {
			return nil
		}
		score := n.scorer.ScoreFor(ctx, p, req)
		if score < MatchThreshold {
			return nil
		}
		notification.Deliver(ctx, n.sink, n.log, models.Notification{
			ID:      OpportunityID(req.ID, p.UserID),
			UserID:  p.UserID,
			Type:    models.NotifyNewOpportunity,
			Title:   fmt.Sprintf("New Project Match (%d%% fit)", score),
			Message: "A new project matches your skills: " + req.Title,
			Link:    "/service-requests/" + req.ID,
			Data: map[string]string{
				"request_id":  req.ID,
				"match_score": fmt.Sprint(score),
			},
		})
		notified++
		return nil
	})
	if err != nil {
		return notified, fmt.Errorf("failed to scan candidates for %s: %w", requestID, err)
	}
	n.log.Info("match fanout complete", zap.String("request_id", requestID), zap.Int("notified", notified))
	return notified, nil
}

// OpportunityID is stable per request and candidate so a repeated fan-out
// does not notify the same freelancer twice.
func OpportunityID(requestID, userID string) string {
	return "match:" + requestID + ":" + userID
}

// Fanout adapts NotifyCandidates to notification.FanoutFunc.
func (n *Notifier) Fanout(ctx context.Context, requestID string) error {
	_, err := n.NotifyCandidates(ctx, requestID)
	return err
}
