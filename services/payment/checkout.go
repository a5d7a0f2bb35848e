package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"marketplace/database"
	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const eventCheckoutCompleted = "checkout.session.completed"

// SessionCreator creates Stripe Checkout Sessions.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeSessions calls the Stripe API with the globally configured key.
type StripeSessions struct{}

func (StripeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

type Config struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// CheckoutResult is returned to the buyer to redirect to Stripe.
type CheckoutResult struct {
	SessionID string  `json:"session_id"`
	URL       string  `json:"url"`
	Amount    float64 `json:"amount"`
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, p models.Principal, requestID string) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type DefaultPaymentService struct {
	Repos    *repository.Repositories
	Sessions SessionCreator
	Sink     notification.Sink
	Config   Config
	Logger   *zap.Logger
}

func NewDefaultPaymentService(repos *repository.Repositories, sessions SessionCreator, sink notification.Sink, cfg Config, logger *zap.Logger) (*DefaultPaymentService, error) {
	if repos == nil || sessions == nil || sink == nil || logger == nil {
		return nil, fmt.Errorf("payment service initialization error: one or more dependencies are nil")
	}
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	return &DefaultPaymentService{Repos: repos, Sessions: sessions, Sink: sink, Config: cfg, Logger: logger}, nil
}

// CreateCheckout opens a Checkout Session for the accepted proposal's price.
func (s *DefaultPaymentService) CreateCheckout(ctx context.Context, p models.Principal, requestID string) (*CheckoutResult, error) {
	req, err := s.Repos.Requests.GetByID(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("service request not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load service request", err)
	}
	if req.ClientID != p.ID {
		return nil, utils.Forbidden("only the request owner can pay for it")
	}
	if req.Status != models.RequestInProgress || req.AcceptedProposalID == "" {
		return nil, utils.InvalidState("service request has no accepted proposal to pay for")
	}
	if req.PaymentStatus == models.PaymentPaid {
		return nil, utils.Conflict("service request is already paid")
	}

	proposal, err := s.Repos.Proposals.GetByID(ctx, req.AcceptedProposalID)
	if err != nil {
		return nil, utils.Internal("failed to load accepted proposal", err)
	}
	cents := int64(math.Round(proposal.ProposedPrice * 100))

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.Config.SuccessURL),
		CancelURL:         stripe.String(s.Config.CancelURL),
		ClientReferenceID: stripe.String(req.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.Config.Currency),
				UnitAmount: stripe.Int64(cents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Title),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.AddMetadata("request_id", req.ID)
	params.AddMetadata("proposal_id", proposal.ID)

	sess, err := s.Sessions.New(params)
	if err != nil {
		return nil, utils.Internal("failed to create checkout session", err)
	}
	if err := s.Repos.Requests.SetPaymentSession(ctx, req.ID, sess.ID); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, utils.Conflict("service request is already paid")
		}
		return nil, utils.Internal("failed to store checkout session", err)
	}
	s.Logger.Info("checkout session created",
		zap.String("request_id", req.ID),
		zap.String("session_id", sess.ID),
		zap.Int64("amount_cents", cents),
	)
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL, Amount: proposal.ProposedPrice}, nil
}

// HandleWebhook verifies a Stripe event and marks the request paid on a
// completed checkout. Other event types are acknowledged and ignored.
func (s *DefaultPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.Config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return utils.Validation("Stripe-Signature", "invalid webhook signature")
	}
	if string(event.Type) != eventCheckoutCompleted {
		s.Logger.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return utils.Validation("data", "malformed checkout session payload")
	}
	req, err := s.Repos.Requests.MarkPaidBySession(ctx, sess.ID)
	if errors.Is(err, database.ErrNotFound) {
		s.Logger.Warn("checkout session does not match any request", zap.String("session_id", sess.ID))
		return nil
	}
	if err != nil {
		return utils.Internal("failed to record payment", err)
	}
	s.Logger.Info("payment received", zap.String("request_id", req.ID), zap.String("session_id", sess.ID))

	if proposal, err := s.Repos.Proposals.GetByID(ctx, req.AcceptedProposalID); err == nil {
		notification.Deliver(ctx, s.Sink, s.Logger, models.Notification{
			UserID:  proposal.FreelancerID,
			Type:    models.NotifyPaymentReceived,
			Title:   "Payment Received",
			Message: fmt.Sprintf("Payment of $%.2f for '%s' has been received", proposal.ProposedPrice, req.Title),
			Link:    "/seller-dashboard",
			Data:    map[string]string{"request_id": req.ID, "proposal_id": proposal.ID},
		})
	}
	return nil
}
