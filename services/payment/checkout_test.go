package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"marketplace/database/repository"
	"marketplace/models"
	"marketplace/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const testSecret = "whsec_test"

var buyer = models.Principal{ID: "buyer-1", Role: models.RoleBuyer}

type fakeSessions struct {
	params []*stripe.CheckoutSessionParams
	err    error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.params = append(f.params, params)
	id := fmt.Sprintf("cs_test_%d", len(f.params))
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

type recordingSink struct{ sent []models.Notification }

func (s *recordingSink) Notify(_ context.Context, n models.Notification) error {
	s.sent = append(s.sent, n)
	return nil
}

func setup(t *testing.T, accepted bool) (*DefaultPaymentService, *repository.Repositories, *fakeSessions, *recordingSink) {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	sessions := &fakeSessions{}
	sink := &recordingSink{}
	svc, err := NewDefaultPaymentService(repos, sessions, sink, Config{
		WebhookSecret: testSecret,
		SuccessURL:    "https://app.test/ok",
		CancelURL:     "https://app.test/cancel",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDefaultPaymentService: %v", err)
	}

	_ = repos.Requests.Create(ctx, &models.ServiceRequest{
		ID: "req-1", ClientID: buyer.ID, Title: "API integration", Budget: 500, Status: models.RequestOpen,
	})
	_ = repos.Proposals.Create(ctx, &models.Proposal{
		ID: "prop-1", ServiceRequestID: "req-1", FreelancerID: "seller-1", ProposedPrice: 420.5,
	})
	if accepted {
		_ = repos.Requests.MarkInProgress(ctx, "req-1", "prop-1")
		_ = repos.Proposals.UpdateStatus(ctx, "prop-1", models.ProposalPending, models.ProposalAccepted)
	}
	return svc, repos, sessions, sink
}

func TestCreateCheckout(t *testing.T) {
	ctx := context.Background()
	svc, repos, sessions, _ := setup(t, true)

	res, err := svc.CreateCheckout(ctx, buyer, "req-1")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if res.SessionID != "cs_test_1" || res.Amount != 420.5 {
		t.Fatalf("result = %+v", res)
	}
	item := sessions.params[0].LineItems[0]
	if got := *item.PriceData.UnitAmount; got != 42050 {
		t.Fatalf("unit amount = %d; want 42050", got)
	}
	if got := *item.PriceData.Currency; got != "usd" {
		t.Fatalf("currency = %q", got)
	}
	if got := *sessions.params[0].ClientReferenceID; got != "req-1" {
		t.Fatalf("client reference = %q", got)
	}

	stored, _ := repos.Requests.GetByID(ctx, "req-1")
	if stored.PaymentStatus != models.PaymentPending || stored.StripeSessionID != "cs_test_1" {
		t.Fatalf("stored payment state = %q %q", stored.PaymentStatus, stored.StripeSessionID)
	}
}

func TestCreateCheckout_Rejections(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := setup(t, false)
	if _, err := svc.CreateCheckout(ctx, buyer, "req-1"); !utils.IsKind(err, utils.KindInvalidState) {
		t.Fatalf("open request err = %v; want invalid_state", err)
	}

	svc, _, _, _ = setup(t, true)
	stranger := models.Principal{ID: "buyer-2", Role: models.RoleBuyer}
	if _, err := svc.CreateCheckout(ctx, stranger, "req-1"); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("stranger err = %v; want forbidden", err)
	}
	if _, err := svc.CreateCheckout(ctx, buyer, "missing"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("missing err = %v; want not_found", err)
	}

	svc, _, sessions, _ := setup(t, true)
	sessions.err = errors.New("stripe unavailable")
	if _, err := svc.CreateCheckout(ctx, buyer, "req-1"); !utils.IsKind(err, utils.KindInternal) {
		t.Fatalf("stripe failure err = %v; want internal", err)
	}
}

func signedEvent(t *testing.T, eventType, sessionID string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","type":%q,"data":{"object":{"id":%q,"object":"checkout.session"}}}`,
		eventType, sessionID))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestHandleWebhook_MarksPaid(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, sink := setup(t, true)
	res, _ := svc.CreateCheckout(ctx, buyer, "req-1")

	payload, header := signedEvent(t, "checkout.session.completed", res.SessionID)
	if err := svc.HandleWebhook(ctx, payload, header); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	stored, _ := repos.Requests.GetByID(ctx, "req-1")
	if stored.PaymentStatus != models.PaymentPaid {
		t.Fatalf("payment status = %q; want paid", stored.PaymentStatus)
	}
	if len(sink.sent) != 1 || sink.sent[0].Type != models.NotifyPaymentReceived || sink.sent[0].UserID != "seller-1" {
		t.Fatalf("notifications = %+v", sink.sent)
	}

	if _, err := svc.CreateCheckout(ctx, buyer, "req-1"); !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("checkout after payment err = %v; want conflict", err)
	}
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	svc, repos, _, _ := setup(t, true)
	_, _ = svc.CreateCheckout(ctx, buyer, "req-1")

	payload, header := signedEvent(t, "payment_intent.created", "cs_test_1")
	if err := svc.HandleWebhook(ctx, payload, header); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	stored, _ := repos.Requests.GetByID(ctx, "req-1")
	if stored.PaymentStatus != models.PaymentPending {
		t.Fatalf("payment status = %q; want pending", stored.PaymentStatus)
	}
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	svc, _, _, _ := setup(t, true)
	payload, _ := signedEvent(t, "checkout.session.completed", "cs_test_1")
	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	if !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("err = %v; want validation", err)
	}
}
