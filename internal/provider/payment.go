package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/data/entity"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// Payment abstracts the hosted-checkout provider. The provider holds the
// authoritative payment state; local records are reconciled against it.
type Payment interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookResult, error)
}

type CheckoutRequest struct {
	Amount      float64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

type CheckoutStatus struct {
	PaymentStatus entity.PaymentStatus
	State         entity.SessionState
	Amount        float64
	Currency      string
}

type WebhookResult struct {
	SessionID     string
	EventType     string
	PaymentStatus entity.PaymentStatus
}

type stripeProvider struct {
	client        *client.API
	webhookSecret string
	log           *zap.Logger
}

func NewStripeProvider(secretKey, webhookSecret string, log *zap.Logger) (Payment, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured")
	}

	sc := client.New(secretKey, nil)

	return &stripeProvider{
		client:        sc,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("provider", "stripe")),
	}, nil
}

// amountToCents converts a decimal amount to the smallest currency unit.
// Rounded, not truncated: 19.99 * 100 is 1998.999... in float64 and a plain
// int64 cast would undercharge by a cent.
func amountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	amountInCents := amountToCents(req.Amount)

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(amountInCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		p.log.Error("Failed to create checkout session", zap.Error(err))
		return nil, fmt.Errorf("%w: create checkout session: %v", apperr.ErrUpstream, err)
	}

	p.log.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("amount", amountInCents),
	)

	return &CheckoutSession{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

func (p *stripeProvider) GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}

	session, err := p.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		p.log.Error("Failed to retrieve checkout session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("%w: get checkout session %s: %v", apperr.ErrUpstream, sessionID, err)
	}

	return &CheckoutStatus{
		PaymentStatus: mapPaymentStatus(session.PaymentStatus),
		State:         mapSessionState(session.Status),
		Amount:        float64(session.AmountTotal) / 100.0,
		Currency:      string(session.Currency),
	}, nil
}

func (p *stripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		p.log.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: webhook signature verification: %v", apperr.ErrValidation, err)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		p.log.Error("Failed to parse webhook payload", zap.Error(err))
		return nil, fmt.Errorf("%w: parse webhook payload: %v", apperr.ErrUpstream, err)
	}

	return &WebhookResult{
		SessionID:     session.ID,
		EventType:     string(event.Type),
		PaymentStatus: mapPaymentStatus(session.PaymentStatus),
	}, nil
}

func mapPaymentStatus(status stripe.CheckoutSessionPaymentStatus) entity.PaymentStatus {
	switch status {
	case stripe.CheckoutSessionPaymentStatusPaid,
		stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return entity.PaymentStatusPaid
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		return entity.PaymentStatusPending
	default:
		return entity.PaymentStatusFailed
	}
}

func mapSessionState(status stripe.CheckoutSessionStatus) entity.SessionState {
	switch status {
	case stripe.CheckoutSessionStatusComplete:
		return entity.SessionStateCompleted
	case stripe.CheckoutSessionStatusExpired:
		return entity.SessionStateExpired
	default:
		return entity.SessionStateInitiated
	}
}
