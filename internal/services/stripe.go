package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"stagepass/internal/config"
	"stagepass/internal/models"
)

// StripeService implements PaymentService against the Stripe API
type StripeService struct {
	userRepo      UserRepository
	webhookSecret string
	currency      string

	// API entry points, swappable in tests
	newIntent   func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	newCustomer func(params *stripe.CustomerParams) (*stripe.Customer, error)
}

// NewStripeService creates a Stripe-backed payment service
func NewStripeService(cfg config.StripeConfig, userRepo UserRepository) *StripeService {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}

	return &StripeService{
		userRepo:      userRepo,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
		newIntent:     api.PaymentIntents.New,
		newCustomer:   api.Customers.New,
	}
}

// CreateIntent creates a client-side-confirmable payment intent carrying the
// checkout metadata. Creation is not auto-retried: the contract assumes no
// idempotency-key support, so a failure surfaces as a payment-setup error.
func (s *StripeService) CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error) {
	if req.AmountCents <= 0 {
		return nil, &models.GatewayError{Op: "create intent", Err: fmt.Errorf("amount must be positive, got %d", req.AmountCents)}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.CaptureSavedCard {
		params.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := s.newIntent(params)
	if err != nil {
		return nil, &models.GatewayError{Op: "create intent", Err: err}
	}

	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// VerifyWebhook checks the signature header over the raw payload and parses
// the event. Signature and parse failures are distinguished so the boundary
// can report both as 4xx without processing anything further.
func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		if errors.Is(err, webhook.ErrNotSigned) ||
			errors.Is(err, webhook.ErrInvalidHeader) ||
			errors.Is(err, webhook.ErrNoValidSignature) ||
			errors.Is(err, webhook.ErrTooOld) {
			return stripe.Event{}, fmt.Errorf("%w: %v", models.ErrSignatureInvalid, err)
		}
		return stripe.Event{}, fmt.Errorf("%w: %v", models.ErrMalformedPayload, err)
	}
	return event, nil
}

// ResolveCustomer returns the processor customer linked to the account,
// creating one on first use. The users.stripe_customer_id column is written
// at most once per account, so repeated or racing calls converge on a single
// external customer.
func (s *StripeService) ResolveCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.HasStripeCustomer() {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(user.Email),
	}
	if user.Name != "" {
		params.Name = stripe.String(user.Name)
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", user.ID))

	customer, err := s.newCustomer(params)
	if err != nil {
		return "", &models.GatewayError{Op: "create customer", Err: err}
	}

	if err := s.userRepo.SetStripeCustomerID(user.ID, customer.ID); err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			// A concurrent request linked a customer first; use that one.
			fresh, readErr := s.userRepo.GetByID(user.ID)
			if readErr == nil && fresh.HasStripeCustomer() {
				log.Printf("Stripe: discarding duplicate customer %s for user %d", customer.ID, user.ID)
				return *fresh.StripeCustomerID, nil
			}
		}
		return "", fmt.Errorf("failed to persist customer mapping: %w", err)
	}

	user.StripeCustomerID = &customer.ID
	return customer.ID, nil
}
