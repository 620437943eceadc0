package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	"stagepass/internal/config"
	"stagepass/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload produces a valid Stripe-Signature header for payload
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newTestStripeService(userRepo UserRepository) *StripeService {
	return NewStripeService(config.StripeConfig{
		SecretKey:     "sk_test_x",
		WebhookSecret: testWebhookSecret,
		Currency:      "usd",
	}, userRepo)
}

func TestStripeService_CreateIntent(t *testing.T) {
	svc := newTestStripeService(nil)

	var captured *stripe.PaymentIntentParams
	svc.newIntent = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		captured = params
		return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
	}

	intent, err := svc.CreateIntent(context.Background(), &IntentRequest{
		AmountCents: 12000,
		CustomerID:  "cus_9",
		Metadata: map[string]string{
			"event":      "42",
			"user_id":    "7",
			"quantity":   "3",
			"promo_code": "save20",
			"email":      "guest@example.com",
		},
		CaptureSavedCard: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)

	require.NotNil(t, captured)
	assert.Equal(t, int64(12000), *captured.Amount)
	assert.Equal(t, "usd", *captured.Currency)
	assert.Equal(t, "cus_9", *captured.Customer)
	assert.Equal(t, "off_session", *captured.SetupFutureUsage)
	assert.True(t, *captured.AutomaticPaymentMethods.Enabled)

	// Metadata must round-trip verbatim for webhook correlation.
	assert.Equal(t, "42", captured.Metadata["event"])
	assert.Equal(t, "7", captured.Metadata["user_id"])
	assert.Equal(t, "3", captured.Metadata["quantity"])
	assert.Equal(t, "save20", captured.Metadata["promo_code"])
	assert.Equal(t, "guest@example.com", captured.Metadata["email"])
}

func TestStripeService_CreateIntent_RejectsNonPositiveAmount(t *testing.T) {
	svc := newTestStripeService(nil)
	svc.newIntent = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		t.Fatal("gateway should not be called for a non-positive amount")
		return nil, nil
	}

	for _, amount := range []int64{0, -100} {
		_, err := svc.CreateIntent(context.Background(), &IntentRequest{AmountCents: amount})
		require.Error(t, err)
		var ge *models.GatewayError
		assert.True(t, errors.As(err, &ge))
	}
}

func TestStripeService_CreateIntent_WrapsGatewayFailure(t *testing.T) {
	svc := newTestStripeService(nil)
	svc.newIntent = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, errors.New("connection refused")
	}

	_, err := svc.CreateIntent(context.Background(), &IntentRequest{AmountCents: 500})
	require.Error(t, err)
	var ge *models.GatewayError
	assert.True(t, errors.As(err, &ge))
}

func TestStripeService_VerifyWebhook(t *testing.T) {
	svc := newTestStripeService(nil)
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

	t.Run("valid signature", func(t *testing.T) {
		event, err := svc.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "payment_intent.succeeded", string(event.Type))
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.VerifyWebhook(payload, signPayload(payload, "whsec_other", time.Now()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrSignatureInvalid))
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := svc.VerifyWebhook(payload, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrSignatureInvalid))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		_, err := svc.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrSignatureInvalid))
	})

	t.Run("malformed body with valid signature", func(t *testing.T) {
		bad := []byte(`{not json`)
		_, err := svc.VerifyWebhook(bad, signPayload(bad, testWebhookSecret, time.Now()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrMalformedPayload))
	})
}

func TestStripeService_ResolveCustomer(t *testing.T) {
	t.Run("creates once then reuses stored id", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestStripeService(userRepo)

		created := 0
		svc.newCustomer = func(params *stripe.CustomerParams) (*stripe.Customer, error) {
			created++
			return &stripe.Customer{ID: "cus_abc"}, nil
		}

		user := &models.User{ID: 7, Email: "member@example.com", Name: "Member"}
		userRepo.On("SetStripeCustomerID", 7, "cus_abc").Return(nil).Once()

		first, err := svc.ResolveCustomer(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, "cus_abc", first)

		second, err := svc.ResolveCustomer(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, "cus_abc", second)

		assert.Equal(t, 1, created, "only one external customer may be created")
		userRepo.AssertExpectations(t)
	})

	t.Run("concurrent link loses race and adopts winner", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestStripeService(userRepo)

		svc.newCustomer = func(params *stripe.CustomerParams) (*stripe.Customer, error) {
			return &stripe.Customer{ID: "cus_loser"}, nil
		}

		winner := "cus_winner"
		user := &models.User{ID: 7, Email: "member@example.com"}
		userRepo.On("SetStripeCustomerID", 7, "cus_loser").Return(models.ErrDuplicateEntry)
		userRepo.On("GetByID", 7).Return(&models.User{ID: 7, StripeCustomerID: &winner}, nil)

		got, err := svc.ResolveCustomer(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, "cus_winner", got)
	})
}
