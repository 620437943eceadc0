package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v74"

	"stagepass/internal/models"
	"stagepass/internal/services"
)

// maxWebhookBody bounds the payload the processor may post
const maxWebhookBody = 64 * 1024

// WebhookHandler reconciles asynchronous payment callbacks. Signature
// verification is the only fatal check: once a payload is authentic the
// handler always acknowledges with 200, because the processor's retry policy
// is keyed on HTTP status and redelivery of unresolvable data would never
// converge.
type WebhookHandler struct {
	payments     services.PaymentService
	entitlements *services.EntitlementService
	userRepo     services.UserRepository
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(payments services.PaymentService, entitlements *services.EntitlementService, userRepo services.UserRepository) *WebhookHandler {
	return &WebhookHandler{
		payments:     payments,
		entitlements: entitlements,
		userRepo:     userRepo,
	}
}

// HandleWebhook processes one inbound payment-status callback
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}

	event, err := h.payments.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("Webhook: rejected: %v", err)
		http.Error(w, "Webhook verification failed", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		h.handleSucceeded(r, event)
	case "payment_intent.payment_failed":
		h.handleFailed(event)
	default:
		// Unknown kinds are acknowledged so future event types never error.
		log.Printf("Webhook: ignoring event %s of type %s", event.ID, event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// handleSucceeded grants entitlement for a completed payment. Failures past
// this point are operational anomalies, logged but still acknowledged.
func (h *WebhookHandler) handleSucceeded(r *http.Request, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Printf("Webhook: event %s carried an unreadable payment intent: %v", event.ID, err)
		return
	}

	req, err := h.grantRequestFromIntent(&pi)
	if err != nil {
		log.Printf("Webhook: event %s has unusable metadata on intent %s: %v", event.ID, pi.ID, err)
		return
	}

	result, err := h.entitlements.Grant(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) || errors.Is(err, models.ErrProductNotFound) {
			log.Printf("Webhook: intent %s references missing %s, acknowledging", pi.ID, req.Ref)
		} else {
			log.Printf("Webhook: granting %s for intent %s failed: %v", req.Ref, pi.ID, err)
		}
		return
	}

	log.Printf("Webhook: intent %s -> %s %s for %s", pi.ID, result.Status, req.Ref, result.Email)
}

func (h *WebhookHandler) handleFailed(event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Printf("Webhook: event %s carried an unreadable payment intent: %v", event.ID, err)
		return
	}

	reason := ""
	if pi.LastPaymentError != nil {
		reason = pi.LastPaymentError.Msg
	}
	log.Printf("Webhook: payment failed for intent %s: %s", pi.ID, reason)
}

// grantRequestFromIntent decodes the metadata contract written at intent
// creation: {event|product: <id>, user_id: <id|absent>, quantity: <int>,
// promo_code: <string>, email: <string>}.
func (h *WebhookHandler) grantRequestFromIntent(pi *stripe.PaymentIntent) (*services.GrantRequest, error) {
	ref, err := purchasableRefFromMetadata(pi.Metadata)
	if err != nil {
		return nil, err
	}

	quantity := 1
	if q := pi.Metadata["quantity"]; q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil || quantity < 1 {
			return nil, fmt.Errorf("bad quantity %q", q)
		}
	}

	purchaser := models.GuestPurchaser(pi.Metadata["email"])
	if raw := pi.Metadata["user_id"]; raw != "" {
		userID, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("bad user_id %q", raw)
		}
		user, err := h.userRepo.GetByID(userID)
		if err != nil {
			// A deleted account downgrades to a guest notification.
			log.Printf("Webhook: intent %s references missing user %d", pi.ID, userID)
		} else {
			purchaser = models.RegisteredPurchaser(user)
		}
	}

	return &services.GrantRequest{
		Ref:           ref,
		Purchaser:     purchaser,
		Quantity:      quantity,
		PromoCode:     pi.Metadata["promo_code"],
		BillingEmail:  billingEmailFromIntent(pi),
		AmountDisplay: fmt.Sprintf("$%.2f", float64(pi.Amount)/100),
	}, nil
}

func purchasableRefFromMetadata(metadata map[string]string) (models.PurchasableRef, error) {
	kind := models.KindEvent
	raw, ok := metadata["event"]
	if !ok {
		kind = models.KindProduct
		raw, ok = metadata["product"]
	}
	if !ok {
		return models.PurchasableRef{}, errors.New("no event or product key")
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return models.PurchasableRef{}, fmt.Errorf("bad %s id %q", kind, raw)
	}
	return models.PurchasableRef{Kind: kind, ID: id}, nil
}

// billingEmailFromIntent recovers the charge's billing email when no account
// or checkout email survived the metadata round-trip. The nested charge shape
// is API-version sensitive, so this is best effort only.
func billingEmailFromIntent(pi *stripe.PaymentIntent) string {
	if pi.LatestCharge != nil && pi.LatestCharge.BillingDetails != nil && pi.LatestCharge.BillingDetails.Email != "" {
		return pi.LatestCharge.BillingDetails.Email
	}
	return pi.ReceiptEmail
}
