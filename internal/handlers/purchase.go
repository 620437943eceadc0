package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"stagepass/internal/middleware"
	"stagepass/internal/models"
	"stagepass/internal/services"
)

// PurchaseHandler drives the review, pay, and confirmation steps
type PurchaseHandler struct {
	eventRepo      services.EventRepository
	productRepo    services.ProductRepository
	checkout       services.CheckoutStore
	payments       services.PaymentService
	renderer       *Renderer
	store          sessions.Store
	currency       string
	publishableKey string
	baseURL        string
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(
	eventRepo services.EventRepository,
	productRepo services.ProductRepository,
	checkout services.CheckoutStore,
	payments services.PaymentService,
	renderer *Renderer,
	store sessions.Store,
	currency, publishableKey, baseURL string,
) *PurchaseHandler {
	return &PurchaseHandler{
		eventRepo:      eventRepo,
		productRepo:    productRepo,
		checkout:       checkout,
		payments:       payments,
		renderer:       renderer,
		store:          store,
		currency:       currency,
		publishableKey: publishableKey,
		baseURL:        baseURL,
	}
}

// EventPurchase handles the review step for an event order. It prices the
// requested quantity and promo code; on action=continue it stores the
// pending checkout in the session and redirects to the pay step.
func (h *PurchaseHandler) EventPurchase(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	event, err := h.eventRepo.GetByID(eventID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	quantity := 1
	if q := r.FormValue("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil {
			h.renderEventError(w, r, event, "Quantity must be a whole number")
			return
		}
	}
	promoCode := r.FormValue("promo_code")

	user := middleware.GetUserFromContext(r.Context())
	contactEmail := r.FormValue("email")
	if user != nil {
		contactEmail = user.Email
	}

	quote, err := services.PriceEvent(event, quantity, promoCode)
	if err != nil {
		if models.IsValidationError(err) {
			h.renderEventError(w, r, event, err.Error())
			return
		}
		log.Printf("EventPurchase: pricing event %d failed: %v", eventID, err)
		http.Error(w, "Failed to price order", http.StatusInternalServerError)
		return
	}

	if r.FormValue("action") == "continue" {
		if user == nil && !models.ValidEmail(contactEmail) {
			h.renderEventError(w, r, event, "A valid email address is required")
			return
		}

		pending := &models.PendingCheckout{
			Purchasable:  models.PurchasableRef{Kind: models.KindEvent, ID: event.ID},
			Quantity:     quantity,
			PromoCode:    promoCode,
			ContactEmail: contactEmail,
			Reference:    uuid.NewString(),
		}
		if err := h.checkout.Save(w, r, pending); err != nil {
			log.Printf("EventPurchase: failed to save checkout %s: %v", pending.Reference, err)
			http.Error(w, "Failed to save order", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/event/%d/pay/", event.ID), http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, http.StatusOK, "review.html", map[string]any{
		"ItemName":  event.Title,
		"EventID":   event.ID,
		"Quantity":  quantity,
		"PromoCode": promoCode,
		"Email":     contactEmail,
		"Quote":     quote,
		"CSRFToken": middleware.GetCSRFToken(r, h.store),
	})
}

// EventPay loads the pending checkout and creates the payment intent. An
// absent or mismatched checkout slot routes back to the event page instead
// of erroring; the session may simply have expired.
func (h *PurchaseHandler) EventPay(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	pending, ok := h.checkout.Load(r)
	if !ok || pending.Purchasable != (models.PurchasableRef{Kind: models.KindEvent, ID: eventID}) {
		http.Redirect(w, r, fmt.Sprintf("/event/%d/", eventID), http.StatusSeeOther)
		return
	}

	event, err := h.eventRepo.GetByID(eventID)
	if err != nil {
		h.checkout.Clear(w, r)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// Same pricing path as the review step; both must reach the same number.
	quote, err := services.PriceEvent(event, pending.Quantity, pending.PromoCode)
	if err != nil {
		log.Printf("EventPay: pricing checkout %s failed: %v", pending.Reference, err)
		h.checkout.Clear(w, r)
		http.Redirect(w, r, fmt.Sprintf("/event/%d/", eventID), http.StatusSeeOther)
		return
	}

	user := middleware.GetUserFromContext(r.Context())
	customerID := ""
	if user != nil {
		customerID, err = h.payments.ResolveCustomer(r.Context(), user)
		if err != nil {
			// The charge still works without a linked customer.
			log.Printf("EventPay: resolving customer for user %d failed: %v", user.ID, err)
			customerID = ""
		}
	}

	metadata := map[string]string{
		"event":      strconv.Itoa(event.ID),
		"quantity":   strconv.Itoa(pending.Quantity),
		"promo_code": pending.PromoCode,
		"email":      pending.ContactEmail,
	}
	if user != nil {
		metadata["user_id"] = strconv.Itoa(user.ID)
	}

	intent, err := h.payments.CreateIntent(r.Context(), &services.IntentRequest{
		AmountCents: quote.AmountCents,
		Currency:    h.currency,
		CustomerID:  customerID,
		Metadata:    metadata,
	})
	if err != nil {
		log.Printf("EventPay: creating intent for checkout %s failed: %v", pending.Reference, err)
		h.renderer.Render(w, http.StatusBadGateway, "message.html", map[string]any{
			"Title":   "Payment unavailable",
			"Message": "We could not start your payment. Please try again in a moment.",
		})
		return
	}

	h.renderPaymentPage(w, event.Title, quote.Display, intent)
}

// PurchaseProduct creates a payment intent for a single product unit. The
// route requires authentication; product orders have no review step, no
// quantity selector, and no promo code.
func (h *PurchaseHandler) PurchaseProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/accounts/login/?next="+r.URL.Path, http.StatusSeeOther)
		return
	}

	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := h.productRepo.GetByID(productID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	quote, err := services.PriceProduct(product, 1)
	if err != nil {
		log.Printf("PurchaseProduct: pricing product %d failed: %v", productID, err)
		http.Error(w, "Failed to price order", http.StatusInternalServerError)
		return
	}

	customerID, err := h.payments.ResolveCustomer(r.Context(), user)
	if err != nil {
		log.Printf("PurchaseProduct: resolving customer for user %d failed: %v", user.ID, err)
		customerID = ""
	}

	intent, err := h.payments.CreateIntent(r.Context(), &services.IntentRequest{
		AmountCents: quote.AmountCents,
		Currency:    h.currency,
		CustomerID:  customerID,
		Metadata: map[string]string{
			"product":    strconv.Itoa(product.ID),
			"user_id":    strconv.Itoa(user.ID),
			"quantity":   "1",
			"promo_code": "",
			"email":      user.Email,
		},
		CaptureSavedCard: customerID != "",
	})
	if err != nil {
		log.Printf("PurchaseProduct: creating intent for product %d failed: %v", productID, err)
		h.renderer.Render(w, http.StatusBadGateway, "message.html", map[string]any{
			"Title":   "Payment unavailable",
			"Message": "We could not start your payment. Please try again in a moment.",
		})
		return
	}

	h.renderPaymentPage(w, product.Name, quote.Display, intent)
}

// Confirmation shows the post-payment landing page. Entitlement is granted
// by the webhook, not here; this page is display only.
func (h *PurchaseHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	intentID := r.URL.Query().Get("intent")
	if intentID == "" {
		// The processor's return redirect uses its own parameter name.
		intentID = r.URL.Query().Get("payment_intent")
	}

	h.checkout.Clear(w, r)

	h.renderer.Render(w, http.StatusOK, "confirmation.html", map[string]any{
		"IntentID": intentID,
	})
}

func (h *PurchaseHandler) renderPaymentPage(w http.ResponseWriter, itemName, amountDisplay string, intent *services.Intent) {
	h.renderer.Render(w, http.StatusOK, "payment.html", map[string]any{
		"ItemName":       itemName,
		"AmountDisplay":  amountDisplay,
		"ClientSecret":   intent.ClientSecret,
		"PublishableKey": h.publishableKey,
		"ReturnURL":      h.baseURL + "/payment/confirmation/",
	})
}

func (h *PurchaseHandler) renderEventError(w http.ResponseWriter, r *http.Request, event *models.Event, msg string) {
	h.renderer.Render(w, http.StatusBadRequest, "event.html", map[string]any{
		"Event":     event,
		"Error":     msg,
		"User":      middleware.GetUserFromContext(r.Context()),
		"CSRFToken": middleware.GetCSRFToken(r, h.store),
	})
}
