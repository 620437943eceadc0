package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"stagepass/internal/middleware"
	"stagepass/internal/services"
)

// PublicHandler serves the browsing pages
type PublicHandler struct {
	eventRepo   services.EventRepository
	productRepo services.ProductRepository
	renderer    *Renderer
	store       sessions.Store
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(eventRepo services.EventRepository, productRepo services.ProductRepository, renderer *Renderer, store sessions.Store) *PublicHandler {
	return &PublicHandler{
		eventRepo:   eventRepo,
		productRepo: productRepo,
		renderer:    renderer,
		store:       store,
	}
}

// Home lists upcoming events
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventRepo.GetUpcoming()
	if err != nil {
		log.Printf("Home: failed to load events: %v", err)
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "home.html", map[string]any{
		"Events": events,
		"User":   middleware.GetUserFromContext(r.Context()),
	})
}

// EventPage shows one event with its order form
func (h *PublicHandler) EventPage(w http.ResponseWriter, r *http.Request) {
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

	h.renderer.Render(w, http.StatusOK, "event.html", map[string]any{
		"Event":     event,
		"User":      middleware.GetUserFromContext(r.Context()),
		"CSRFToken": middleware.GetCSRFToken(r, h.store),
	})
}

// Dashboard lists everything the signed-in user holds entitlements to
func (h *PublicHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/accounts/login/?next="+r.URL.Path, http.StatusSeeOther)
		return
	}

	events, err := h.eventRepo.GetPurchasedByUser(user.ID)
	if err != nil {
		log.Printf("Dashboard: failed to load events for user %d: %v", user.ID, err)
		http.Error(w, "Failed to load purchases", http.StatusInternalServerError)
		return
	}

	products, err := h.productRepo.GetPurchasedByUser(user.ID)
	if err != nil {
		log.Printf("Dashboard: failed to load products for user %d: %v", user.ID, err)
		http.Error(w, "Failed to load purchases", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "dashboard.html", map[string]any{
		"User":     user,
		"Events":   events,
		"Products": products,
	})
}
