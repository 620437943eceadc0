package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"stagepass/internal/middleware"
	"stagepass/internal/models"
	"stagepass/internal/services"
)

// AuthHandler serves the account pages
type AuthHandler struct {
	authService services.AuthServiceInterface
	renderer    *Renderer
	store       sessions.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthServiceInterface, renderer *Renderer, store sessions.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		renderer:    renderer,
		store:       store,
	}
}

// RegisterPage shows the registration form
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register.html", map[string]any{
		"CSRFToken": middleware.GetCSRFToken(r, h.store),
	})
}

// Register creates an inactive account and sends the confirmation email
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	_, err := h.authService.Register(&services.RegisterRequest{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Name:     strings.TrimSpace(r.FormValue("name")),
	})
	if err != nil {
		if models.IsValidationError(err) {
			h.renderer.Render(w, http.StatusBadRequest, "register.html", map[string]any{
				"Error":     err.Error(),
				"CSRFToken": middleware.GetCSRFToken(r, h.store),
			})
			return
		}
		log.Printf("Register: %v", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "message.html", map[string]any{
		"Title":   "Check your email",
		"Message": "We sent you a confirmation link. Your account activates once you follow it.",
	})
}

// LoginPage shows the login form
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "login.html", map[string]any{
		"Next":      r.URL.Query().Get("next"),
		"CSRFToken": middleware.GetCSRFToken(r, h.store),
	})
}

// Login verifies credentials and opens a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Login(&services.LoginRequest{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	})
	if err != nil {
		h.renderer.Render(w, http.StatusUnauthorized, "login.html", map[string]any{
			"Error":     "Invalid email or password, or your email is not confirmed yet.",
			"Next":      r.FormValue("next"),
			"CSRFToken": middleware.GetCSRFToken(r, h.store),
		})
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		log.Printf("Login: session error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	session.Values[middleware.SessionIDKey] = resp.SessionID
	if err := session.Save(r, w); err != nil {
		log.Printf("Login: failed to save session: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	next := r.FormValue("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout closes the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err == nil {
		if sessionID, ok := session.Values[middleware.SessionIDKey].(string); ok && sessionID != "" {
			if err := h.authService.Logout(sessionID); err != nil {
				log.Printf("Logout: %v", err)
			}
		}
		delete(session.Values, middleware.SessionIDKey)
		session.Options.MaxAge = -1
		session.Save(r, w)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Activate consumes an email-confirmation token
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.authService.VerifyEmail(token); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "message.html", map[string]any{
			"Title":   "Activation failed",
			"Message": "This confirmation link is invalid or has expired.",
		})
		return
	}

	h.renderer.Render(w, http.StatusOK, "message.html", map[string]any{
		"Title":   "Account activated",
		"Message": "Your email is confirmed. You can log in now.",
	})
}

// PasswordResetPage shows the reset request form
func (h *AuthHandler) PasswordResetPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "password_reset.html", map[string]any{
		"CSRFToken": middleware.GetCSRFToken(r, h.store),
	})
}

// PasswordResetRequest emails a reset link. The response is identical for
// known and unknown addresses.
func (h *AuthHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	if err := h.authService.RequestPasswordReset(strings.TrimSpace(r.FormValue("email"))); err != nil {
		log.Printf("PasswordResetRequest: %v", err)
	}

	h.renderer.Render(w, http.StatusOK, "message.html", map[string]any{
		"Title":   "Check your email",
		"Message": "If an account exists for that address, a reset link is on its way.",
	})
}
