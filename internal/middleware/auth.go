package middleware

import (
	"context"
	"net/http"

	"stagepass/internal/models"
	"stagepass/internal/services"

	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// UserContextKey holds the authenticated user in the request context
	UserContextKey contextKey = "user"

	// SessionIDKey is the session value holding the server-side session id
	SessionIDKey = "session_id"
)

// AuthMiddleware resolves the login session on each request
type AuthMiddleware struct {
	authService services.AuthServiceInterface
	store       sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService services.AuthServiceInterface, store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		store:       store,
	}
}

// LoadUser loads the current user from the session cookie and adds it to the
// request context. Requests without a valid session pass through anonymously.
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, "session")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sessionID, ok := session.Values[SessionIDKey].(string)
		if !ok || sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.ValidateSession(sessionID)
		if err != nil {
			// Expired or revoked session, drop the cookie reference.
			delete(session.Values, SessionIDKey)
			session.Save(r, w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth ensures the request carries an authenticated user
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/accounts/login/?next="+r.URL.Path, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the user from request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetUserContext sets the user in the context (for testing)
func SetUserContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
