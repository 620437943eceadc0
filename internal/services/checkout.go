package services

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"

	"stagepass/internal/models"
)

const (
	sessionName        = "session"
	pendingCheckoutKey = "pending_checkout"
)

// CheckoutStore holds the single pending-purchase slot per browser session
// between the review step and the pay step. Concurrent tabs share the slot;
// last write wins. The slot expires with the session, so an absent load sends
// the caller back to the review step.
type CheckoutStore interface {
	Save(w http.ResponseWriter, r *http.Request, checkout *models.PendingCheckout) error
	Load(r *http.Request) (*models.PendingCheckout, bool)
	Clear(w http.ResponseWriter, r *http.Request) error
}

// SessionCheckoutStore implements CheckoutStore on a cookie session store
type SessionCheckoutStore struct {
	store sessions.Store
}

// NewSessionCheckoutStore creates a checkout store over the given session store
func NewSessionCheckoutStore(store sessions.Store) *SessionCheckoutStore {
	return &SessionCheckoutStore{store: store}
}

// Save overwrites any prior pending checkout for this session
func (s *SessionCheckoutStore) Save(w http.ResponseWriter, r *http.Request, checkout *models.PendingCheckout) error {
	if err := checkout.Validate(); err != nil {
		return err
	}

	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// A decode failure on a stale cookie still yields a fresh session.
		log.Printf("Checkout store: resetting undecodable session: %v", err)
	}

	session.Values[pendingCheckoutKey] = checkout
	return session.Save(r, w)
}

// Load returns the pending checkout for this session, if any
func (s *SessionCheckoutStore) Load(r *http.Request) (*models.PendingCheckout, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil, false
	}

	checkout, ok := session.Values[pendingCheckoutKey].(*models.PendingCheckout)
	if !ok || checkout == nil {
		return nil, false
	}
	return checkout, true
}

// Clear removes the pending checkout from this session
func (s *SessionCheckoutStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}

	delete(session.Values, pendingCheckoutKey)
	return session.Save(r, w)
}
