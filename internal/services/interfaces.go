package services

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v74"

	"stagepass/internal/models"
)

// UserRepository is the user storage surface the services need
type UserRepository interface {
	Create(email, passwordHash, name string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Activate(userID int) error
	SetStripeCustomerID(userID int, customerID string) error
	CreateSession(userID int, sessionID string, expiresAt time.Time) error
	GetUserBySession(sessionID string) (*models.User, error)
	DeleteSession(sessionID string) error
	CreateVerificationToken(userID int, token, purpose string, expiresAt time.Time) error
	ConsumeVerificationToken(token, purpose string) (int, error)
}

// EventRepository is the event storage surface the services need
type EventRepository interface {
	GetByID(id int) (*models.Event, error)
	GetUpcoming() ([]*models.Event, error)
	AddPurchaser(eventID, userID int) (bool, error)
	HasPurchaser(eventID, userID int) (bool, error)
	GetPurchasedByUser(userID int) ([]*models.Event, error)
}

// ProductRepository is the product storage surface the services need
type ProductRepository interface {
	GetByID(id int) (*models.Product, error)
	AddPurchaser(productID, userID int) (bool, error)
	HasPurchaser(productID, userID int) (bool, error)
	GetPurchasedByUser(userID int) ([]*models.Product, error)
}

// IntentRequest describes one payment intent to create with the processor.
// Metadata is the only channel correlating the asynchronous callback back to
// the purchase, so it must round-trip verbatim.
type IntentRequest struct {
	AmountCents      int64
	Currency         string
	CustomerID       string // optional processor customer reference
	Metadata         map[string]string
	CaptureSavedCard bool
}

// Intent is the slice of the processor's payment intent this system holds
type Intent struct {
	ID           string
	ClientSecret string
}

// PaymentService wraps the external payment processor
type PaymentService interface {
	CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
	ResolveCustomer(ctx context.Context, user *models.User) (string, error)
}

// EmailService sends transactional email
type EmailService interface {
	SendPurchaseConfirmation(email, itemName string, quantity int, amountDisplay string) error
	SendAdminAlert(subject, body string) error
	SendVerificationEmail(email, name, confirmURL string) error
	SendPasswordResetEmail(email, resetURL string) error
}

// AuthServiceInterface defines the authentication surface used by handlers
// and middleware
type AuthServiceInterface interface {
	Register(req *RegisterRequest) (*models.User, error)
	Login(req *LoginRequest) (*AuthResponse, error)
	ValidateSession(sessionID string) (*models.User, error)
	Logout(sessionID string) error
	VerifyEmail(token string) error
	RequestPasswordReset(email string) error
}
