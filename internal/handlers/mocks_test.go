package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v74"

	"stagepass/internal/models"
	"stagepass/internal/services"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) CreateIntent(ctx context.Context, req *services.IntentRequest) (*services.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Intent), args.Error(1)
}

func (m *mockPayments) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(stripe.Event), args.Error(1)
}

func (m *mockPayments) ResolveCustomer(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) GetByID(id int) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockEventRepo) GetUpcoming() ([]*models.Event, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *mockEventRepo) AddPurchaser(eventID, userID int) (bool, error) {
	args := m.Called(eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventRepo) HasPurchaser(eventID, userID int) (bool, error) {
	args := m.Called(eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventRepo) GetPurchasedByUser(userID int) ([]*models.Event, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetByID(id int) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) AddPurchaser(productID, userID int) (bool, error) {
	args := m.Called(productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepo) HasPurchaser(productID, userID int) (bool, error) {
	args := m.Called(productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepo) GetPurchasedByUser(userID int) ([]*models.Product, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(email, passwordHash, name string) (*models.User, error) {
	args := m.Called(email, passwordHash, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(id int) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Activate(userID int) error {
	return m.Called(userID).Error(0)
}

func (m *mockUserRepo) SetStripeCustomerID(userID int, customerID string) error {
	return m.Called(userID, customerID).Error(0)
}

func (m *mockUserRepo) CreateSession(userID int, sessionID string, expiresAt time.Time) error {
	return m.Called(userID, sessionID, expiresAt).Error(0)
}

func (m *mockUserRepo) GetUserBySession(sessionID string) (*models.User, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) DeleteSession(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func (m *mockUserRepo) CreateVerificationToken(userID int, token, purpose string, expiresAt time.Time) error {
	return m.Called(userID, token, purpose, expiresAt).Error(0)
}

func (m *mockUserRepo) ConsumeVerificationToken(token, purpose string) (int, error) {
	args := m.Called(token, purpose)
	return args.Int(0), args.Error(1)
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendPurchaseConfirmation(email, itemName string, quantity int, amountDisplay string) error {
	args := m.Called(email, itemName, quantity, amountDisplay)
	return args.Error(0)
}

func (m *mockEmailSender) SendAdminAlert(subject, body string) error {
	return m.Called(subject, body).Error(0)
}

func (m *mockEmailSender) SendVerificationEmail(email, name, confirmURL string) error {
	return m.Called(email, name, confirmURL).Error(0)
}

func (m *mockEmailSender) SendPasswordResetEmail(email, resetURL string) error {
	return m.Called(email, resetURL).Error(0)
}

type mockCheckoutStore struct {
	mock.Mock
}

func (m *mockCheckoutStore) Save(w http.ResponseWriter, r *http.Request, checkout *models.PendingCheckout) error {
	args := m.Called(w, r, checkout)
	return args.Error(0)
}

func (m *mockCheckoutStore) Load(r *http.Request) (*models.PendingCheckout, bool) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.PendingCheckout), args.Bool(1)
}

func (m *mockCheckoutStore) Clear(w http.ResponseWriter, r *http.Request) error {
	args := m.Called(w, r)
	return args.Error(0)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(req *services.RegisterRequest) (*models.User, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) Login(req *services.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

func (m *mockAuthService) ValidateSession(sessionID string) (*models.User, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) Logout(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func (m *mockAuthService) VerifyEmail(token string) error {
	return m.Called(token).Error(0)
}

func (m *mockAuthService) RequestPasswordReset(email string) error {
	return m.Called(email).Error(0)
}
