package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v74"

	"stagepass/internal/models"
)

// MockUserRepository is a testify mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(email, passwordHash, name string) (*models.User, error) {
	args := m.Called(email, passwordHash, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id int) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Activate(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) SetStripeCustomerID(userID int, customerID string) error {
	args := m.Called(userID, customerID)
	return args.Error(0)
}

func (m *MockUserRepository) CreateSession(userID int, sessionID string, expiresAt time.Time) error {
	args := m.Called(userID, sessionID, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserBySession(sessionID string) (*models.User, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) DeleteSession(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockUserRepository) CreateVerificationToken(userID int, token, purpose string, expiresAt time.Time) error {
	args := m.Called(userID, token, purpose, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeVerificationToken(token, purpose string) (int, error) {
	args := m.Called(token, purpose)
	return args.Int(0), args.Error(1)
}

// MockEventRepository is a testify mock of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) GetByID(id int) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) GetUpcoming() ([]*models.Event, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) AddPurchaser(eventID, userID int) (bool, error) {
	args := m.Called(eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) HasPurchaser(eventID, userID int) (bool, error) {
	args := m.Called(eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) GetPurchasedByUser(userID int) ([]*models.Event, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

// MockProductRepository is a testify mock of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(id int) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) AddPurchaser(productID, userID int) (bool, error) {
	args := m.Called(productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) HasPurchaser(productID, userID int) (bool, error) {
	args := m.Called(productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) GetPurchasedByUser(userID int) ([]*models.Product, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

// MockEmailSender is a testify mock of EmailService
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendPurchaseConfirmation(email, itemName string, quantity int, amountDisplay string) error {
	args := m.Called(email, itemName, quantity, amountDisplay)
	return args.Error(0)
}

func (m *MockEmailSender) SendAdminAlert(subject, body string) error {
	args := m.Called(subject, body)
	return args.Error(0)
}

func (m *MockEmailSender) SendVerificationEmail(email, name, confirmURL string) error {
	args := m.Called(email, name, confirmURL)
	return args.Error(0)
}

func (m *MockEmailSender) SendPasswordResetEmail(email, resetURL string) error {
	args := m.Called(email, resetURL)
	return args.Error(0)
}

// MockPaymentBackend is a testify mock of PaymentService
type MockPaymentBackend struct {
	mock.Mock
}

func (m *MockPaymentBackend) CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *MockPaymentBackend) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(stripe.Event), args.Error(1)
}

func (m *MockPaymentBackend) ResolveCustomer(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
