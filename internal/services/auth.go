package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"stagepass/internal/models"
	"stagepass/internal/utils"
)

const (
	sessionDuration     = 24 * time.Hour
	verifyTokenPurpose  = "verify_email"
	resetTokenPurpose   = "password_reset"
	verifyTokenLifetime = 48 * time.Hour
	resetTokenLifetime  = time.Hour
)

// AuthService handles account registration and login sessions. Accounts are
// created inactive and unlock on email confirmation.
type AuthService struct {
	userRepo     UserRepository
	emailService EmailService
	baseURL      string
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo UserRepository, emailService EmailService, baseURL string) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		baseURL:      baseURL,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a successful login
type AuthResponse struct {
	User      *models.User `json:"user"`
	SessionID string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Register creates an inactive account and sends the confirmation email
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	createReq := &models.UserCreateRequest{Email: req.Email, Password: req.Password, Name: req.Name}
	if err := createReq.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(req.Email); err == nil {
		return nil, models.NewValidationError("email", "an account with this email already exists")
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(req.Email, hash, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := s.userRepo.CreateVerificationToken(user.ID, token, verifyTokenPurpose, time.Now().Add(verifyTokenLifetime)); err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}

	confirmURL := fmt.Sprintf("%s/activate/%s/", s.baseURL, token)
	if err := s.emailService.SendVerificationEmail(user.Email, user.Name, confirmURL); err != nil {
		// The account exists; the user can request a resend.
		log.Printf("Auth: verification email to %s failed: %v", user.Email, err)
	}

	return user, nil
}

// VerifyEmail consumes an activation token and unlocks the account
func (s *AuthService) VerifyEmail(token string) error {
	userID, err := s.userRepo.ConsumeVerificationToken(token, verifyTokenPurpose)
	if err != nil {
		return err
	}
	return s.userRepo.Activate(userID)
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	ok, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, models.ErrUnauthorized
	}
	if !user.CanLogin() {
		return nil, models.ErrUnauthorized
	}

	sessionID, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	expiresAt := time.Now().Add(sessionDuration)
	if err := s.userRepo.CreateSession(user.ID, sessionID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{User: user, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// ValidateSession resolves a session id to its user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	return s.userRepo.GetUserBySession(sessionID)
}

// Logout closes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// RequestPasswordReset issues a reset token and emails the reset link. It
// reports success for unknown addresses to avoid account enumeration.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.userRepo.CreateVerificationToken(user.ID, token, resetTokenPurpose, time.Now().Add(resetTokenLifetime)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/accounts/password-reset/%s/", s.baseURL, token)
	return s.emailService.SendPasswordResetEmail(user.Email, resetURL)
}
