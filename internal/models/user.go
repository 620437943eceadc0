package models

import (
	"regexp"
	"strings"
	"time"
)

// User represents a registered account in the system
type User struct {
	ID               int       `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	Name             string    `json:"name" db:"name"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	EmailVerified    bool      `json:"email_verified" db:"email_verified"`
	StripeCustomerID *string   `json:"-" db:"stripe_customer_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// UserCreateRequest represents the data needed to create a new user
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

var (
	// Email validation regex
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Validate validates the user data
func (u *User) Validate() error {
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	return nil
}

// Validate validates user creation data
func (req *UserCreateRequest) Validate() error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if len(req.Password) < 8 {
		return NewValidationError("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return NewValidationError("email", "email format is invalid")
	}
	return nil
}

// ValidEmail reports whether s looks like a deliverable email address
func ValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// HasStripeCustomer reports whether the account is already linked to an
// external processor customer
func (u *User) HasStripeCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}

// CanLogin checks if the user can log in (active with a verified email)
func (u *User) CanLogin() bool {
	return u.IsActive && u.EmailVerified
}
