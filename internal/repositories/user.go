package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"stagepass/internal/models"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, is_active, email_verified, stripe_customer_id, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.IsActive,
		&user.EmailVerified,
		&user.StripeCustomerID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// Create creates a new user account, inactive until email confirmation
func (r *UserRepository) Create(email, passwordHash, name string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, is_active, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, FALSE, $4, $4)
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(query, email, passwordHash, name, time.Now()))
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Activate marks a user active with a verified email
func (r *UserRepository) Activate(userID int) error {
	result, err := r.db.Exec(
		`UPDATE users SET is_active = TRUE, email_verified = TRUE, updated_at = $2 WHERE id = $1`,
		userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SetStripeCustomerID records the external processor customer linked to this
// account. The partial unique index on stripe_customer_id rejects duplicate
// external ids.
func (r *UserRepository) SetStripeCustomerID(userID int, customerID string) error {
	result, err := r.db.Exec(
		`UPDATE users SET stripe_customer_id = $2, updated_at = $3 WHERE id = $1 AND stripe_customer_id IS NULL`,
		userID, customerID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set stripe customer id: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Either the user is gone or another request already linked a
		// customer; the caller re-reads to find out which.
		return models.ErrDuplicateEntry
	}
	return nil
}

// CreateSession stores a login session
func (r *UserRepository) CreateSession(userID int, sessionID string, expiresAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO user_sessions (session_id, user_id, expires_at) VALUES ($1, $2, $3)`,
		sessionID, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetUserBySession resolves an unexpired session to its user
func (r *UserRepository) GetUserBySession(sessionID string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.name, u.is_active, u.email_verified, u.stripe_customer_id, u.created_at, u.updated_at
		FROM users u
		JOIN user_sessions s ON s.user_id = u.id
		WHERE s.session_id = $1 AND s.expires_at > $2`

	return scanUser(r.db.QueryRow(query, sessionID, time.Now()))
}

// DeleteSession removes a login session
func (r *UserRepository) DeleteSession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM user_sessions WHERE session_id = $1`, sessionID)
	return err
}

// DeleteExpiredSessions removes all expired login sessions
func (r *UserRepository) DeleteExpiredSessions() error {
	_, err := r.db.Exec(`DELETE FROM user_sessions WHERE expires_at <= $1`, time.Now())
	return err
}

// CreateVerificationToken stores a one-time token for account activation or
// password reset
func (r *UserRepository) CreateVerificationToken(userID int, token, purpose string, expiresAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO verification_tokens (token, user_id, purpose, expires_at) VALUES ($1, $2, $3, $4)`,
		token, userID, purpose, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

// ConsumeVerificationToken deletes an unexpired token and returns its user id
func (r *UserRepository) ConsumeVerificationToken(token, purpose string) (int, error) {
	var userID int
	err := r.db.QueryRow(
		`DELETE FROM verification_tokens
		 WHERE token = $1 AND purpose = $2 AND expires_at > $3
		 RETURNING user_id`,
		token, purpose, time.Now()).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, models.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume verification token: %w", err)
	}
	return userID, nil
}
