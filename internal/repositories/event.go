package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"stagepass/internal/models"
)

// EventRepository handles event data operations, including the purchaser set
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, date, livestream_url, content, price, promo_code, promo_discount, created_at, updated_at`

func scanEvent(scanner interface{ Scan(...any) error }) (*models.Event, error) {
	event := &models.Event{}
	err := scanner.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.LivestreamURL,
		&event.Content,
		&event.Price,
		&event.PromoCode,
		&event.PromoDiscount,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return event, nil
}

// Create creates a new event
func (r *EventRepository) Create(req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO events (title, date, livestream_url, content, price, promo_code, promo_discount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + eventColumns

	return scanEvent(r.db.QueryRow(query,
		req.Title, req.Date, req.LivestreamURL, req.Content, req.Price, req.PromoCode, req.PromoDiscount, time.Now()))
}

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(id int) (*models.Event, error) {
	return scanEvent(r.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// GetUpcoming returns future events ordered by date
func (r *EventRepository) GetUpcoming() ([]*models.Event, error) {
	rows, err := r.db.Query(`SELECT `+eventColumns+` FROM events WHERE date > $1 ORDER BY date`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// AddPurchaser adds a user to the event's purchaser set. Membership is keyed
// on (event_id, user_id), so re-adding an existing member is a no-op; the
// returned bool reports whether a new row was inserted.
func (r *EventRepository) AddPurchaser(eventID, userID int) (bool, error) {
	result, err := r.db.Exec(
		`INSERT INTO event_purchasers (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add event purchaser: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// HasPurchaser reports whether the user already holds this entitlement
func (r *EventRepository) HasPurchaser(eventID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM event_purchasers WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event purchaser: %w", err)
	}
	return exists, nil
}

// GetPurchasedByUser returns all events the user holds entitlements to
func (r *EventRepository) GetPurchasedByUser(userID int) ([]*models.Event, error) {
	query := `
		SELECT e.id, e.title, e.date, e.livestream_url, e.content, e.price, e.promo_code, e.promo_discount, e.created_at, e.updated_at
		FROM events e
		JOIN event_purchasers p ON p.event_id = e.id
		WHERE p.user_id = $1
		ORDER BY e.date`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchased events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
