package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a ticketed event. Tickets can be purchased to attend on a
// specific date, optionally with a promotional discount code.
type Event struct {
	ID            int             `json:"id" db:"id"`
	Title         string          `json:"title" db:"title"`
	Date          time.Time       `json:"date" db:"date"`
	LivestreamURL string          `json:"livestream_url" db:"livestream_url"`
	Content       string          `json:"content" db:"content"`
	Price         decimal.Decimal `json:"price" db:"price"`
	PromoCode     string          `json:"promo_code" db:"promo_code"`
	PromoDiscount int             `json:"promo_discount" db:"promo_discount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// EventCreateRequest represents the data needed to create a new event
type EventCreateRequest struct {
	Title         string          `json:"title"`
	Date          time.Time       `json:"date"`
	LivestreamURL string          `json:"livestream_url"`
	Content       string          `json:"content"`
	Price         decimal.Decimal `json:"price"`
	PromoCode     string          `json:"promo_code"`
	PromoDiscount int             `json:"promo_discount"`
}

// Validate validates the event data
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if e.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if e.Price.IsNegative() {
		return NewValidationError("price", "price cannot be negative")
	}
	if e.LivestreamURL != "" {
		if _, err := url.ParseRequestURI(e.LivestreamURL); err != nil {
			return NewValidationError("livestream_url", "livestream URL is invalid")
		}
	}
	if err := validatePromo(e.PromoCode, e.PromoDiscount); err != nil {
		return err
	}
	return nil
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	e := Event{
		Title:         req.Title,
		Date:          req.Date,
		LivestreamURL: req.LivestreamURL,
		Content:       req.Content,
		Price:         req.Price,
		PromoCode:     req.PromoCode,
		PromoDiscount: req.PromoDiscount,
	}
	return e.Validate()
}

func validatePromo(code string, discount int) error {
	if code == "" {
		if discount != 0 {
			return NewValidationError("promo_discount", "promo discount requires a promo code")
		}
		return nil
	}
	if discount < 0 || discount > 100 {
		return NewValidationError("promo_discount", "promo discount must be between 0 and 100")
	}
	return nil
}

// IsUpcoming reports whether the event has not yet started
func (e *Event) IsUpcoming() bool {
	return e.Date.After(time.Now())
}

// HasPromo reports whether a promotional code is configured
func (e *Event) HasPromo() bool {
	return e.PromoCode != ""
}
