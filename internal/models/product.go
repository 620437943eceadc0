package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a non-event purchasable assigned to a user on purchase,
// e.g. a subscription. Products carry no promotional pricing.
type Product struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductCreateRequest represents the data needed to create a new product
type ProductCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// Validate validates the product data
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "price cannot be negative")
	}
	return nil
}

// Validate validates product creation data
func (req *ProductCreateRequest) Validate() error {
	p := Product{Name: req.Name, Description: req.Description, Price: req.Price}
	return p.Validate()
}
