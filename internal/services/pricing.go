package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"stagepass/internal/models"
)

// PromoMessageInvalid is shown when an entered code does not match
const PromoMessageInvalid = "Invalid code"

// Quote is the result of pricing one checkout. It is computed identically at
// review time and at pay time, so both steps reach the same number for the
// same inputs.
type Quote struct {
	Total           decimal.Decimal // rounded to 2 fractional digits
	AmountCents     int64           // minor currency units for the gateway
	Display         string          // e.g. "$120.00"
	DiscountPercent int
	PromoMessage    string // "" | "<N>% discount applied" | "Invalid code"
}

// ComputePrice computes the final charge for quantity units at basePrice,
// applying the purchasable's promotional discount when enteredCode matches
// promoCode case-insensitively. Quantities below 1 are rejected, never
// clamped. The result is never negative: the discount is clamped to [0,100]
// even when the stored value is out of range. Side-effect free.
func ComputePrice(basePrice decimal.Decimal, quantity int, enteredCode, promoCode string, promoDiscount int) (*Quote, error) {
	if quantity < 1 {
		return nil, models.NewValidationError("quantity", "quantity must be at least 1")
	}
	if basePrice.IsNegative() {
		return nil, models.NewValidationError("price", "price cannot be negative")
	}

	discount := 0
	message := ""
	if strings.TrimSpace(enteredCode) != "" {
		if promoCode != "" && strings.EqualFold(strings.TrimSpace(enteredCode), promoCode) {
			discount = promoDiscount
			if discount < 0 {
				discount = 0
			}
			if discount > 100 {
				discount = 100
			}
			message = fmt.Sprintf("%d%% discount applied", discount)
		} else {
			message = PromoMessageInvalid
		}
	}

	multiplier := decimal.NewFromInt(int64(100 - discount)).Div(decimal.NewFromInt(100))
	total := basePrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(multiplier).Round(2)

	return &Quote{
		Total:           total,
		AmountCents:     total.Mul(decimal.NewFromInt(100)).IntPart(),
		Display:         "$" + total.StringFixed(2),
		DiscountPercent: discount,
		PromoMessage:    message,
	}, nil
}

// PriceEvent prices an event checkout against the event's configured promo
func PriceEvent(event *models.Event, quantity int, enteredCode string) (*Quote, error) {
	return ComputePrice(event.Price, quantity, enteredCode, event.PromoCode, event.PromoDiscount)
}

// PriceProduct prices a product checkout; products carry no promo
func PriceProduct(product *models.Product, quantity int) (*Quote, error) {
	return ComputePrice(product.Price, quantity, "", "", 0)
}
