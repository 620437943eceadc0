package models

import (
	"encoding/gob"
	"strings"
)

func init() {
	// PendingCheckout travels through the cookie session store.
	gob.Register(&PendingCheckout{})
}

// PendingCheckout is the single pending-purchase slot held in a browser
// session between the review step and the pay step. It is overwritten by each
// new "proceed to pay" action and never persisted durably; when the session
// is lost the flow restarts from the review step.
type PendingCheckout struct {
	Purchasable  PurchasableRef
	Quantity     int
	PromoCode    string // as typed by the user
	ContactEmail string
	Reference    string // correlation id for logs
}

// Validate validates the pending checkout data
func (c *PendingCheckout) Validate() error {
	if !c.Purchasable.Valid() {
		return NewValidationError("purchasable", "unknown purchasable reference")
	}
	if c.Quantity < 1 {
		return NewValidationError("quantity", "quantity must be at least 1")
	}
	if strings.TrimSpace(c.ContactEmail) != "" && !ValidEmail(c.ContactEmail) {
		return NewValidationError("email", "email format is invalid")
	}
	return nil
}
