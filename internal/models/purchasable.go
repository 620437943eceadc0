package models

import "fmt"

// PurchasableKind distinguishes the two purchasable variants
type PurchasableKind string

const (
	KindEvent   PurchasableKind = "event"
	KindProduct PurchasableKind = "product"
)

// PurchasableRef identifies one purchasable item by kind and id. It is the
// value carried through payment-intent metadata and back in via webhook.
type PurchasableRef struct {
	Kind PurchasableKind
	ID   int
}

func (r PurchasableRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// Valid reports whether the reference names a known kind and a plausible id
func (r PurchasableRef) Valid() bool {
	return (r.Kind == KindEvent || r.Kind == KindProduct) && r.ID > 0
}

// Purchaser is either a registered account or an anonymous guest identified
// solely by an email captured at checkout. Guests are never persisted; they
// exist only for the payment metadata round-trip.
type Purchaser struct {
	User       *User
	GuestEmail string
}

// RegisteredPurchaser wraps an account as a purchaser
func RegisteredPurchaser(u *User) Purchaser {
	return Purchaser{User: u}
}

// GuestPurchaser wraps a checkout email as an anonymous purchaser
func GuestPurchaser(email string) Purchaser {
	return Purchaser{GuestEmail: email}
}

// IsRegistered reports whether the purchaser has a durable account
func (p Purchaser) IsRegistered() bool {
	return p.User != nil
}

// ResolveEmail returns the best notification address: the account email for
// registered purchasers, otherwise the guest email, otherwise the billing
// email recovered from the processor's charge record.
func (p Purchaser) ResolveEmail(billingEmail string) string {
	if p.User != nil && p.User.Email != "" {
		return p.User.Email
	}
	if p.GuestEmail != "" {
		return p.GuestEmail
	}
	return billingEmail
}
