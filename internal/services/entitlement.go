package services

import (
	"context"
	"fmt"
	"log"

	"stagepass/internal/models"
)

// GrantStatus describes the durable outcome of one grant attempt
type GrantStatus string

const (
	// GrantStatusGranted means a new entitlement row was written
	GrantStatusGranted GrantStatus = "granted"
	// GrantStatusAlreadyHeld means the purchaser already held the entitlement
	GrantStatusAlreadyHeld GrantStatus = "already_held"
	// GrantStatusGuestNotified means no durable membership exists for guests;
	// the notification is the grant's only effect
	GrantStatusGuestNotified GrantStatus = "guest_notified"
)

// GrantRequest describes one purchase to finalize
type GrantRequest struct {
	Ref           models.PurchasableRef
	Purchaser     models.Purchaser
	Quantity      int
	PromoCode     string
	BillingEmail  string // recovered from the processor's charge, best effort
	AmountDisplay string // formatted charge for the confirmation email
}

// GrantResult reports what one grant attempt did
type GrantResult struct {
	Status           GrantStatus
	ItemName         string
	Email            string // resolved notification address, may be empty
	NotificationSent bool
}

// EntitlementService idempotently attaches purchased items to purchasers and
// triggers the confirmation notification. Every effect is safe to repeat:
// webhook redelivery of the same purchase converges on the same state.
type EntitlementService struct {
	eventRepo    EventRepository
	productRepo  ProductRepository
	emailService EmailService
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(eventRepo EventRepository, productRepo ProductRepository, emailService EmailService) *EntitlementService {
	return &EntitlementService{
		eventRepo:    eventRepo,
		productRepo:  productRepo,
		emailService: emailService,
	}
}

// Grant finalizes one purchase: it resolves the purchasable, records set
// membership for registered purchasers, and sends the confirmation email to
// the best available address. A missing purchasable returns the appropriate
// not-found error; the caller acknowledges and never retries. Notification
// failure never rolls back the entitlement; it is escalated to the admin
// address instead.
func (s *EntitlementService) Grant(ctx context.Context, req *GrantRequest) (*GrantResult, error) {
	itemName, addPurchaser, err := s.resolve(req.Ref)
	if err != nil {
		return nil, err
	}

	result := &GrantResult{
		ItemName: itemName,
		Email:    req.Purchaser.ResolveEmail(req.BillingEmail),
	}

	if req.Purchaser.IsRegistered() {
		added, err := addPurchaser(req.Purchaser.User.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to grant %s to user %d: %w", req.Ref, req.Purchaser.User.ID, err)
		}
		if added {
			result.Status = GrantStatusGranted
		} else {
			result.Status = GrantStatusAlreadyHeld
		}
	} else {
		// Guests have no durable identity; the notification is the only
		// durable effect of the grant.
		result.Status = GrantStatusGuestNotified
	}

	s.notify(result, req)
	return result, nil
}

// resolve looks up the purchasable and returns its display name together with
// the variant's purchaser-set insert
func (s *EntitlementService) resolve(ref models.PurchasableRef) (string, func(userID int) (bool, error), error) {
	switch ref.Kind {
	case models.KindEvent:
		event, err := s.eventRepo.GetByID(ref.ID)
		if err != nil {
			return "", nil, err
		}
		return event.Title, func(userID int) (bool, error) {
			return s.eventRepo.AddPurchaser(event.ID, userID)
		}, nil
	case models.KindProduct:
		product, err := s.productRepo.GetByID(ref.ID)
		if err != nil {
			return "", nil, err
		}
		return product.Name, func(userID int) (bool, error) {
			return s.productRepo.AddPurchaser(product.ID, userID)
		}, nil
	default:
		return "", nil, models.NewValidationError("purchasable", fmt.Sprintf("unknown purchasable kind %q", ref.Kind))
	}
}

// notify sends the purchase confirmation best-effort. Send failures and
// unresolvable addresses are escalated to the operational channel and logged;
// they never affect the entitlement outcome.
func (s *EntitlementService) notify(result *GrantResult, req *GrantRequest) {
	if result.Email == "" {
		log.Printf("Entitlement: no notification address for %q (status %s)", result.ItemName, result.Status)
		s.alert("Purchase confirmation undeliverable",
			fmt.Sprintf("No email address could be resolved for a purchase of %q (promo %q).", result.ItemName, req.PromoCode))
		return
	}

	if err := s.emailService.SendPurchaseConfirmation(result.Email, result.ItemName, req.Quantity, req.AmountDisplay); err != nil {
		notifErr := &models.NotificationError{Recipient: result.Email, Err: err}
		log.Printf("Entitlement: %v", notifErr)
		s.alert("Purchase confirmation failed",
			fmt.Sprintf("Sending the confirmation for %q to %s failed: %v", result.ItemName, result.Email, err))
		return
	}
	result.NotificationSent = true
}

func (s *EntitlementService) alert(subject, body string) {
	if err := s.emailService.SendAdminAlert(subject, body); err != nil {
		log.Printf("Entitlement: admin alert %q failed: %v", subject, err)
	}
}
