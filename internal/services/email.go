package services

import (
	"fmt"
	"log"

	"stagepass/internal/config"
)

// NewEmailService selects the transactional email provider from config:
// Resend when an API key is present, SES when AWS credentials are, otherwise
// a logging mock so development environments never send real mail.
func NewEmailService(cfg *config.Config) (EmailService, error) {
	switch cfg.Email.Provider {
	case "resend":
		if cfg.Resend.APIKey == "" {
			return nil, fmt.Errorf("resend provider selected but RESEND_API_KEY is empty")
		}
		log.Println("Email service: using Resend API")
		return NewResendEmailService(cfg.Resend, cfg.Email), nil
	case "ses":
		svc, err := NewSESEmailService(cfg.SES, cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES email service: %w", err)
		}
		log.Println("Email service: using AWS SES")
		return svc, nil
	case "", "mock":
		log.Println("Email service: using mock (no provider configured)")
		return NewMockEmailService(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}

// purchaseConfirmationBody renders the shared plain-text confirmation used by
// every provider
func purchaseConfirmationBody(itemName string, quantity int, amountDisplay string) (subject, text string) {
	subject = "Purchase confirmed"
	text = fmt.Sprintf("Thanks for your purchase!\n\nItem: %s\nQuantity: %d\n", itemName, quantity)
	if amountDisplay != "" {
		text += fmt.Sprintf("Amount: %s\n", amountDisplay)
	}
	text += "\nWe look forward to seeing you."
	return subject, text
}
