package services

import "log"

// MockEmailService logs instead of sending; used when no provider is
// configured so development environments never send real mail
type MockEmailService struct{}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) SendPurchaseConfirmation(email, itemName string, quantity int, amountDisplay string) error {
	log.Printf("Mock Email: purchase confirmation to %s for %q (qty %d, %s)", email, itemName, quantity, amountDisplay)
	return nil
}

func (s *MockEmailService) SendAdminAlert(subject, body string) error {
	log.Printf("Mock Email: admin alert %q: %s", subject, body)
	return nil
}

func (s *MockEmailService) SendVerificationEmail(email, name, confirmURL string) error {
	log.Printf("Mock Email: verification to %s (%s): %s", email, name, confirmURL)
	return nil
}

func (s *MockEmailService) SendPasswordResetEmail(email, resetURL string) error {
	log.Printf("Mock Email: password reset to %s: %s", email, resetURL)
	return nil
}
