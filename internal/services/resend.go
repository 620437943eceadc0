package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stagepass/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailService sends transactional email via the Resend API
type ResendEmailService struct {
	apiKey string
	email  config.EmailConfig
	client *http.Client
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(cfg config.ResendConfig, email config.EmailConfig) *ResendEmailService {
	return &ResendEmailService{
		apiKey: cfg.APIKey,
		email:  email,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// resendEmailRequest is the request structure for the Resend API
type resendEmailRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html,omitempty"`
	Text    string      `json:"text,omitempty"`
	Tags    []resendTag `json:"tags,omitempty"`
}

// resendTag categorizes email for Resend's dashboard
type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (s *ResendEmailService) fromField() string {
	if s.email.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.email.FromName, s.email.FromEmail)
	}
	return s.email.FromEmail
}

// SendPurchaseConfirmation sends the purchase confirmation email
func (s *ResendEmailService) SendPurchaseConfirmation(email, itemName string, quantity int, amountDisplay string) error {
	subject, text := purchaseConfirmationBody(itemName, quantity, amountDisplay)
	return s.send(resendEmailRequest{
		From:    s.fromField(),
		To:      []string{email},
		Subject: subject,
		Text:    text,
		Tags:    []resendTag{{Name: "category", Value: "purchase_confirmation"}},
	})
}

// SendAdminAlert sends an operational alert to the admin address
func (s *ResendEmailService) SendAdminAlert(subject, body string) error {
	if s.email.AdminEmail == "" {
		return fmt.Errorf("no admin email configured")
	}
	return s.send(resendEmailRequest{
		From:    s.fromField(),
		To:      []string{s.email.AdminEmail},
		Subject: subject,
		Text:    body,
		Tags:    []resendTag{{Name: "category", Value: "admin_alert"}},
	})
}

// SendVerificationEmail sends the account confirmation email
func (s *ResendEmailService) SendVerificationEmail(email, name, confirmURL string) error {
	text := fmt.Sprintf("Hi %s,\n\nConfirm your account by visiting:\n\n%s\n\nIf you did not register, ignore this email.", name, confirmURL)
	return s.send(resendEmailRequest{
		From:    s.fromField(),
		To:      []string{email},
		Subject: "Confirm your account",
		Text:    text,
		Tags:    []resendTag{{Name: "category", Value: "verification"}},
	})
}

// SendPasswordResetEmail sends the password reset email
func (s *ResendEmailService) SendPasswordResetEmail(email, resetURL string) error {
	text := fmt.Sprintf("We received a request to reset your password.\n\nReset it here:\n\n%s\n\nThis link expires in 1 hour. If you didn't request a reset, ignore this email.", resetURL)
	return s.send(resendEmailRequest{
		From:    s.fromField(),
		To:      []string{email},
		Subject: "Password Reset Request",
		Text:    text,
		Tags:    []resendTag{{Name: "category", Value: "password_reset"}},
	})
}

func (s *ResendEmailService) send(req resendEmailRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr resendErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, string(body))
	}

	return nil
}
