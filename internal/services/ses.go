package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "stagepass/internal/config"
)

// SESEmailService sends transactional email via AWS SES
type SESEmailService struct {
	client *sesv2.Client
	email  appconfig.EmailConfig
}

// NewSESEmailService creates a new SES email service
func NewSESEmailService(cfg appconfig.SESConfig, email appconfig.EmailConfig) (*SESEmailService, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("SES credentials not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESEmailService{
		client: sesv2.NewFromConfig(awsCfg),
		email:  email,
	}, nil
}

// SendPurchaseConfirmation sends the purchase confirmation email
func (s *SESEmailService) SendPurchaseConfirmation(email, itemName string, quantity int, amountDisplay string) error {
	subject, text := purchaseConfirmationBody(itemName, quantity, amountDisplay)
	return s.send(email, subject, text)
}

// SendAdminAlert sends an operational alert to the admin address
func (s *SESEmailService) SendAdminAlert(subject, body string) error {
	if s.email.AdminEmail == "" {
		return fmt.Errorf("no admin email configured")
	}
	return s.send(s.email.AdminEmail, subject, body)
}

// SendVerificationEmail sends the account confirmation email
func (s *SESEmailService) SendVerificationEmail(email, name, confirmURL string) error {
	text := fmt.Sprintf("Hi %s,\n\nConfirm your account by visiting:\n\n%s\n\nIf you did not register, ignore this email.", name, confirmURL)
	return s.send(email, "Confirm your account", text)
}

// SendPasswordResetEmail sends the password reset email
func (s *SESEmailService) SendPasswordResetEmail(email, resetURL string) error {
	text := fmt.Sprintf("We received a request to reset your password.\n\nReset it here:\n\n%s\n\nThis link expires in 1 hour. If you didn't request a reset, ignore this email.", resetURL)
	return s.send(email, "Password Reset Request", text)
}

func (s *SESEmailService) send(to, subject, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	from := s.email.FromEmail
	if s.email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.email.FromName, s.email.FromEmail)
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(text),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}
