package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/pkg/logger"
)

// Notifier defines the notifications the registration and sign-in flows send
type Notifier interface {
	NotifyAdminOfNewRegistration(ctx context.Context, adminEmail string, applicant *models.User) error
	NotifyApplicantConfirmation(ctx context.Context, applicant *models.User) error
	NotifyAdminReminder(ctx context.Context, adminEmail string, applicant *models.User) error
	NotifyApplicantDecision(ctx context.Context, applicant *models.User, status models.RegistrationStatus) error
	SendMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error
}

// AWSSESNotifier sends notifications using AWS SES
type AWSSESNotifier struct {
	sesClient   *ses.Client
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

// NewAWSSESNotifier creates a new AWS SES notifier
func NewAWSSESNotifier(region, fromAddress, baseURL string, log *slog.Logger) (*AWSSESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESNotifier{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      log,
	}, nil
}

func (s *AWSSESNotifier) NotifyAdminOfNewRegistration(ctx context.Context, adminEmail string, applicant *models.User) error {
	subject := "New account registration awaiting review"
	textBody := fmt.Sprintf(`A new account registration is awaiting your review.

Name:  %s
Email: %s
Title: %s
Phone: %s

Review it at %s/admin
`, applicant.Name, applicant.Email, applicant.Title, applicant.Phone, s.baseURL)

	return s.send(ctx, adminEmail, subject, textBody)
}

func (s *AWSSESNotifier) NotifyApplicantConfirmation(ctx context.Context, applicant *models.User) error {
	subject := "We received your registration"
	textBody := fmt.Sprintf(`Hi %s,

Thanks for registering. Your account is awaiting approval by an administrator.
You will be able to sign in once it has been approved.

This is an automated message. Please do not reply to this email.
`, applicant.Name)

	return s.send(ctx, applicant.Email, subject, textBody)
}

func (s *AWSSESNotifier) NotifyAdminReminder(ctx context.Context, adminEmail string, applicant *models.User) error {
	subject := "Reminder: account registration still awaiting review"
	textBody := fmt.Sprintf(`%s (%s) tried to register again while their earlier
registration is still awaiting review.

Review it at %s/admin
`, applicant.Name, applicant.Email, s.baseURL)

	return s.send(ctx, adminEmail, subject, textBody)
}

func (s *AWSSESNotifier) NotifyApplicantDecision(ctx context.Context, applicant *models.User, status models.RegistrationStatus) error {
	subject := "Your account registration was reviewed"
	var textBody string
	switch status {
	case models.StatusApproved:
		textBody = fmt.Sprintf(`Hi %s,

Your account has been approved. You can now sign in at %s/signin.
`, applicant.Name, s.baseURL)
	default:
		textBody = fmt.Sprintf(`Hi %s,

Your account registration was not approved at this time.
`, applicant.Name)
	}

	return s.send(ctx, applicant.Email, subject, textBody)
}

func (s *AWSSESNotifier) SendMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", s.baseURL, url.QueryEscape(token))
	minutes := int(time.Until(expiresAt).Minutes())

	subject := "Your sign-in link"
	textBody := fmt.Sprintf(`Click the link below to sign in:

%s

This link will expire in %d minutes. If you did not request it, you can
safely ignore this email.
`, link, minutes)

	return s.send(ctx, email, subject, textBody)
}

func (s *AWSSESNotifier) send(ctx context.Context, to, subject, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", logger.SanitizedEmail(to)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", logger.SanitizedEmail(to)),
		slog.String("message_id", *result.MessageId))

	return nil
}

// LogNotifier logs notifications instead of sending them. Used in local
// development and tests where SES is not configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (s *LogNotifier) NotifyAdminOfNewRegistration(ctx context.Context, adminEmail string, applicant *models.User) error {
	s.logger.Info("email disabled, skipping admin registration notification",
		slog.String("admin_email", logger.SanitizedEmail(adminEmail)),
		slog.String("applicant_id", applicant.ID))
	return nil
}

func (s *LogNotifier) NotifyApplicantConfirmation(ctx context.Context, applicant *models.User) error {
	s.logger.Info("email disabled, skipping applicant confirmation",
		slog.String("applicant_id", applicant.ID))
	return nil
}

func (s *LogNotifier) NotifyAdminReminder(ctx context.Context, adminEmail string, applicant *models.User) error {
	s.logger.Info("email disabled, skipping admin reminder",
		slog.String("admin_email", logger.SanitizedEmail(adminEmail)),
		slog.String("applicant_id", applicant.ID))
	return nil
}

func (s *LogNotifier) NotifyApplicantDecision(ctx context.Context, applicant *models.User, status models.RegistrationStatus) error {
	s.logger.Info("email disabled, skipping decision notification",
		slog.String("applicant_id", applicant.ID),
		slog.String("status", string(status)))
	return nil
}

func (s *LogNotifier) SendMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error {
	s.logger.Info("email disabled, magic link not sent",
		slog.String("email", logger.SanitizedEmail(email)),
		slog.Time("expires_at", expiresAt))
	return nil
}
