package email

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one outgoing email
type Message struct {
	ToEmail     string
	ToName      string
	Subject     string
	HTMLContent string
	TextContent string
}

// EmailService defines the interface for email operations
type EmailService interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the provider
type Config struct {
	Provider       string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// NewEmailService returns the SendGrid service, or the logging service when the
// provider is "log" or no API key is configured.
func NewEmailService(cfg Config, logger zerolog.Logger) EmailService {
	logger = logger.With().Str("component", "email").Logger()
	if strings.EqualFold(cfg.Provider, "sendgrid") && cfg.SendGridAPIKey != "" {
		return NewSendGridService(cfg, logger)
	}
	logger.Warn().Msg("Email provider not configured - emails will be logged, not sent")
	return NewLogService(logger)
}

// SendGridService sends mail through the SendGrid v3 API
type SendGridService struct {
	client *sendgrid.Client
	from   *mail.Email
	logger zerolog.Logger
}

// NewSendGridService creates a SendGrid backed EmailService
func NewSendGridService(cfg Config, logger zerolog.Logger) *SendGridService {
	return &SendGridService{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

// Send delivers msg; any non-2xx answer is an error
func (s *SendGridService) Send(ctx context.Context, msg Message) error {
	text := msg.TextContent
	if text == "" {
		text = PlainText(msg.HTMLContent)
	}

	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail(msg.ToName, msg.ToEmail), text, msg.HTMLContent)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.ToEmail, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", msg.ToEmail, resp.StatusCode, resp.Body)
	}

	s.logger.Debug().Str("to", msg.ToEmail).Int("status", resp.StatusCode).Msg("Email sent")
	return nil
}

// LogService writes emails to the log instead of sending them. Used in development.
type LogService struct {
	logger zerolog.Logger
}

// NewLogService creates a logging EmailService
func NewLogService(logger zerolog.Logger) *LogService {
	return &LogService{logger: logger}
}

// Send logs msg
func (s *LogService) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info().
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Int("bytes", len(msg.HTMLContent)+len(msg.TextContent)).
		Msg("Email not sent (log provider)")
	return nil
}

var tagPattern = regexp.MustCompile(`(?s)<[^>]*>`)

// PlainText strips tags from an HTML fragment for the text/plain part
func PlainText(htmlContent string) string {
	text := tagPattern.ReplaceAllString(htmlContent, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
