package services

import (
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Mailer is what the domain services need from the mail layer.
// *EmailService satisfies it; tests substitute a fake.
type Mailer interface {
	SendWelcomeEmail(to, firstName string) error
	SendPaymentReceipt(to string, amountCents int64, currency, reference string) error
}

// EmailService sends transactional mail through Resend. Delivery failures
// are the caller's to log, never to fail a request over.
type EmailService struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

func NewEmailService(apiKey, from string, logger *slog.Logger) *EmailService {
	return &EmailService{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (s *EmailService) SendWelcomeEmail(to, firstName string) error {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your dojo membership is active. Show the QR badge from your profile at the door to check in.</p>",
		firstName,
	)
	return s.send(to, "Welcome to the dojo", html)
}

func (s *EmailService) SendPaymentReceipt(to string, amountCents int64, currency, reference string) error {
	html := fmt.Sprintf(
		"<p>We received your payment of %.2f %s.</p><p>Reference: %s</p>",
		float64(amountCents)/100, currency, reference,
	)
	return s.send(to, "Payment received", html)
}

func (s *EmailService) send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email %q to %s: %w", subject, to, err)
	}
	s.logger.Debug("email sent", slog.String("to", to), slog.String("id", sent.Id))
	return nil
}
