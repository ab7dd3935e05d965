package email

import (
	"context"
	"fmt"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"gopkg.in/gomail.v2"
)

type Email struct {
	config *config.Config
	logger *logger.Logger
	cache  *EmailTemplateCache
}

func New(cfg *config.Config, log *logger.Logger) (*Email, error) {
	cache, err := NewEmailTemplateCache(templateFS, 10)
	if err != nil {
		return nil, err
	}

	return &Email{
		config: cfg,
		logger: log,
		cache:  cache,
	}, nil
}

func (e *Email) Send(ctx context.Context, input *SendEmailInput) error {
	// In dev mode
	if e.config.IsDev {
		e.logger.Info().
			Str("to", input.To).
			Str("subject", input.Subject).
			Str("body", input.Body).
			Msg("email not sent in development")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.config.Email.From)
	m.SetHeader("To", input.To)
	m.SetHeader("Subject", input.Subject)
	m.SetBody("text/html", input.Body)

	d := gomail.NewDialer(e.config.Email.SMTPHost, e.config.Email.SMTPPort, e.config.Email.From, e.config.Email.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// NotifyRegistration tells the office about a completed registration.
func (e *Email) NotifyRegistration(ctx context.Context, data RegistrationSubmittedData) error {
	data.Organisation = constants.OrganisationName
	body, err := e.cache.Render(EmailTemplateTypeRegistrationSubmitted, data)
	if err != nil {
		return err
	}

	return e.Send(ctx, &SendEmailInput{
		To:      e.config.Email.OfficeEmail,
		Subject: fmt.Sprintf("New registration %s", data.RegistrationID),
		Body:    body,
	})
}

func (e *Email) NotifyPayment(ctx context.Context, data PaymentReceivedData) error {
	data.Organisation = constants.OrganisationName
	body, err := e.cache.Render(EmailTemplateTypePaymentReceived, data)
	if err != nil {
		return err
	}

	return e.Send(ctx, &SendEmailInput{
		To:      e.config.Email.OfficeEmail,
		Subject: fmt.Sprintf("Payment recorded for %s", data.RegistrationID),
		Body:    body,
	})
}
