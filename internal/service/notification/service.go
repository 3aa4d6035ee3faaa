package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/hopewell-clinic/booking-api/internal/config"
	"github.com/hopewell-clinic/booking-api/internal/model"
)

// Service delivers booking notifications.
type Service interface {
	BookingConfirmed(ctx context.Context, appointment *model.Appointment) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
	logger *zerolog.Logger
}

// NewEmailService sends confirmation mail over SMTP.
func NewEmailService(cfg config.SMTPConfig, logger *zerolog.Logger) Service {
	return &emailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *emailService) BookingConfirmed(_ context.Context, apt *model.Appointment) error {
	if apt.PatientEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", apt.PatientEmail)
	m.SetHeader("Subject", "Your appointment request was received")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your appointment on %s from %s to %s has been received and is awaiting confirmation.\n\nReference: %s\n",
		apt.Date.Format(model.DateOnly),
		apt.StartTime.String(),
		apt.EndTime.String(),
		apt.ID.String(),
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

type noopService struct{}

// NewNoopService is used when SMTP is not configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) BookingConfirmed(context.Context, *model.Appointment) error {
	return nil
}
