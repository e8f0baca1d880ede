package services

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/tasknest/backend/domain"
)

// Mailer is the outbound notification sink. Delivery is best effort:
// a failure surfaces to the caller but never rolls back whatever was
// persisted before sending.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}
	return nil
}

// LogMailer stands in when SMTP is not configured. It records that a
// message was dropped without logging the body, which may carry a
// reset secret.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	log.Warn().Str("to", to).Str("subject", subject).
		Msg("SMTP not configured, mail dropped")
	return nil
}
