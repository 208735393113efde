// Package notify sends reminder emails over SMTP.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	dialer dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify: send to %s: %w", to, err)
	}
	log.Debug().Str("to", to).Msg("Reminder email sent")
	return nil
}

func MedicationReminderSubject(medication string) string {
	return fmt.Sprintf("Medication reminder: %s", medication)
}

func MedicationReminderBody(patientName, medication, dosage, at string) string {
	return fmt.Sprintf("Hello %s,\n\nThis is a reminder to take %s (%s) at %s.\n\nIf you have any questions please contact your healthcare provider.\n", patientName, medication, dosage, at)
}
