// Package mailer sends transactional email. Sending happens strictly after
// the owning transaction has committed and is fire-and-forget: a failed email
// is logged, never propagated to the request that triggered it.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/fieldops/sopdesk/pkg/configuration"
)

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type smtpMailer struct {
	opts *configuration.SMTPOptions
}

func NewSMTPMailer(opts *configuration.SMTPOptions) Mailer {
	return &smtpMailer{opts: opts}
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.opts.From, to, subject, htmlBody,
	)

	var auth smtp.Auth
	if m.opts.User != "" {
		auth = smtp.PlainAuth("", m.opts.User, m.opts.Password, m.opts.Host)
	}
	return smtp.SendMail(m.opts.Addr(), auth, m.opts.From, []string{to}, []byte(msg))
}

// SendAsync dispatches in a goroutine, logging failures. Callers use it for
// notifications that must not affect the response.
func SendAsync(m Mailer, log *logrus.Logger, to, subject, htmlBody string) {
	go func() {
		if err := m.Send(to, subject, htmlBody); err != nil {
			log.WithError(err).WithField("to", to).Error("failed to send email")
		}
	}()
}
