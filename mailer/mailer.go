// Package mailer delivers the password reset email.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
)

const resetSubject = "Reset your password"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for a short time.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>
</body>
</html>
`))

type resetData struct {
	Name string
	Link string
}

type SMTPConfig struct {
	// Addr is host:port of the SMTP server.
	Addr     string
	Host     string
	From     string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	const op = "SMTPMailer.SendPasswordReset"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg, err := buildResetMessage(m.cfg.From, to, name, link)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	if err := m.send(m.cfg.Addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func buildResetMessage(from, to, name, link string) ([]byte, error) {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, resetData{Name: name, Link: link}); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", resetSubject)
	msg.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// LogMailer writes reset links to the log instead of sending them. It is used
// when no SMTP server is configured.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	slog.With("op", "LogMailer.SendPasswordReset").Info("password reset link", "to", to, "link", link)
	return nil
}
