// Package contact relays the site's contact form to the owner's inbox.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"
)

var ErrNotConfigured = errors.New("SMTP credentials not configured")

// Message is one contact form submission.
type Message struct {
	Name  string
	Email string
	Body  string
}

// Validate trims the fields and checks that they are usable.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Body = strings.TrimSpace(m.Body)

	if m.Name == "" || m.Email == "" || m.Body == "" {
		return errors.New("name, email and message are required")
	}
	if strings.ContainsAny(m.Name, "\r\n") {
		return errors.New("name must be a single line")
	}
	addr, err := mail.ParseAddress(m.Email)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	m.Email = addr.Address
	return nil
}

type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	Host string
	Port string
	User string
	Pass string
	To   string

	send SendFunc
}

// NewMailer sends through smtp.SendMail. An empty to address falls back to
// the SMTP user.
func NewMailer(host, port, user, pass, to string) *Mailer {
	if to == "" {
		to = user
	}
	return &Mailer{Host: host, Port: port, User: user, Pass: pass, To: to, send: smtp.SendMail}
}

// WithSendFunc replaces the transport, mainly for tests.
func (m *Mailer) WithSendFunc(fn SendFunc) *Mailer {
	m.send = fn
	return m
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m.User == "" || m.Pass == "" {
		return ErrNotConfigured
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	if err := m.send(m.Host+":"+m.Port, auth, m.User, []string{m.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

func (m *Mailer) compose(msg Message) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Body)

	return []byte("To: " + m.To + "\r\n" +
		"Subject: Portfolio Contact: " + msg.Name + "\r\n" +
		"From: " + m.User + "\r\n" +
		"Reply-To: " + msg.Email + "\r\n" +
		"\r\n" +
		body + "\r\n")
}
