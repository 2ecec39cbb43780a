package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Options struct {
	Enabled  bool
	From     string
	Host     string
	Port     int
	User     string
	Password string
	UseTLS   bool
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string) error {
	return nil
}

type smtpMailer struct {
	opts Options
}

// New returns an SMTP mailer, or a mailer that drops everything when mail is
// disabled or no host is configured.
func New(opts Options) Mailer {
	if !opts.Enabled || opts.Host == "" {
		return noopMailer{}
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	return &smtpMailer{opts: opts}
}

func (s *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	addr := net.JoinHostPort(s.opts.Host, fmt.Sprint(s.opts.Port))
	msg := buildMessage(s.opts.From, to, subject, body)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.opts.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.opts.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.opts.Host}); err != nil {
			return err
		}
	}
	if s.opts.User != "" {
		if err := client.Auth(smtp.PlainAuth("", s.opts.User, s.opts.Password, s.opts.Host)); err != nil {
			return err
		}
	}

	if err := client.Mail(s.opts.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mimeSubject(subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + body)
}

// mimeSubject Q-encodes subjects that are not plain ASCII.
func mimeSubject(subject string) string {
	for _, r := range subject {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", subject)
		}
	}
	return subject
}
