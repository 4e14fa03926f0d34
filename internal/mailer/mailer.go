// Package mailer delivers transactional email over SMTP, falling back to
// log-only delivery when no credentials are configured so local setups
// work without a mail server.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// Mailer sends a plain-text email to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New picks the SMTP mailer when credentials exist, the logging
// fallback otherwise.
func New(cfg config.SMTPConfig, logg *logger.Logger) Mailer {
	if cfg.Configured() {
		return &smtpMailer{cfg: cfg}
	}
	return &logMailer{logg: logg}
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	cfg := m.cfg
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	raw := buildRaw(from, to, subject, body)

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	// Implicit TLS on 465, STARTTLS everywhere else.
	if cfg.Port == "465" {
		return sendTLS(addr, auth, cfg.From, to, raw, cfg.Host)
	}
	return smtp.SendMail(addr, auth, cfg.From, []string{to}, raw)
}

func buildRaw(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func sendTLS(addr string, auth smtp.Auth, from, to string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mailer: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(raw)
	return err
}

type logMailer struct {
	logg *logger.Logger
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"to":      to,
		"subject": subject,
	})
	m.logg.Info(logCtx, "smtp not configured, logging email instead")
	return nil
}
