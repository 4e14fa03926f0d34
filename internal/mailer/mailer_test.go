package mailer

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

func TestNewFallsBackToLogging(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	m := New(config.SMTPConfig{}, logg)
	if _, ok := m.(*logMailer); !ok {
		t.Fatalf("expected log mailer for empty config, got %T", m)
	}
	if err := m.Send(context.Background(), "guest@example.com", "subject", "body"); err != nil {
		t.Fatalf("log mailer should never fail: %v", err)
	}

	m = New(config.SMTPConfig{Host: "smtp.example.com", Username: "u", Password: "p", From: "noreply@example.com"}, logg)
	if _, ok := m.(*smtpMailer); !ok {
		t.Fatalf("expected smtp mailer for full config, got %T", m)
	}
}

func TestBuildRaw(t *testing.T) {
	raw := string(buildRaw("Tabac <noreply@tabac.example>", "guest@example.com", "Order confirmed", "Thanks!"))
	for _, want := range []string{
		"From: Tabac <noreply@tabac.example>\r\n",
		"To: guest@example.com\r\n",
		"Subject: Order confirmed\r\n",
		"\r\n\r\nThanks!",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected raw message to contain %q, got:\n%s", want, raw)
		}
	}
}
