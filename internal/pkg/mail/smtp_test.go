package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTP_Send(t *testing.T) {
	// Arrange
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: "hr@corp.test"})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	var gotFrom string
	var gotTo []string
	var gotRaw string
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if addr != "localhost:2525" {
			t.Fatalf("unexpected addr %s", addr)
		}
		gotFrom, gotTo, gotRaw = from, to, string(msg)
		return nil
	}

	// Act
	err = s.Send(context.Background(), Message{
		To:       []string{"jane@corp.test"},
		Cc:       []string{"lead@corp.test"},
		Subject:  "Evaluation assigned",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})

	// Assert
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotFrom != "hr@corp.test" || len(gotTo) != 2 {
		t.Fatalf("unexpected envelope: %s %v", gotFrom, gotTo)
	}
	if !strings.Contains(gotRaw, "multipart/alternative") || !strings.Contains(gotRaw, "<p>html</p>") {
		t.Fatalf("unexpected body: %s", gotRaw)
	}
}

func TestSMTP_SendErrors(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 25})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	if err := s.Send(context.Background(), Message{}); !errors.Is(err, ErrSMTPNoRecipients) {
		t.Fatalf("expected ErrSMTPNoRecipients, got %v", err)
	}
	if err := s.Send(context.Background(), Message{To: []string{"a@b.c"}}); !errors.Is(err, ErrSMTPNoSender) {
		t.Fatalf("expected ErrSMTPNoSender, got %v", err)
	}
	if _, err := NewSMTP(SMTPConfig{}); !errors.Is(err, ErrSMTPHostPortRequired) {
		t.Fatalf("expected ErrSMTPHostPortRequired, got %v", err)
	}
}

func TestBuildBody_TextOnly(t *testing.T) {
	body, ct := buildBody(Message{TextBody: "hello"})
	if body != "hello" || !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected: %q %q", body, ct)
	}
}
