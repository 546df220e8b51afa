package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

var errProvider = errors.New("provider rejected message")

type SMSConfig struct {
	// Endpoint receives a form POST with To, From and Body.
	Endpoint   string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// SMS posts to a Twilio-compatible messages endpoint.
type SMS struct {
	cfg    SMSConfig
	client *http.Client
}

// NewSMS returns nil when the provider is not configured, which leaves the
// channel unregistered.
func NewSMS(cfg SMSConfig) *SMS {
	if cfg.Endpoint == "" || cfg.From == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMS{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (s *SMS) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if msg.Contact.Phone == "" {
		return entity.ErrInvalidContact
	}

	form := url.Values{}
	form.Set("To", msg.Contact.Phone)
	form.Set("From", s.cfg.From)
	form.Set("Body", smsText(msg))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.cfg.AccountSID != "" {
		req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: sms provider status %d", entity.ErrGatewayNotConfigured, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: sms provider status %d: %s", entity.ErrInvalidContact, resp.StatusCode, strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("%w: sms status %d: %s", errProvider, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// smsText keeps a message within one concatenated SMS.
func smsText(msg entity.OutboundMessage) string {
	text := msg.Title + ": " + msg.Body
	if msg.Link != "" {
		text += " " + msg.Link
	}
	if r := []rune(text); len(r) > 459 {
		text = string(r[:456]) + "..."
	}
	return text
}
