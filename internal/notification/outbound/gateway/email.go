package gateway

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/mail"
)

type Email struct {
	client mail.Mail
	prefix string
}

// NewEmail sends through client. subjectPrefix is prepended to every subject,
// for example "[HR] ".
func NewEmail(client mail.Mail, subjectPrefix string) *Email {
	return &Email{client: client, prefix: subjectPrefix}
}

func (e *Email) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if msg.Contact.Email == "" {
		return entity.ErrInvalidContact
	}

	return e.client.Send(ctx, mail.Message{
		To:       []string{msg.Contact.Email},
		Subject:  e.prefix + msg.Title,
		TextBody: textBody(msg),
		HTMLBody: htmlBody(msg),
	})
}

func textBody(msg entity.OutboundMessage) string {
	if msg.Link == "" {
		return msg.Body
	}
	return msg.Body + "\n\n" + msg.Link
}

func htmlBody(msg entity.OutboundMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(msg.Title))
	for line := range strings.SplitSeq(msg.Body, "\n") {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(line))
	}
	if msg.Link != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Open</a></p>`, html.EscapeString(msg.Link))
	}
	return b.String()
}
