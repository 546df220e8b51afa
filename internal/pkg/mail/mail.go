// Package mail sends email messages. The email gateway depends on the Mail
// interface; SMTP is the only provider wired today.
package mail

import (
	"context"
	"io"
)

type Message struct {
	// From falls back to the provider's default sender when empty.
	From     string
	To       []string
	Cc       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
