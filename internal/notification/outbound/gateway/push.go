package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"gopkg.in/telebot.v3"
)

type PushConfig struct {
	Token string
	// URL overrides the Bot API base URL.
	URL string
}

// Push delivers to Telegram chats. Each push token of a contact is a chat id.
type Push struct {
	bot *telebot.Bot
}

// NewPush returns nil when no bot token is configured.
func NewPush(cfg PushConfig) (*Push, error) {
	if cfg.Token == "" {
		return nil, nil
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.Token,
		URL:     cfg.URL,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}

	return &Push{bot: bot}, nil
}

// Send succeeds when at least one chat received the message.
func (p *Push) Send(ctx context.Context, msg entity.OutboundMessage) error {
	text := pushText(msg)

	var (
		sent int
		errs []error
	)
	for _, token := range msg.Contact.PushTokens {
		if err := ctx.Err(); err != nil {
			return err
		}

		chatID, ok := entity.ParsePushToken(token)
		if !ok {
			slog.DebugContext(ctx, "skip non telegram push token", "delivery_id", msg.DeliveryID)
			continue
		}

		if _, err := p.bot.Send(&telebot.User{ID: chatID}, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
			if errors.Is(err, telebot.ErrChatNotFound) || errors.Is(err, telebot.ErrBlockedByUser) {
				errs = append(errs, fmt.Errorf("%w: %v", entity.ErrInvalidContact, err))
				continue
			}
			errs = append(errs, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		return nil
	}
	if len(errs) == 0 {
		return entity.ErrInvalidContact
	}

	return pushFailure(errs)
}

// pushFailure is permanent only when every chat failed permanently.
func pushFailure(errs []error) error {
	transient := lo.Filter(errs, func(err error, _ int) bool { return !entity.IsPermanent(err) })
	if len(transient) > 0 {
		return errors.Join(transient...)
	}
	return errors.Join(errs...)
}

func pushText(msg entity.OutboundMessage) string {
	text := msg.Title + "\n" + msg.Body
	if msg.Link != "" {
		text += "\n" + msg.Link
	}
	return text
}
