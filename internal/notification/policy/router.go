package policy

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

// Route decides which channels to attempt, ordered in-app, push, email, sms.
//
//   - security: in-app, email and push always; SMS when elevated or enabled
//     for security. A security notice counts as urgent for SMSUrgentOnly.
//   - high/urgent: every master-enabled channel; SMS when urgent or master on.
//   - otherwise: in-app plus one interruptive channel, push before email.
//
// Quiet hours never remove a channel; Schedule defers instead. Channels the
// contact cannot be reached on are never returned.
func Route(req entity.NotificationRequest, pref entity.UserPreference, contact entity.Contact, _ entity.QuietVerdict) []entity.Channel {
	want := make(map[entity.Channel]bool, len(entity.Channels))

	switch {
	case req.Category == entity.CategorySecurity:
		want[entity.ChannelInApp] = true
		want[entity.ChannelEmail] = true
		want[entity.ChannelPush] = true
		want[entity.ChannelSMS] = req.Priority.Elevated() || pref.SMSEnabledFor(entity.CategorySecurity)

	case req.Priority.Elevated():
		want[entity.ChannelInApp] = pref.InApp
		want[entity.ChannelEmail] = pref.Email
		want[entity.ChannelPush] = pref.Push
		want[entity.ChannelSMS] = req.Priority == entity.PriorityUrgent || pref.SMS

	default:
		want[entity.ChannelInApp] = pref.InApp
		candidates := []struct {
			ch      entity.Channel
			enabled bool
		}{
			{entity.ChannelPush, pref.PushEnabledFor(req.Category)},
			{entity.ChannelEmail, pref.EmailEnabledFor(req.Category)},
		}
		for _, c := range candidates {
			if c.enabled && contact.Reachable(c.ch) {
				want[c.ch] = true
				break
			}
		}
	}

	return lo.Filter(entity.Channels, func(ch entity.Channel, _ int) bool {
		return want[ch] && contact.Reachable(ch)
	})
}

// BypassesQuietHours is true for security notices and elevated priorities.
func BypassesQuietHours(cat entity.Category, p entity.Priority) bool {
	return cat == entity.CategorySecurity || p.Elevated()
}
