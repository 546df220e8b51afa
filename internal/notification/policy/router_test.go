package policy

import (
	"slices"
	"testing"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

var fullContact = entity.Contact{UserID: 1, Email: "jane@corp.test", Phone: "+628111", PushTokens: []string{"123"}}

func request(cat entity.Category, p entity.Priority) entity.NotificationRequest {
	return entity.NotificationRequest{RecipientID: 1, Category: cat, Priority: p, Title: "t", Body: "b"}
}

func TestRoute_Scenarios(t *testing.T) {
	suppressed := entity.QuietVerdict{Suppressed: true}

	allOff := entity.DefaultUserPreference(1)
	allOff.InApp, allOff.Email, allOff.SMS, allOff.Push = false, false, false, false
	allOff.EmailCategories, allOff.PushCategories, allOff.SMSCategories = entity.CategoryToggles{}, entity.CategoryToggles{}, entity.CategoryToggles{}

	noPush := entity.DefaultUserPreference(1)
	noPush.Push = false

	smsOn := entity.DefaultUserPreference(1)
	smsOn.SMS = true

	inAppOff := entity.DefaultUserPreference(1)
	inAppOff.InApp = false

	tests := []struct {
		name    string
		req     entity.NotificationRequest
		pref    entity.UserPreference
		contact entity.Contact
		verdict entity.QuietVerdict
		want    []entity.Channel
	}{
		{
			name:    "normal reminder picks push",
			req:     request(entity.CategoryReminder, entity.PriorityNormal),
			pref:    entity.DefaultUserPreference(1),
			contact: fullContact,
			verdict: suppressed,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush},
		},
		{
			name:    "announcement without push falls back to email",
			req:     request(entity.CategoryAnnouncement, entity.PriorityNormal),
			pref:    noPush,
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelEmail},
		},
		{
			name:    "push enabled but no token falls back to email",
			req:     request(entity.CategoryAssignment, entity.PriorityLow),
			pref:    entity.DefaultUserPreference(1),
			contact: entity.Contact{Email: "jane@corp.test"},
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelEmail},
		},
		{
			name:    "non telegram device falls back to email",
			req:     request(entity.CategoryReminder, entity.PriorityNormal),
			pref:    entity.DefaultUserPreference(1),
			contact: entity.Contact{Email: "jane@corp.test", PushTokens: []string{"fcm:APA91bH-android-token"}},
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelEmail},
		},
		{
			name:    "nothing enabled leaves in-app only",
			req:     request(entity.CategoryAssignment, entity.PriorityNormal),
			pref:    noPush,
			contact: entity.Contact{},
			want:    []entity.Channel{entity.ChannelInApp},
		},
		{
			name:    "in-app master off",
			req:     request(entity.CategoryGeneric, entity.PriorityNormal),
			pref:    inAppOff,
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelPush},
		},
		{
			name:    "security ignores toggles",
			req:     request(entity.CategorySecurity, entity.PriorityNormal),
			pref:    allOff,
			contact: fullContact,
			verdict: suppressed,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail},
		},
		{
			name:    "urgent security adds sms",
			req:     request(entity.CategorySecurity, entity.PriorityUrgent),
			pref:    allOff,
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail, entity.ChannelSMS},
		},
		{
			name:    "security sms passes urgent-only",
			req:     request(entity.CategorySecurity, entity.PriorityNormal),
			pref:    smsOn,
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail, entity.ChannelSMS},
		},
		{
			name: "security sms toggle off",
			req:  request(entity.CategorySecurity, entity.PriorityNormal),
			pref: func() entity.UserPreference {
				p := smsOn
				p.SMSCategories.Security = false
				return p
			}(),
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail},
		},
		{
			name:    "security sms needs sms master",
			req:     request(entity.CategorySecurity, entity.PriorityNormal),
			pref:    entity.DefaultUserPreference(1),
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail},
		},
		{
			name:    "security without reachable contact",
			req:     request(entity.CategorySecurity, entity.PriorityUrgent),
			pref:    allOff,
			contact: entity.Contact{},
			want:    []entity.Channel{entity.ChannelInApp},
		},
		{
			name:    "urgent sends sms even with sms master off",
			req:     request(entity.CategoryAssignment, entity.PriorityUrgent),
			pref:    entity.DefaultUserPreference(1),
			contact: fullContact,
			verdict: suppressed,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail, entity.ChannelSMS},
		},
		{
			name:    "high needs sms master",
			req:     request(entity.CategoryAssignment, entity.PriorityHigh),
			pref:    entity.DefaultUserPreference(1),
			contact: fullContact,
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail},
		},
		{
			name:    "urgent without phone drops sms",
			req:     request(entity.CategoryReminder, entity.PriorityUrgent),
			pref:    smsOn,
			contact: entity.Contact{Email: "jane@corp.test", PushTokens: []string{"1"}},
			want:    []entity.Channel{entity.ChannelInApp, entity.ChannelPush, entity.ChannelEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.req, tt.pref, tt.contact, tt.verdict)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Route = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoute_ElevatedIncludesEveryMasterEnabledChannel(t *testing.T) {
	for mask := range 16 {
		pref := entity.DefaultUserPreference(1)
		pref.InApp, pref.Email, pref.SMS, pref.Push = mask&1 != 0, mask&2 != 0, mask&4 != 0, mask&8 != 0

		for _, p := range []entity.Priority{entity.PriorityHigh, entity.PriorityUrgent} {
			for _, cat := range []entity.Category{entity.CategoryAssignment, entity.CategoryReminder, entity.CategoryAnnouncement, entity.CategoryGeneric} {
				got := Route(request(cat, p), pref, fullContact, entity.QuietVerdict{Suppressed: true})

				for ch, on := range map[entity.Channel]bool{
					entity.ChannelInApp: pref.InApp,
					entity.ChannelEmail: pref.Email,
					entity.ChannelSMS:   pref.SMS,
					entity.ChannelPush:  pref.Push,
				} {
					if on && !slices.Contains(got, ch) {
						t.Fatalf("mask=%04b %s/%s: %s missing from %v", mask, cat, p, ch, got)
					}
				}
			}
		}
	}
}

func TestRoute_SecurityAlwaysIncludesCoreChannels(t *testing.T) {
	for mask := range 16 {
		pref := entity.DefaultUserPreference(1)
		pref.InApp, pref.Email, pref.SMS, pref.Push = mask&1 != 0, mask&2 != 0, mask&4 != 0, mask&8 != 0
		pref.EmailCategories.Security = mask&2 == 0
		pref.PushCategories.Security = mask&8 == 0

		for _, p := range []entity.Priority{entity.PriorityLow, entity.PriorityNormal, entity.PriorityHigh, entity.PriorityUrgent} {
			got := Route(request(entity.CategorySecurity, p), pref, fullContact, entity.QuietVerdict{})
			for _, ch := range []entity.Channel{entity.ChannelInApp, entity.ChannelEmail, entity.ChannelPush} {
				if !slices.Contains(got, ch) {
					t.Fatalf("mask=%04b %s: %s missing from %v", mask, p, ch, got)
				}
			}
		}
	}
}

func TestBypassesQuietHours(t *testing.T) {
	if !BypassesQuietHours(entity.CategorySecurity, entity.PriorityLow) ||
		!BypassesQuietHours(entity.CategoryReminder, entity.PriorityUrgent) ||
		BypassesQuietHours(entity.CategoryReminder, entity.PriorityNormal) {
		t.Fatalf("unexpected bypass rules")
	}
}
