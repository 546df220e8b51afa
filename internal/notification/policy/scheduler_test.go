package policy

import (
	"testing"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

func stateOf(records []entity.DeliveryRecord, ch entity.Channel) (entity.DeliveryRecord, bool) {
	for _, r := range records {
		if r.Channel == ch {
			return r, true
		}
	}
	return entity.DeliveryRecord{}, false
}

func TestSchedule_QuietHoursScenarios(t *testing.T) {
	pref := quietPref("22:00", "08:00")
	now := at(2, "23:30")
	verdict := IsSuppressed(pref, now)

	tests := []struct {
		name      string
		priority  entity.Priority
		wantPush  entity.DeliveryState
		wantSched time.Time
	}{
		{"normal reminder defers push to 08:00", entity.PriorityNormal, entity.DeliveryStateDeferred, at(3, "08:00")},
		{"urgent reminder bypasses quiet hours", entity.PriorityUrgent, entity.DeliveryStateQueued, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			req := request(entity.CategoryReminder, tt.priority)
			channels := Route(req, pref, fullContact, verdict)
			n := entity.Notification{ID: 10, UserID: 1, Category: req.Category, Priority: req.Priority}

			// Act
			records := Schedule(n, channels, verdict, now)

			// Assert
			push, ok := stateOf(records, entity.ChannelPush)
			if !ok || push.State != tt.wantPush || !push.ScheduledFor.Equal(tt.wantSched) {
				t.Fatalf("push record = %+v", push)
			}
			inApp, ok := stateOf(records, entity.ChannelInApp)
			if !ok || inApp.State != entity.DeliveryStateQueued {
				t.Fatalf("in-app record = %+v", inApp)
			}
			if tt.priority == entity.PriorityNormal && len(records) != 2 {
				t.Fatalf("expected exactly in-app and push, got %d records", len(records))
			}
		})
	}
}

func TestSchedule_DeferredStrictlyAfterCreation(t *testing.T) {
	now := at(2, "23:30")
	n := entity.Notification{ID: 1, UserID: 1, Category: entity.CategoryAssignment, Priority: entity.PriorityNormal}
	channels := []entity.Channel{entity.ChannelInApp, entity.ChannelEmail}

	for _, next := range []time.Time{now.Add(-time.Minute), now, now.Add(time.Second)} {
		records := Schedule(n, channels, entity.QuietVerdict{Suppressed: true, NextEligible: next}, now)
		for _, r := range records {
			if r.State == entity.DeliveryStateDeferred && !r.ScheduledFor.After(r.CreatedAt) {
				t.Fatalf("deferred record scheduled at %v, created %v", r.ScheduledFor, r.CreatedAt)
			}
		}

		email, _ := stateOf(records, entity.ChannelEmail)
		wantDeferred := next.After(now)
		if (email.State == entity.DeliveryStateDeferred) != wantDeferred {
			t.Fatalf("next=%v: email state %s", next, email.State)
		}
	}
}

func TestSchedule_NotSuppressedQueuesAll(t *testing.T) {
	now := at(2, "10:00")
	n := entity.Notification{ID: 1, UserID: 1, Category: entity.CategoryAnnouncement, Priority: entity.PriorityLow}

	records := Schedule(n, []entity.Channel{entity.ChannelInApp, entity.ChannelPush}, entity.QuietVerdict{}, now)

	for _, r := range records {
		if r.State != entity.DeliveryStateQueued || !r.ScheduledFor.Equal(now) || r.NotificationID != 1 {
			t.Fatalf("unexpected record %+v", r)
		}
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		base, max time.Duration
		attempt   int
		want      time.Duration
	}{
		{30 * time.Second, 0, 0, 30 * time.Second},
		{30 * time.Second, 0, 1, time.Minute},
		{30 * time.Second, 0, 2, 2 * time.Minute},
		{30 * time.Second, 5 * time.Minute, 10, 5 * time.Minute},
		{0, time.Minute, 3, 0},
	}

	for _, tt := range tests {
		if got := RetryDelay(tt.base, tt.max, tt.attempt); got != tt.want {
			t.Fatalf("RetryDelay(%v, %v, %d) = %v, want %v", tt.base, tt.max, tt.attempt, got, tt.want)
		}
	}

	if got := RetryDelay(time.Second, 0, 200); got <= 0 {
		t.Fatalf("uncapped delay overflowed: %v", got)
	}
}
