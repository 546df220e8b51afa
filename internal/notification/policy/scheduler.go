package policy

import (
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

// Schedule creates one record per channel. In-app, unsuppressed and
// quiet-hours-bypassing channels are queued for now; the rest are deferred
// to verdict.NextEligible. A next-eligible time not after now is queued, so
// a deferred record is always scheduled strictly after its creation.
// IDs are left for the caller to assign.
func Schedule(n entity.Notification, channels []entity.Channel, verdict entity.QuietVerdict, now time.Time) []entity.DeliveryRecord {
	bypass := BypassesQuietHours(n.Category, n.Priority)
	records := make([]entity.DeliveryRecord, 0, len(channels))

	for _, ch := range channels {
		rec := entity.DeliveryRecord{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Channel:        ch,
			State:          entity.DeliveryStateQueued,
			ScheduledFor:   now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		quiet := ch.Interruptive() && verdict.Suppressed && !bypass
		if quiet && verdict.NextEligible.After(now) {
			rec.State = entity.DeliveryStateDeferred
			rec.ScheduledFor = verdict.NextEligible
		}

		records = append(records, rec)
	}

	return records
}
