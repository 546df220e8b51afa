package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/pkg/valueobject"
)

// NotificationRequest is the transient input of Submit. It is never stored as is.
type NotificationRequest struct {
	RecipientID int64
	Category    Category
	Priority    Priority
	Title       string
	Body        string
	Link        string
	Metadata    valueobject.JSONMap
}

// Notification is one logical message to one user. Only read state changes
// after creation.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Link      string
	Category  Category
	Priority  Priority
	Metadata  valueobject.JSONMap
	InApp     bool
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// DeliveryRecord is one (notification, channel) delivery attempt chain.
type DeliveryRecord struct {
	ID             int64
	NotificationID int64
	UserID         int64
	Channel        Channel
	State          DeliveryState
	ScheduledFor   time.Time
	AttemptCount   int
	LastError      string
	// NextRetryAt is set only on retryable failures. A failed record without
	// it is terminal.
	NextRetryAt *time.Time
	SentAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Terminal reports whether the record will never be dispatched again.
func (r DeliveryRecord) Terminal() bool {
	return r.State == DeliveryStateSent || (r.State == DeliveryStateFailed && r.NextRetryAt == nil)
}

// TransitionFields are the columns a state transition may set alongside state.
type TransitionFields struct {
	// At stamps updated_at. Zero means the store's own clock. Claiming a
	// failed record also requires its retry time to be at or before At.
	At time.Time
	// ExpectAttempt, when set, must equal the stored attempt count. A caller
	// holding an outdated copy of the record then loses the compare-and-set.
	ExpectAttempt *int
	AttemptCount  *int
	LastError     *string
	NextRetryAt   *time.Time
	// ClearNextRetry nulls next_retry_at, making a failed record terminal.
	ClearNextRetry bool
	SentAt         *time.Time
}

// Contact is how a user can be reached on interruptive channels.
type Contact struct {
	UserID     int64
	Email      string
	Phone      string
	PushTokens []string
}

// Reachable reports whether the channel has an address to deliver to.
func (c Contact) Reachable(ch Channel) bool {
	switch ch {
	case ChannelInApp:
		return true
	case ChannelEmail:
		return c.Email != ""
	case ChannelSMS:
		return c.Phone != ""
	case ChannelPush:
		for _, token := range c.PushTokens {
			if _, ok := ParsePushToken(token); ok {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// QuietVerdict is the output of quiet-hours evaluation.
type QuietVerdict struct {
	Suppressed   bool
	NextEligible time.Time
}

// OutboundMessage is what a gateway receives for one delivery.
type OutboundMessage struct {
	DeliveryID     int64
	NotificationID int64
	UserID         int64
	Channel        Channel
	Contact        Contact
	Title          string
	Body           string
	Link           string
	Category       Category
	Priority       Priority
	Metadata       valueobject.JSONMap
	CreatedAt      time.Time
}

// PlatformTelegram is the only device platform a push gateway serves.
const PlatformTelegram = "telegram"

// ParsePushToken reads a push token as a Telegram chat id.
func ParsePushToken(token string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Device is a registered push token.
type Device struct {
	UserID    int64
	Token     string
	Platform  string
	CreatedAt time.Time
}
