// Package event holds the message contracts exchanged over the bus with the
// rest of the HR application.
package event

import "time"

// NotificationRequestedDestination carries requests from HR features
// (evaluation assignment, salary change, security alert, ...).
const NotificationRequestedDestination string = "notification_requested"

// NotificationRequestedConsumerDelivery is the consumer group of the delivery service.
const NotificationRequestedConsumerDelivery string = "notification_requested_delivery"

// NotificationRequestedMessage asks for one notification to one user.
type NotificationRequestedMessage struct {
	RecipientID int64          `json:"recipient_id"`
	Category    string         `json:"category"`
	Priority    string         `json:"priority"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Link        string         `json:"link,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DeliveryUpdatedDestination receives one message per final delivery outcome.
const DeliveryUpdatedDestination string = "notification_delivery_updated"

// DeliveryUpdatedMessage reports the sent or failed outcome of one delivery.
type DeliveryUpdatedMessage struct {
	DeliveryID     int64      `json:"delivery_id,string"`
	NotificationID int64      `json:"notification_id,string"`
	UserID         int64      `json:"user_id,string"`
	Channel        string     `json:"channel"`
	State          string     `json:"state"`
	AttemptCount   int        `json:"attempt_count"`
	LastError      string     `json:"last_error,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
