package entity

import "strings"

// Channel is the closed set of delivery media. Values are persisted.
type Channel int16

const (
	ChannelUnknown Channel = 0
	// ChannelInApp stores the notification in the inbox and streams it over SSE.
	ChannelInApp Channel = 1
	ChannelEmail Channel = 2
	ChannelSMS   Channel = 3
	// ChannelPush sends to registered Telegram chats.
	ChannelPush Channel = 4
)

// Channels lists every deliverable channel in routing output order.
var Channels = []Channel{ChannelInApp, ChannelPush, ChannelEmail, ChannelSMS}

// ChannelFromString parses the wire name of a channel. Unknown names give
// ChannelUnknown.
func ChannelFromString(raw string) Channel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in_app":
		return ChannelInApp
	case "email":
		return ChannelEmail
	case "sms":
		return ChannelSMS
	case "push":
		return ChannelPush
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelInApp:
		return "in_app"
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	case ChannelPush:
		return "push"
	default:
		return "unknown"
	}
}

// Interruptive reports whether the channel actively interrupts the recipient.
// Only interruptive channels are subject to quiet hours.
func (c Channel) Interruptive() bool {
	return c == ChannelEmail || c == ChannelSMS || c == ChannelPush
}

// Category classifies a notification for per-category preference toggles.
type Category int16

const (
	CategoryUnknown      Category = 0
	CategoryAssignment   Category = 1
	CategoryReminder     Category = 2
	CategoryAnnouncement Category = 3
	CategorySecurity     Category = 4
	CategoryGeneric      Category = 5
)

// CategoryFromString parses a category name. Unknown names give CategoryUnknown.
func CategoryFromString(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "assignment":
		return CategoryAssignment
	case "reminder":
		return CategoryReminder
	case "announcement":
		return CategoryAnnouncement
	case "security":
		return CategorySecurity
	case "generic":
		return CategoryGeneric
	default:
		return CategoryUnknown
	}
}

func (c Category) String() string {
	switch c {
	case CategoryAssignment:
		return "assignment"
	case CategoryReminder:
		return "reminder"
	case CategoryAnnouncement:
		return "announcement"
	case CategorySecurity:
		return "security"
	case CategoryGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Priority of a notification. Elevated priorities bypass quiet hours and
// business-hours deferral.
type Priority int16

const (
	PriorityUnknown Priority = 0
	PriorityLow     Priority = 1
	PriorityNormal  Priority = 2
	PriorityHigh    Priority = 3
	PriorityUrgent  Priority = 4
)

// PriorityFromString maps an empty string to PriorityNormal.
func PriorityFromString(raw string) Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow
	case "normal", "":
		return PriorityNormal
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityUnknown
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// Elevated is true for high and urgent.
func (p Priority) Elevated() bool {
	return p >= PriorityHigh
}

// DeliveryState is the lifecycle state of one delivery record. Values are persisted.
type DeliveryState int16

const (
	DeliveryStateUnknown DeliveryState = 0

	// DeliveryStateQueued is ready for the next dispatcher pass.
	DeliveryStateQueued DeliveryState = 1

	// DeliveryStateDeferred waits for ScheduledAt, outside quiet hours or the weekday window.
	DeliveryStateDeferred DeliveryState = 2

	// DeliveryStateSending is claimed by a worker.
	DeliveryStateSending DeliveryState = 3

	// DeliveryStateSent is terminal.
	DeliveryStateSent DeliveryState = 4

	// DeliveryStateFailed is retried at NextRetryAt, or terminal when that is unset.
	DeliveryStateFailed DeliveryState = 5
)

func (s DeliveryState) String() string {
	switch s {
	case DeliveryStateQueued:
		return "queued"
	case DeliveryStateDeferred:
		return "deferred"
	case DeliveryStateSending:
		return "sending"
	case DeliveryStateSent:
		return "sent"
	case DeliveryStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanTransition encodes the delivery state machine:
// queued|deferred -> sending -> sent, sending -> failed -> sending.
// Whether a failed record is terminal depends on NextRetryAt and is checked by the store.
func CanTransition(from, to DeliveryState) bool {
	switch from {
	case DeliveryStateQueued, DeliveryStateDeferred, DeliveryStateFailed:
		return to == DeliveryStateSending
	case DeliveryStateSending:
		return to == DeliveryStateSent || to == DeliveryStateFailed
	default:
		return false
	}
}
