package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/messaging"
	"github.com/shandysiswandi/hrnotify/internal/shared/event"
)

type capturePublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (c *capturePublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	c.destination = destination
	c.msg = msg
	return messaging.PublishResult{Topic: destination}, c.err
}

func TestMessaging_PublishDeliveryUpdated(t *testing.T) {
	// Arrange
	pub := &capturePublisher{}
	m := NewMessaging(pub, instrument.NewNoop())
	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")
	msg := event.DeliveryUpdatedMessage{
		DeliveryID:     9,
		NotificationID: 77,
		UserID:         42,
		Channel:        "email",
		State:          "sent",
		AttemptCount:   1,
		OccurredAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	// Act
	err := m.PublishDeliveryUpdated(ctx, msg)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.destination != event.DeliveryUpdatedDestination {
		t.Fatalf("destination = %s", pub.destination)
	}
	if string(pub.msg.Key) != "77" || pub.msg.Headers[keyOfCorrelationID] != "cid-1" {
		t.Fatalf("unexpected key/headers: %s %v", pub.msg.Key, pub.msg.Headers)
	}

	var got map[string]any
	if err := json.Unmarshal(pub.msg.Body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got["delivery_id"] != "9" || got["state"] != "sent" {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestMessaging_PublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	m := NewMessaging(pub, instrument.NewNoop())

	if err := m.PublishDeliveryUpdated(context.Background(), event.DeliveryUpdatedMessage{}); err == nil {
		t.Fatalf("expected publish error")
	}
}
