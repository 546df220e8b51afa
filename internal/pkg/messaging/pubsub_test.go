package messaging

import (
	"testing"

	"cloud.google.com/go/pubsub/v2"
)

func TestPubSubSubscription(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		group string
		want  string
	}{
		{"grouped", "notification_requested", "hrnotify", "notification_requested-hrnotify"},
		{"no group", "notification_requested", "", "notification_requested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := pubsubSubscription(tt.topic, tt.group)

			// Assert
			if got != tt.want {
				t.Fatalf("subscription = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToPubSubMessage(t *testing.T) {
	// Arrange
	headers := map[string]string{"cID": "c-1"}
	out := OutgoingMessage{Body: []byte(`{"id":1}`), Key: []byte("42"), Headers: headers}

	// Act
	got := toPubSubMessage(out)
	headers["cID"] = "changed"
	in := &pubSubMessage{topic: "delivery_updated", msg: got}

	// Assert
	if string(got.Data) != `{"id":1}` || got.OrderingKey != "42" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if in.Header("cID") != "c-1" {
		t.Fatalf("attribute cID = %q, want c-1", in.Header("cID"))
	}
	if string(in.Key()) != "42" || in.Source() != "delivery_updated" {
		t.Fatalf("key=%q source=%q", in.Key(), in.Source())
	}
	if in.Header("missing") != "" {
		t.Fatalf("missing attribute should be empty")
	}
}

func TestToPubSubMessage_NoHeaders(t *testing.T) {
	// Act
	got := toPubSubMessage(OutgoingMessage{Body: []byte("{}")})
	in := &pubSubMessage{msg: &pubsub.Message{Data: got.Data}}

	// Assert
	if got.Attributes != nil || got.OrderingKey != "" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if in.Header("cID") != "" || len(in.Key()) != 0 {
		t.Fatalf("expected empty header and key")
	}
}
