package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubMessage struct {
	acked, nacked int
}

func (s *stubMessage) Body() []byte               { return []byte("{}") }
func (s *stubMessage) Key() []byte                { return nil }
func (s *stubMessage) Header(string) string       { return "" }
func (s *stubMessage) Source() string             { return "notification_requested" }
func (s *stubMessage) Timestamp() time.Time       { return time.Time{} }
func (s *stubMessage) Ack(context.Context) error  { s.acked++; return nil }
func (s *stubMessage) Nack(context.Context) error { s.nacked++; return nil }

func never() bool { return false }

func TestHandle_AutoAck(t *testing.T) {
	tests := []struct {
		name     string
		handler  Handler
		autoAck  bool
		wantAck  int
		wantNack int
	}{
		{"ack on success", func(context.Context, Message) error { return nil }, true, 1, 0},
		{"nack on error", func(context.Context, Message) error { return errors.New("x") }, true, 0, 1},
		{"nack on panic", func(context.Context, Message) error { panic("boom") }, true, 0, 1},
		{"manual ack mode", func(context.Context, Message) error { return nil }, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			msg := &stubMessage{}

			// Act
			err := handle(context.Background(), "test", tt.handler, msg, tt.autoAck, never)

			// Assert
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.acked != tt.wantAck || msg.nacked != tt.wantNack {
				t.Fatalf("ack=%d nack=%d", msg.acked, msg.nacked)
			}
		})
	}
}

func TestNewConsumeOptions(t *testing.T) {
	co := newConsumeOptions(WithConcurrency(0), WithGroup("hrnotify"), WithAutoAck(true), nil)

	if co.concurrency != 1 || co.group != "hrnotify" || !co.autoAck {
		t.Fatalf("unexpected options: %+v", co)
	}
}

func TestNewFromDriver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr error
	}{
		{"unknown", "rabbitmq", ErrUnknownDriver},
		{"kafka without brokers", "kafka", ErrKafkaBrokersRequired},
		{"nats without url", " NATS ", ErrNATSURLRequired},
		{"pubsub without project", "google-pubsub", ErrPubSubProjectIDRequired},
		{"nsq connects lazily", "nsq", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			client, err := NewFromDriver(context.Background(), tt.driver, FactoryOptions{})

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				if client != nil {
					t.Fatalf("client = %T, want nil on error", client)
				}
				return
			}
			_ = client.Close()
		})
	}
}
