// Package messaging is a small broker-agnostic publish/consume layer over
// NATS, Kafka, NSQ and Google Pub/Sub. Notification requests arrive through it and delivery status
// events leave through it.
package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned for features the selected broker lacks.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Messaging is a broker connection that can both publish and consume.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

type Publisher interface {
	// Publish sends msg to destination and waits for the broker to accept it.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

type Consumer interface {
	// Consume blocks until ctx is done or the broker fails.
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one message. With auto-ack enabled a nil error acks and
// a non-nil error nacks.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body []byte
	// Key is the Kafka partition key and the Pub/Sub ordering key. NATS and
	// NSQ ignore it.
	Key     []byte
	Headers map[string]string
}

// PublishResult reports where a message landed. Partition and Offset are
// only filled by Kafka.
type PublishResult struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

// Message is a received message. Ack and Nack are idempotent: only the
// first call reaches the broker.
type Message interface {
	Body() []byte
	Key() []byte
	// Header returns "" for a missing header or a broker without headers.
	Header(key string) string
	// Source is the topic or subject the message was read from.
	Source() string
	Timestamp() time.Time
	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
