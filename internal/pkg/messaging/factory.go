package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverNATS selects core NATS subjects.
	DriverNATS = "nats"
	// DriverKafka selects Kafka topics through kafka-go.
	DriverKafka = "kafka"
	// DriverNSQ selects NSQ topics, consumed through a channel per group.
	DriverNSQ = "nsq"
	// DriverGooglePubSub selects Google Pub/Sub topics and subscriptions.
	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver is returned by NewFromDriver for a driver name it does not know.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries the configuration of every driver. Only the one
// named by the driver is read.
type FactoryOptions struct {
	NATS   NATSConfig
	Kafka  KafkaConfig
	NSQ    NSQConfig
	PubSub PubSubConfig
}

// NewFromDriver constructs a Messaging implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNATS:
		return asMessaging(NewNATS(opts.NATS))
	case DriverKafka:
		return asMessaging(NewKafka(opts.Kafka))
	case DriverNSQ:
		return asMessaging(NewNSQ(opts.NSQ))
	case DriverGooglePubSub:
		return asMessaging(NewPubSub(ctx, opts.PubSub))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// asMessaging keeps a failed constructor's nil pointer out of the interface.
func asMessaging[T Messaging](m T, err error) (Messaging, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}
