// Package gateway holds the channel providers and the Registry that routes an
// outbound message to the provider of its channel.
package gateway

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Sender delivers one message over one channel.
type Sender interface {
	Send(ctx context.Context, msg entity.OutboundMessage) error
}

// Registry routes an outbound message to the sender bound to its channel.
type Registry struct {
	senders map[entity.Channel]Sender
	ins     instrument.Instrumentation
}

func NewRegistry(ins instrument.Instrumentation) *Registry {
	return &Registry{senders: make(map[entity.Channel]Sender), ins: ins}
}

// Register binds s to ch. A nil sender leaves the channel unconfigured.
func (r *Registry) Register(ch entity.Channel, s Sender) {
	if s == nil {
		return
	}
	r.senders[ch] = s
}

// Configured reports whether a sender is bound to ch.
func (r *Registry) Configured(ch entity.Channel) bool {
	_, ok := r.senders[ch]
	return ok
}

// Send fails with entity.ErrGatewayNotConfigured when no sender is bound.
func (r *Registry) Send(ctx context.Context, msg entity.OutboundMessage) error {
	ctx, span := r.ins.Tracer("notification.outbound.gateway").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("channel", msg.Channel.String()),
		attribute.Int64("delivery.id", msg.DeliveryID),
	)

	s, ok := r.senders[msg.Channel]
	if !ok {
		err := fmt.Errorf("%w: %s", entity.ErrGatewayNotConfigured, msg.Channel)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
