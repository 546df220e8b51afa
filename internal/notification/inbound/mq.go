package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/hrnotify/internal/pkg/config"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goroutine"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/messaging"
	"github.com/shandysiswandi/hrnotify/internal/pkg/uid"
	"github.com/shandysiswandi/hrnotify/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc ucSubmit,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.consumer_concurrency")

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // kafka consumer group, nats queue group
		handler messaging.Handler
	}{
		{
			name:    event.NotificationRequestedConsumerDelivery,
			topic:   event.NotificationRequestedDestination,
			group:   event.NotificationRequestedConsumerDelivery,
			handler: mqHandler.NotificationRequested,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithGroup(consumer.group),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(concurrency),
				)
			})
		}
	}
}
