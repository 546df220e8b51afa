package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/messaging"
	"github.com/shandysiswandi/hrnotify/internal/pkg/uid"
	"github.com/shandysiswandi/hrnotify/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucSubmit
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// NotificationRequested submits a request published by another HR service.
// Malformed or rejected requests are logged and acked, since redelivering
// them cannot succeed. Only server errors nack the message.
func (h *MQHandler) NotificationRequested(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "NotificationRequested")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: notification requested", "msg_body", string(body))

	var payload event.NotificationRequestedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of notification requested", "msg_body", string(body), "error", err)
		return nil
	}

	out, err := h.uc.Submit(ctx, usecase.SubmitInput{
		RecipientID: payload.RecipientID,
		Category:    payload.Category,
		Priority:    payload.Priority,
		Title:       payload.Title,
		Body:        payload.Body,
		Link:        payload.Link,
		Metadata:    payload.Metadata,
	})
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) && gerr.Type() != goerror.TypeServer {
			slog.WarnContext(ctx, "notification request rejected", "recipient_id", payload.RecipientID, "category", payload.Category, "error", err)
			return nil
		}
		slog.ErrorContext(ctx, "failed to submit notification request", "msg_body", string(body), "error", err)
		return err
	}

	span.SetAttributes(attribute.Int64("notification.id", out.NotificationID))
	return nil
}
