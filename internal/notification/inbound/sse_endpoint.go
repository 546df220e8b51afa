package inbound

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/valueobject"
)

const sseHeartbeat = 25 * time.Second

type StreamEvent struct {
	NotificationID int64               `json:"notification_id,string"`
	Title          string              `json:"title"`
	Message        string              `json:"message"`
	Link           string              `json:"link,omitempty"`
	Category       string              `json:"category"`
	Priority       string              `json:"priority"`
	Metadata       valueobject.JSONMap `json:"metadata,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

func streamEvent(msg entity.OutboundMessage) StreamEvent {
	return StreamEvent{
		NotificationID: msg.NotificationID,
		Title:          msg.Title,
		Message:        msg.Body,
		Link:           msg.Link,
		Category:       msg.Category.String(),
		Priority:       msg.Priority.String(),
		Metadata:       msg.Metadata,
		CreatedAt:      msg.CreatedAt,
	}
}

// StreamNotifications streams in-app notifications to the client using SSE.
// @Summary Stream notifications
// @Description Streams in-app notifications using Server-Sent Events (SSE).
// @Tags Notification
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/notification/stream [get]
func (h *HTTPEndpoint) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	stream, err := h.uc.StreamNotifications(ctx)
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			http.Error(w, gerr.Msg(), gerr.StatusCode())
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		slog.ErrorContext(ctx, "failed to send response connected", "error", err)
		return
	}
	flusher.Flush()

	// heartbeat ping, so proxies won't drop idle connections.
	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case msg, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(streamEvent(msg))
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal data", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: notification\ndata: %s\n\n", msg.NotificationID, payload); err != nil {
				slog.ErrorContext(ctx, "failed to send response data", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
