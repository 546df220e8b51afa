package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/notification/policy"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/attribute"
)

type SubmitInput struct {
	RecipientID int64          `validate:"required,gt=0"`
	Category    string         `validate:"required,oneof=assignment reminder announcement security generic"`
	Priority    string         `validate:"omitempty,oneof=low normal high urgent"`
	Title       string         `validate:"required,max=200"`
	Body        string         `validate:"required,max=5000"`
	Link        string         `validate:"omitempty,max=2048"`
	Metadata    map[string]any `validate:"-"`
}

// DeliverySummary is the planned outcome of one channel of a submitted notification.
type DeliverySummary struct {
	DeliveryID   int64
	Channel      entity.Channel
	State        entity.DeliveryState
	ScheduledFor time.Time
}

type SubmitOutput struct {
	NotificationID int64
	Deliveries     []DeliverySummary
}

// Submit is the single entry point other features use to notify a user. It
// stores the notification with one delivery record per routed channel,
// delivers in-app right away and leaves the rest to the dispatcher. The
// caller never waits on an external provider.
func (s *Usecase) Submit(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	ctx, span := s.startSpan(ctx, "Submit")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	req := entity.NotificationRequest{
		RecipientID: in.RecipientID,
		Category:    entity.CategoryFromString(in.Category),
		Priority:    entity.PriorityFromString(in.Priority),
		Title:       in.Title,
		Body:        in.Body,
		Link:        in.Link,
		Metadata:    valueobject.JSONMap(in.Metadata),
	}

	pref, err := s.loadPreference(ctx, req.RecipientID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get preference", "user_id", req.RecipientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	contact, err := s.loadContact(ctx, req.RecipientID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", req.RecipientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	verdict := policy.IsSuppressed(pref, now)
	channels := policy.Route(req, pref, contact, verdict)
	if len(channels) == 0 {
		slog.InfoContext(ctx, "notification has no deliverable channel", "user_id", req.RecipientID, "category", req.Category.String())
		return nil, goerror.NewBusiness("Recipient has every channel disabled for this notification", goerror.CodeInvalidInput)
	}

	n := entity.Notification{
		ID:        s.uid.Generate(),
		UserID:    req.RecipientID,
		Title:     req.Title,
		Message:   req.Body,
		Link:      req.Link,
		Category:  req.Category,
		Priority:  req.Priority,
		Metadata:  req.Metadata,
		CreatedAt: now,
	}
	for _, ch := range channels {
		if ch == entity.ChannelInApp {
			n.InApp = true
		}
	}

	records := policy.Schedule(n, channels, verdict, now)
	for i := range records {
		records[i].ID = s.uid.Generate()
	}

	span.SetAttributes(
		attribute.Int64("notification.id", n.ID),
		attribute.Int("notification.channels", len(channels)),
		attribute.Bool("notification.quiet", verdict.Suppressed),
	)

	if err := s.repoDB.CreateNotificationWithRecords(ctx, n, records); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", n.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &SubmitOutput{NotificationID: n.ID, Deliveries: make([]DeliverySummary, 0, len(records))}
	wake := false
	for i, rec := range records {
		if rec.Channel == entity.ChannelInApp {
			records[i] = s.deliverInApp(ctx, n, rec)
		} else if rec.State == entity.DeliveryStateQueued {
			wake = true
		}

		out.Deliveries = append(out.Deliveries, DeliverySummary{
			DeliveryID:   records[i].ID,
			Channel:      records[i].Channel,
			State:        records[i].State,
			ScheduledFor: records[i].ScheduledFor,
		})
	}

	if wake {
		s.signalWake()
	}

	slog.InfoContext(ctx, "notification submitted",
		"notification_id", n.ID,
		"user_id", n.UserID,
		"category", n.Category.String(),
		"priority", n.Priority.String(),
		"records", len(records),
	)

	return out, nil
}

// deliverInApp pushes the in-app record through the normal state machine
// synchronously. A failure leaves the record for the dispatcher to retry and
// never fails the submission.
func (s *Usecase) deliverInApp(ctx context.Context, n entity.Notification, rec entity.DeliveryRecord) entity.DeliveryRecord {
	next, err := s.deliver(ctx, rec, &n)
	if err != nil {
		slog.WarnContext(ctx, "in-app delivery did not complete", "notification_id", n.ID, "delivery_id", rec.ID, "error", err)
	}
	if next == nil {
		return rec
	}
	return *next
}
