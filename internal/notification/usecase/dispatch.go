package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/notification/policy"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/hrnotify/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const maxLastErrorLen = 1000

var errDeliveryInProgress = errors.New("delivery is being sent by another worker")

// ListReady returns up to one batch of records that are due now: queued,
// deferred past their schedule, or failed with a retry time in the past.
func (s *Usecase) ListReady(ctx context.Context) ([]entity.DeliveryRecord, error) {
	ctx, span := s.startSpan(ctx, "ListReady")
	defer span.End()

	records, err := s.repoDB.ListReadyDeliveries(ctx, s.clock.Now(), s.cfg.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list ready deliveries", "error", err)
		return nil, goerror.NewServer(err)
	}

	span.SetAttributes(attribute.Int("dispatch.batch", len(records)))
	return records, nil
}

// DispatchReady claims and sends every record that is due, one after the
// other. It returns how many records were picked up, including the ones
// another worker won.
func (s *Usecase) DispatchReady(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "DispatchReady")
	defer span.End()

	records, err := s.ListReady(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		if err := s.DispatchRecord(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	return len(records), errors.Join(errs...)
}

// DispatchRecord claims rec with a compare-and-set to sending and sends it.
// Losing the claim means another worker owns the record and is not an error.
func (s *Usecase) DispatchRecord(ctx context.Context, rec entity.DeliveryRecord) error {
	ctx, span := s.startSpan(ctx, "DispatchRecord")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("delivery.id", rec.ID),
		attribute.String("delivery.channel", rec.Channel.String()),
	)

	_, err := s.deliver(ctx, rec, nil)
	return err
}

// deliver runs one attempt of the state machine for rec. n may be nil, in
// which case the notification is loaded. The returned record is nil when the
// claim was lost.
func (s *Usecase) deliver(ctx context.Context, rec entity.DeliveryRecord, n *entity.Notification) (*entity.DeliveryRecord, error) {
	claimedAt := s.clock.Now()
	snapshot := rec.AttemptCount
	claimed, err := s.repoDB.Transition(ctx, rec.ID, rec.State, entity.DeliveryStateSending,
		entity.TransitionFields{At: claimedAt, ExpectAttempt: &snapshot})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo claim delivery", "delivery_id", rec.ID, "from", rec.State.String(), "error", err)
		return nil, goerror.NewServer(err)
	}
	if !claimed {
		slog.DebugContext(ctx, "delivery already claimed", "delivery_id", rec.ID, "from", rec.State.String())
		return nil, nil
	}

	rec.State = entity.DeliveryStateSending
	rec.UpdatedAt = claimedAt
	attempt := rec.AttemptCount + 1

	sendErr := s.send(ctx, rec, n)
	if sendErr == nil {
		return s.markSent(ctx, rec, attempt)
	}
	if errors.Is(sendErr, errDeliveryInProgress) {
		return s.markBusy(ctx, rec)
	}

	return s.markFailed(ctx, rec, attempt, sendErr)
}

func (s *Usecase) send(ctx context.Context, rec entity.DeliveryRecord, n *entity.Notification) error {
	if n == nil {
		loaded, err := s.repoDB.GetNotification(ctx, rec.NotificationID)
		if err != nil {
			return fmt.Errorf("load notification %d: %w", rec.NotificationID, err)
		}
		n = loaded
	}

	contact, err := s.loadContact(ctx, rec.UserID)
	if err != nil {
		return fmt.Errorf("load contact: %w", err)
	}
	if !contact.Reachable(rec.Channel) {
		return entity.ErrInvalidContact
	}
	if s.gateway == nil {
		return entity.ErrGatewayNotConfigured
	}

	msg := entity.OutboundMessage{
		DeliveryID:     rec.ID,
		NotificationID: n.ID,
		UserID:         rec.UserID,
		Channel:        rec.Channel,
		Contact:        contact,
		Title:          n.Title,
		Body:           n.Message,
		Link:           n.Link,
		Category:       n.Category,
		Priority:       n.Priority,
		Metadata:       n.Metadata,
		CreatedAt:      n.CreatedAt,
	}

	if rec.Channel == entity.ChannelInApp || s.guard == nil {
		return s.gateway.Send(ctx, msg)
	}

	key := deliveryKey(rec.ID)
	state, err := s.guard.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("acquire delivery lock: %w", err)
	}
	switch state {
	case idempotency.StateCompleted:
		slog.InfoContext(ctx, "delivery already sent to provider, skip resend", "delivery_id", rec.ID)
		return nil
	case idempotency.StateInProgress:
		return errDeliveryInProgress
	}

	if err := s.gateway.Send(ctx, msg); err != nil {
		if rerr := s.guard.Release(ctx, key); rerr != nil {
			slog.WarnContext(ctx, "failed to release delivery lock", "delivery_id", rec.ID, "error", rerr)
		}
		return err
	}

	if err := s.guard.MarkCompleted(ctx, key, s.cfg.DoneTTL); err != nil {
		slog.WarnContext(ctx, "failed to mark delivery completed", "delivery_id", rec.ID, "error", err)
	}

	return nil
}

func (s *Usecase) markSent(ctx context.Context, rec entity.DeliveryRecord, attempt int) (*entity.DeliveryRecord, error) {
	now := s.clock.Now()
	fields := entity.TransitionFields{At: now, ExpectAttempt: &rec.AttemptCount, AttemptCount: &attempt, SentAt: &now, ClearNextRetry: true}

	ok, err := s.repoDB.Transition(ctx, rec.ID, entity.DeliveryStateSending, entity.DeliveryStateSent, fields)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark delivery sent", "delivery_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		// recovered as stale while the provider call was running
		slog.WarnContext(ctx, "delivery left sending before it could be marked sent", "delivery_id", rec.ID)
		return nil, nil
	}

	rec.State = entity.DeliveryStateSent
	rec.AttemptCount = attempt
	rec.SentAt = &now
	rec.NextRetryAt = nil
	rec.UpdatedAt = now

	s.count(ctx, s.sentCounter, rec.Channel)
	slog.InfoContext(ctx, "delivery sent", "delivery_id", rec.ID, "channel", rec.Channel.String(), "attempt", attempt)
	s.publishStatus(ctx, rec)

	return &rec, nil
}

func (s *Usecase) markFailed(ctx context.Context, rec entity.DeliveryRecord, attempt int, sendErr error) (*entity.DeliveryRecord, error) {
	now := s.clock.Now()
	lastErr := truncateError(sendErr.Error())
	fields := entity.TransitionFields{At: now, ExpectAttempt: &rec.AttemptCount, AttemptCount: &attempt, LastError: &lastErr}

	terminal := entity.IsPermanent(sendErr) || attempt >= s.cfg.MaxAttempts
	if terminal {
		fields.ClearNextRetry = true
	} else {
		next := now.Add(policy.RetryDelay(s.cfg.BaseDelay, s.cfg.MaxDelay, attempt))
		fields.NextRetryAt = &next
	}

	ok, err := s.repoDB.Transition(ctx, rec.ID, entity.DeliveryStateSending, entity.DeliveryStateFailed, fields)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark delivery failed", "delivery_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "delivery left sending before it could be marked failed", "delivery_id", rec.ID)
		return nil, nil
	}

	rec.State = entity.DeliveryStateFailed
	rec.AttemptCount = attempt
	rec.LastError = lastErr
	rec.NextRetryAt = fields.NextRetryAt
	rec.UpdatedAt = now

	if terminal {
		s.count(ctx, s.failedCounter, rec.Channel)
		slog.ErrorContext(ctx, "delivery failed permanently",
			"delivery_id", rec.ID,
			"notification_id", rec.NotificationID,
			"channel", rec.Channel.String(),
			"attempt", attempt,
			"error", sendErr,
		)
	} else {
		s.count(ctx, s.retriedCounter, rec.Channel)
		slog.WarnContext(ctx, "delivery failed, retry scheduled",
			"delivery_id", rec.ID,
			"channel", rec.Channel.String(),
			"attempt", attempt,
			"next_retry_at", rec.NextRetryAt,
			"error", sendErr,
		)
	}
	s.publishStatus(ctx, rec)

	return &rec, nil
}

// markBusy puts rec back as retryable without spending an attempt. Another
// worker holds the provider lock, so the retry waits for that lock to lapse.
func (s *Usecase) markBusy(ctx context.Context, rec entity.DeliveryRecord) (*entity.DeliveryRecord, error) {
	now := s.clock.Now()
	next := now.Add(s.cfg.LockTTL)
	fields := entity.TransitionFields{At: now, ExpectAttempt: &rec.AttemptCount, NextRetryAt: &next}

	ok, err := s.repoDB.Transition(ctx, rec.ID, entity.DeliveryStateSending, entity.DeliveryStateFailed, fields)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo requeue busy delivery", "delivery_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, nil
	}

	rec.State = entity.DeliveryStateFailed
	rec.NextRetryAt = &next
	rec.UpdatedAt = now

	slog.InfoContext(ctx, "delivery locked by another worker, requeued", "delivery_id", rec.ID, "next_retry_at", next)
	return &rec, nil
}

func (s *Usecase) publishStatus(ctx context.Context, rec entity.DeliveryRecord) {
	if s.repoMQ == nil {
		return
	}

	msg := event.DeliveryUpdatedMessage{
		DeliveryID:     rec.ID,
		NotificationID: rec.NotificationID,
		UserID:         rec.UserID,
		Channel:        rec.Channel.String(),
		State:          rec.State.String(),
		AttemptCount:   rec.AttemptCount,
		LastError:      rec.LastError,
		SentAt:         rec.SentAt,
		OccurredAt:     rec.UpdatedAt,
	}
	if err := s.repoMQ.PublishDeliveryUpdated(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to mq publish delivery updated", "delivery_id", rec.ID, "error", err)
	}
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, ch entity.Channel) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", ch.String())))
}

func deliveryKey(id int64) string {
	return "notification:delivery:" + strconv.FormatInt(id, 10)
}

func truncateError(msg string) string {
	if len(msg) <= maxLastErrorLen {
		return msg
	}
	cut := maxLastErrorLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
