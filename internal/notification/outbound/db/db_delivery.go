package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

const deliveryColumns = `id, notification_id, user_id, channel, state, scheduled_for, attempt_count, last_error, next_retry_at, sent_at, created_at, updated_at`

func scanDelivery(row pgx.CollectableRow) (entity.DeliveryRecord, error) {
	var r entity.DeliveryRecord
	err := row.Scan(
		&r.ID, &r.NotificationID, &r.UserID, &r.Channel, &r.State, &r.ScheduledFor,
		&r.AttemptCount, &r.LastError, &r.NextRetryAt, &r.SentAt, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// A failed row without next_retry_at is terminal and never matches. A failed
// row is only claimable once its retry time has passed.
const queryTransition = `
UPDATE notification_deliveries SET
    state = $3,
    attempt_count = COALESCE($4, attempt_count),
    last_error = COALESCE($5, last_error),
    next_retry_at = CASE WHEN $6 THEN NULL ELSE COALESCE($7, next_retry_at) END,
    sent_at = COALESCE($8, sent_at),
    updated_at = COALESCE($9, now())
WHERE id = $1 AND state = $2
  AND ($10::int IS NULL OR attempt_count = $10)
  AND (state <> 5 OR (next_retry_at IS NOT NULL AND next_retry_at <= COALESCE($9, now())))`

// Transition is the compare-and-set on state and, when f.ExpectAttempt is
// set, on attempt_count. It reports false when the row no longer matches,
// meaning another worker got there first.
func (s *DB) Transition(ctx context.Context, id int64, from, to entity.DeliveryState, f entity.TransitionFields) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "Transition")
	defer func() { s.endSpan(span, err) }()

	if !entity.CanTransition(from, to) {
		return false, nil
	}

	var (
		expect  pgtype.Int4
		attempt pgtype.Int4
		lastErr pgtype.Text
		next    pgtype.Timestamptz
		sentAt  pgtype.Timestamptz
		at      pgtype.Timestamptz
	)
	if f.ExpectAttempt != nil {
		expect = pgtype.Int4{Int32: int32(*f.ExpectAttempt), Valid: true}
	}
	if f.AttemptCount != nil {
		attempt = pgtype.Int4{Int32: int32(*f.AttemptCount), Valid: true}
	}
	if f.LastError != nil {
		lastErr = pgtype.Text{String: *f.LastError, Valid: true}
	}
	if f.NextRetryAt != nil {
		next = pgtype.Timestamptz{Time: *f.NextRetryAt, Valid: true}
	}
	if f.SentAt != nil {
		sentAt = pgtype.Timestamptz{Time: *f.SentAt, Valid: true}
	}
	if !f.At.IsZero() {
		at = pgtype.Timestamptz{Time: f.At, Valid: true}
	}

	var affected int64
	err = s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.conn.Exec(ctx, queryTransition, id, from, to, attempt, lastErr, f.ClearNextRetry, next, sentAt, at, expect)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, s.mapError(err)
	}

	return affected == 1, nil
}

// ListReadyDeliveries returns due queued or deferred rows and failed rows
// whose retry time has come, oldest first.
func (s *DB) ListReadyDeliveries(ctx context.Context, now time.Time, limit int) (_ []entity.DeliveryRecord, err error) {
	ctx, span := s.startSpan(ctx, "ListReadyDeliveries")
	defer func() { s.endSpan(span, err) }()

	return s.listDeliveries(ctx, `
SELECT `+deliveryColumns+` FROM notification_deliveries
WHERE (state IN (1, 2) AND scheduled_for <= $1)
   OR (state = 5 AND next_retry_at IS NOT NULL AND next_retry_at <= $1)
ORDER BY COALESCE(next_retry_at, scheduled_for), id
LIMIT $2`, now, limit)
}

// ListStaleSending returns records stuck in sending since before, oldest first.
func (s *DB) ListStaleSending(ctx context.Context, before time.Time, limit int) (_ []entity.DeliveryRecord, err error) {
	ctx, span := s.startSpan(ctx, "ListStaleSending")
	defer func() { s.endSpan(span, err) }()

	return s.listDeliveries(ctx, `
SELECT `+deliveryColumns+` FROM notification_deliveries
WHERE state = 3 AND updated_at < $1
ORDER BY updated_at, id
LIMIT $2`, before, limit)
}

func (s *DB) ListDeliveries(ctx context.Context, notificationID int64) (_ []entity.DeliveryRecord, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer func() { s.endSpan(span, err) }()

	return s.listDeliveries(ctx, `
SELECT `+deliveryColumns+` FROM notification_deliveries
WHERE notification_id = $1
ORDER BY channel`, notificationID)
}

func (s *DB) listDeliveries(ctx context.Context, query string, args ...any) ([]entity.DeliveryRecord, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := pgx.CollectRows(rows, scanDelivery)
	if err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}
