package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

const notificationColumns = `id, user_id, title, message, link, category, priority, metadata, in_app, is_read, read_at, created_at`

func scanNotification(row pgx.CollectableRow) (entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.Category, &n.Priority,
		&n.Metadata, &n.InApp, &n.IsRead, &n.ReadAt, &n.CreatedAt,
	)
	return n, err
}

// CreateNotificationWithRecords stores the notification and its delivery
// records in one transaction.
func (s *DB) CreateNotificationWithRecords(ctx context.Context, n entity.Notification, records []entity.DeliveryRecord) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNotificationWithRecords")
	defer func() { s.endSpan(span, err) }()

	return s.withRetry(ctx, func(ctx context.Context) error {
		tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() {
			if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
				slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
			}
		}()

		if _, err := tx.Exec(ctx, `
INSERT INTO notifications (`+notificationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NULL, $10)`,
			n.ID, n.UserID, n.Title, n.Message, n.Link, n.Category, n.Priority, n.Metadata, n.InApp, n.CreatedAt,
		); err != nil {
			return s.mapError(err)
		}

		batch := &pgx.Batch{}
		for _, r := range records {
			batch.Queue(`
INSERT INTO notification_deliveries (`+deliveryColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, 0, '', NULL, NULL, $7, $7)`,
				r.ID, r.NotificationID, r.UserID, r.Channel, r.State, r.ScheduledFor, r.CreatedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return s.mapError(err)
		}

		return s.mapError(tx.Commit(ctx))
	})
}

// GetNotification returns goerror.ErrNotFound for an unknown id.
func (s *DB) GetNotification(ctx context.Context, id int64) (_ *entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "GetNotification")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &n, nil
}

// ListRecent returns the user's in-app inbox, newest first.
func (s *DB) ListRecent(ctx context.Context, userID int64, unreadOnly bool, limit int) (_ []entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "ListRecent")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
SELECT `+notificationColumns+` FROM notifications
WHERE user_id = $1 AND in_app AND (NOT $2 OR NOT is_read)
ORDER BY created_at DESC, id DESC
LIMIT $3`, userID, unreadOnly, limit)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

func (s *DB) UnreadCount(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "UnreadCount")
	defer func() { s.endSpan(span, err) }()

	var n int64
	err = s.conn.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1 AND in_app AND NOT is_read`, userID).Scan(&n)
	return n, s.mapError(err)
}

// MarkRead reports whether the notification exists for the user. An already
// read notification keeps its original read_at.
func (s *DB) MarkRead(ctx context.Context, userID, notificationID int64, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $3)
WHERE id = $1 AND user_id = $2`, notificationID, userID, at)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkAllRead returns the number of notifications it marked.
func (s *DB) MarkAllRead(ctx context.Context, userID int64, at time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkAllRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE notifications SET is_read = TRUE, read_at = $2
WHERE user_id = $1 AND NOT is_read`, userID, at)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
