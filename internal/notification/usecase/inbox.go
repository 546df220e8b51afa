package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
)

type ListNotificationsInput struct {
	UnreadOnly bool
	Limit      int `validate:"gte=0,lte=100"`
}

func (s *Usecase) ListNotifications(ctx context.Context, in ListNotificationsInput) ([]entity.Notification, error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Limit == 0 {
		in.Limit = 20
	}

	items, err := s.repoDB.ListRecent(ctx, clm.UserID, in.UnreadOnly, in.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list notifications", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return items, nil
}

func (s *Usecase) UnreadCount(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "UnreadCount")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return 0, err
	}

	n, err := s.repoDB.UnreadCount(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count unread", "user_id", clm.UserID, "error", err)
		return 0, goerror.NewServer(err)
	}

	return n, nil
}

// MarkRead is idempotent: marking an already read notification succeeds.
func (s *Usecase) MarkRead(ctx context.Context, notificationID int64) error {
	ctx, span := s.startSpan(ctx, "MarkRead")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	found, err := s.repoDB.MarkRead(ctx, clm.UserID, notificationID, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark read", "user_id", clm.UserID, "notification_id", notificationID, "error", err)
		return goerror.NewServer(err)
	}
	if !found {
		return goerror.NewBusiness("Notification not found", goerror.CodeNotFound)
	}

	return nil
}

// MarkAllRead returns how many notifications changed to read.
func (s *Usecase) MarkAllRead(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "MarkAllRead")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return 0, err
	}

	n, err := s.repoDB.MarkAllRead(ctx, clm.UserID, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark all read", "user_id", clm.UserID, "error", err)
		return 0, goerror.NewServer(err)
	}

	return n, nil
}

// ListDeliveries is the delivery audit of one notification. Owners see their
// own; anybody else needs the notification.delivery read permission.
func (s *Usecase) ListDeliveries(ctx context.Context, notificationID int64) ([]entity.DeliveryRecord, error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.repoDB.GetNotification(ctx, notificationID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Notification not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "notification_id", notificationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if n.UserID != clm.UserID {
		if err := s.authorize(ctx, clm, ObjDelivery, ActRead); err != nil {
			return nil, err
		}
	}

	records, err := s.repoDB.ListDeliveries(ctx, notificationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list deliveries", "notification_id", notificationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return records, nil
}
