package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
)

// StreamNotifications subscribes the caller to live in-app messages. The
// channel closes when ctx is done.
func (s *Usecase) StreamNotifications(ctx context.Context) (<-chan entity.OutboundMessage, error) {
	ctx, span := s.startSpan(ctx, "StreamNotifications")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if s.stream == nil {
		slog.ErrorContext(ctx, "notification stream is not configured")
		return nil, goerror.NewServer(errors.New("stream hub not configured"))
	}

	return s.stream.Subscribe(ctx, clm.UserID), nil
}
