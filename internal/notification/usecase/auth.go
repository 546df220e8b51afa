package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/jwt"
)

// Casbin objects and actions checked by this module.
const (
	ObjPreference = "notification.preference"
	ObjDelivery   = "notification.delivery"
	ObjRequest    = "notification.request"

	ActRead   = "read"
	ActWrite  = "write"
	ActCreate = "create"
)

func (s *Usecase) requireAuth(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewUnauthorized()
	}

	return clm, nil
}

func (s *Usecase) authorize(ctx context.Context, clm *jwt.Claims, obj, act string) error {
	if s.enforcer == nil {
		return goerror.NewForbidden()
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "obj", obj, "act", act, "error", err)
		return goerror.NewServer(err)
	}
	if !ok {
		return goerror.NewForbidden()
	}

	return nil
}
