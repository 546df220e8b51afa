package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
)

type UpdateContactInput struct {
	Email *string `validate:"omitempty,email,max=254"`
	Phone *string `validate:"omitempty,e164"`
}

func (s *Usecase) GetContact(ctx context.Context) (*entity.Contact, error) {
	ctx, span := s.startSpan(ctx, "GetContact")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.loadContact(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &c, nil
}

// UpdateContact replaces the caller's email or phone. An empty string clears the value.
func (s *Usecase) UpdateContact(ctx context.Context, in UpdateContactInput) (*entity.Contact, error) {
	ctx, span := s.startSpan(ctx, "UpdateContact")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	c, err := s.loadContact(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get contact", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}

	if err := s.repoDB.UpsertContact(ctx, c); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert contact", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &c, nil
}

// RegisterDeviceInput registers a push target for the calling user.
type RegisterDeviceInput struct {
	Token    string `validate:"required,max=512"`
	Platform string `validate:"required,oneof=telegram"`
}

func (s *Usecase) RegisterDevice(ctx context.Context, in RegisterDeviceInput) error {
	ctx, span := s.startSpan(ctx, "RegisterDevice")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if _, ok := entity.ParsePushToken(in.Token); !ok {
		return goerror.NewInvalidInput(nil, "device_token", "device_token must be a telegram chat id")
	}

	device := entity.Device{
		UserID:    clm.UserID,
		Token:     strings.TrimSpace(in.Token),
		Platform:  in.Platform,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repoDB.RegisterDevice(ctx, device); err != nil {
		slog.ErrorContext(ctx, "failed to repo register device", "user_id", clm.UserID, "platform", in.Platform, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// RemoveDevice fails with CodeNotFound for a token the user never registered.
func (s *Usecase) RemoveDevice(ctx context.Context, token string) error {
	ctx, span := s.startSpan(ctx, "RemoveDevice")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	removed, err := s.repoDB.RemoveDevice(ctx, clm.UserID, token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo remove device", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}
	if !removed {
		return goerror.NewBusiness("Device not found", goerror.CodeNotFound)
	}

	return nil
}
