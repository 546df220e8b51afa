package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
)

// loadPreference reads through the cache and falls back to defaults for
// users that never saved preferences.
func (s *Usecase) loadPreference(ctx context.Context, userID int64) (entity.UserPreference, error) {
	if s.repoCache != nil {
		cached, err := s.repoCache.GetPreference(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "failed to cache get preference", "user_id", userID, "error", err)
		}
		if cached != nil {
			return *cached, nil
		}
	}

	stored, err := s.repoDB.GetPreference(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.DefaultUserPreference(userID), nil
	}
	if err != nil {
		return entity.UserPreference{}, err
	}

	if s.repoCache != nil {
		if err := s.repoCache.SetPreference(ctx, *stored); err != nil {
			slog.WarnContext(ctx, "failed to cache set preference", "user_id", userID, "error", err)
		}
	}

	return *stored, nil
}

func (s *Usecase) loadContact(ctx context.Context, userID int64) (entity.Contact, error) {
	c, err := s.repoDB.GetContact(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.Contact{UserID: userID}, nil
	}
	if err != nil {
		return entity.Contact{}, err
	}
	return *c, nil
}

func (s *Usecase) GetPreference(ctx context.Context) (*entity.UserPreference, error) {
	ctx, span := s.startSpan(ctx, "GetPreference")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	pref, err := s.loadPreference(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get preference", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &pref, nil
}

type CategoryTogglesInput struct {
	Assignment   *bool
	Reminder     *bool
	Announcement *bool
	Security     *bool
}

type UpdatePreferenceInput struct {
	UserID int64 `validate:"required,gt=0"`

	InApp *bool
	Email *bool
	SMS   *bool
	Push  *bool

	EmailCategories CategoryTogglesInput
	SMSCategories   CategoryTogglesInput
	PushCategories  CategoryTogglesInput

	SMSUrgentOnly *bool

	QuietHoursStart *string `validate:"omitempty,timeofday"`
	QuietHoursEnd   *string `validate:"omitempty,timeofday"`
	ClearQuietHours bool

	WeekendAllowed     *bool
	WeekdayWindowStart *string `validate:"omitempty,timeofday"`
	WeekdayWindowEnd   *string `validate:"omitempty,timeofday"`

	Timezone *string `validate:"omitempty,timezone"`
}

// UpdatePreference patches the caller's own preferences.
func (s *Usecase) UpdatePreference(ctx context.Context, in UpdatePreferenceInput) (*entity.UserPreference, error) {
	ctx, span := s.startSpan(ctx, "UpdatePreference")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	in.UserID = clm.UserID
	return s.upsertPreference(ctx, in)
}

// UpdateUserPreference lets an administrator patch another user's preferences.
func (s *Usecase) UpdateUserPreference(ctx context.Context, in UpdatePreferenceInput) (*entity.UserPreference, error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPreference")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, clm, ObjPreference, ActWrite); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "administrator updating user preference", "admin_id", clm.UserID, "user_id", in.UserID)
	return s.upsertPreference(ctx, in)
}

func (s *Usecase) upsertPreference(ctx context.Context, in UpdatePreferenceInput) (*entity.UserPreference, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	patch, err := in.toPatch()
	if err != nil {
		return nil, err
	}

	current, err := s.loadPreference(ctx, in.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get preference", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	next := patch.Apply(current)
	next.UpdatedAt = s.clock.Now()
	if (next.QuietHoursStart == nil) != (next.QuietHoursEnd == nil) {
		return nil, goerror.NewInvalidInput(nil, "quiet_hours", "quiet hours need both start and end")
	}

	if err := s.repoDB.UpsertPreference(ctx, next); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert preference", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.repoCache != nil {
		if err := s.repoCache.DeletePreference(ctx, in.UserID); err != nil {
			slog.WarnContext(ctx, "failed to cache invalidate preference", "user_id", in.UserID, "error", err)
		}
	}

	return &next, nil
}

func (in UpdatePreferenceInput) toPatch() (entity.PreferencePatch, error) {
	patch := entity.PreferencePatch{
		InApp:           in.InApp,
		Email:           in.Email,
		SMS:             in.SMS,
		Push:            in.Push,
		EmailCategories: entity.CategoryTogglesPatch(in.EmailCategories),
		SMSCategories:   entity.CategoryTogglesPatch(in.SMSCategories),
		PushCategories:  entity.CategoryTogglesPatch(in.PushCategories),
		SMSUrgentOnly:   in.SMSUrgentOnly,
		ClearQuietHours: in.ClearQuietHours,
		WeekendAllowed:  in.WeekendAllowed,
		Timezone:        in.Timezone,
	}

	fields := []struct {
		name string
		raw  *string
		dst  **entity.TimeOfDay
	}{
		{"quiet_hours_start", in.QuietHoursStart, &patch.QuietHoursStart},
		{"quiet_hours_end", in.QuietHoursEnd, &patch.QuietHoursEnd},
		{"weekday_window_start", in.WeekdayWindowStart, &patch.WeekdayWindowStart},
		{"weekday_window_end", in.WeekdayWindowEnd, &patch.WeekdayWindowEnd},
	}
	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		tod, err := entity.ParseTimeOfDay(*f.raw)
		if err != nil {
			return entity.PreferencePatch{}, goerror.NewInvalidInput(nil, f.name, err.Error())
		}
		*f.dst = &tod
	}

	return patch, nil
}
