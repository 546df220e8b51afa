package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

type toggles struct {
	Assignment   bool `json:"assignment"`
	Reminder     bool `json:"reminder"`
	Announcement bool `json:"announcement"`
	Security     bool `json:"security"`
}

func encodeToggles(c entity.CategoryToggles) ([]byte, error) {
	return json.Marshal(toggles(c))
}

func decodeToggles(raw []byte) (entity.CategoryToggles, error) {
	var t toggles
	if len(raw) == 0 {
		return entity.CategoryToggles{}, nil
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return entity.CategoryToggles{}, err
	}
	return entity.CategoryToggles(t), nil
}

func encodeTimeOfDay(t *entity.TimeOfDay) pgtype.Text {
	if t == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: t.String(), Valid: true}
}

func decodeTimeOfDay(v pgtype.Text) (*entity.TimeOfDay, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := entity.ParseTimeOfDay(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const queryGetPreference = `
SELECT user_id, in_app, email, sms, push,
       email_categories, sms_categories, push_categories,
       sms_urgent_only, quiet_hours_start, quiet_hours_end,
       weekend_allowed, weekday_window_start, weekday_window_end,
       timezone, updated_at
FROM notification_preferences
WHERE user_id = $1`

// GetPreference returns goerror.ErrNotFound for a user without a stored row.
func (s *DB) GetPreference(ctx context.Context, userID int64) (_ *entity.UserPreference, err error) {
	ctx, span := s.startSpan(ctx, "GetPreference")
	defer func() { s.endSpan(span, err) }()

	var (
		p                         entity.UserPreference
		emailCat, smsCat, pushCat []byte
		quietStart, quietEnd      pgtype.Text
		windowStart, windowEnd    pgtype.Text
		updatedAt                 time.Time
	)
	err = s.conn.QueryRow(ctx, queryGetPreference, userID).Scan(
		&p.UserID, &p.InApp, &p.Email, &p.SMS, &p.Push,
		&emailCat, &smsCat, &pushCat,
		&p.SMSUrgentOnly, &quietStart, &quietEnd,
		&p.WeekendAllowed, &windowStart, &windowEnd,
		&p.Timezone, &updatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	p.UpdatedAt = updatedAt

	if p.EmailCategories, err = decodeToggles(emailCat); err != nil {
		return nil, err
	}
	if p.SMSCategories, err = decodeToggles(smsCat); err != nil {
		return nil, err
	}
	if p.PushCategories, err = decodeToggles(pushCat); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		src pgtype.Text
		dst **entity.TimeOfDay
	}{
		{quietStart, &p.QuietHoursStart},
		{quietEnd, &p.QuietHoursEnd},
		{windowStart, &p.WeekdayWindowStart},
		{windowEnd, &p.WeekdayWindowEnd},
	} {
		if *f.dst, err = decodeTimeOfDay(f.src); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

const queryUpsertPreference = `
INSERT INTO notification_preferences (
    user_id, in_app, email, sms, push,
    email_categories, sms_categories, push_categories,
    sms_urgent_only, quiet_hours_start, quiet_hours_end,
    weekend_allowed, weekday_window_start, weekday_window_end,
    timezone, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (user_id) DO UPDATE SET
    in_app = EXCLUDED.in_app,
    email = EXCLUDED.email,
    sms = EXCLUDED.sms,
    push = EXCLUDED.push,
    email_categories = EXCLUDED.email_categories,
    sms_categories = EXCLUDED.sms_categories,
    push_categories = EXCLUDED.push_categories,
    sms_urgent_only = EXCLUDED.sms_urgent_only,
    quiet_hours_start = EXCLUDED.quiet_hours_start,
    quiet_hours_end = EXCLUDED.quiet_hours_end,
    weekend_allowed = EXCLUDED.weekend_allowed,
    weekday_window_start = EXCLUDED.weekday_window_start,
    weekday_window_end = EXCLUDED.weekday_window_end,
    timezone = EXCLUDED.timezone,
    updated_at = EXCLUDED.updated_at`

func (s *DB) UpsertPreference(ctx context.Context, p entity.UserPreference) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertPreference")
	defer func() { s.endSpan(span, err) }()

	emailCat, err := encodeToggles(p.EmailCategories)
	if err != nil {
		return err
	}
	smsCat, err := encodeToggles(p.SMSCategories)
	if err != nil {
		return err
	}
	pushCat, err := encodeToggles(p.PushCategories)
	if err != nil {
		return err
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.conn.Exec(ctx, queryUpsertPreference,
		p.UserID, p.InApp, p.Email, p.SMS, p.Push,
		emailCat, smsCat, pushCat,
		p.SMSUrgentOnly, encodeTimeOfDay(p.QuietHoursStart), encodeTimeOfDay(p.QuietHoursEnd),
		p.WeekendAllowed, encodeTimeOfDay(p.WeekdayWindowStart), encodeTimeOfDay(p.WeekdayWindowEnd),
		p.Timezone, updatedAt,
	)
	return s.mapError(err)
}
