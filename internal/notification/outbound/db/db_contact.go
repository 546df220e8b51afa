package db

import (
	"context"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

// A user with neither a contact row nor a device still gets a row back,
// with empty addresses. Only devices a push gateway can serve count as tokens.
const queryGetContact = `
SELECT COALESCE(c.email, ''), COALESCE(c.phone, ''),
       ARRAY(SELECT d.token FROM notification_devices d
             WHERE d.user_id = $1 AND d.platform = 'telegram' ORDER BY d.created_at)
FROM (SELECT 1) AS one
LEFT JOIN notification_contacts c ON c.user_id = $1`

// GetContact never returns ErrNotFound. A user without a row gets an empty contact.
func (s *DB) GetContact(ctx context.Context, userID int64) (_ *entity.Contact, err error) {
	ctx, span := s.startSpan(ctx, "GetContact")
	defer func() { s.endSpan(span, err) }()

	c := entity.Contact{UserID: userID}
	if err = s.conn.QueryRow(ctx, queryGetContact, userID).Scan(&c.Email, &c.Phone, &c.PushTokens); err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}

func (s *DB) UpsertContact(ctx context.Context, c entity.Contact) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertContact")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
INSERT INTO notification_contacts (user_id, email, phone, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, phone = EXCLUDED.phone, updated_at = now()`,
		c.UserID, c.Email, c.Phone,
	)
	return s.mapError(err)
}

// RegisterDevice is idempotent per (user, token); re-registering updates the platform.
func (s *DB) RegisterDevice(ctx context.Context, d entity.Device) (err error) {
	ctx, span := s.startSpan(ctx, "RegisterDevice")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
INSERT INTO notification_devices (user_id, token, platform, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform`,
		d.UserID, d.Token, d.Platform, d.CreatedAt,
	)
	return s.mapError(err)
}

// RemoveDevice reports whether the token was registered for the user.
func (s *DB) RemoveDevice(ctx context.Context, userID int64, token string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "RemoveDevice")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM notification_devices WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
