package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
	"github.com/shandysiswandi/hrnotify/internal/pkg/valueobject"
)

type CategoryToggles struct {
	Assignment   *bool `json:"assignment,omitempty"`
	Reminder     *bool `json:"reminder,omitempty"`
	Announcement *bool `json:"announcement,omitempty"`
	Security     *bool `json:"security,omitempty"`
}

func (c CategoryToggles) input() usecase.CategoryTogglesInput {
	return usecase.CategoryTogglesInput{
		Assignment:   c.Assignment,
		Reminder:     c.Reminder,
		Announcement: c.Announcement,
		Security:     c.Security,
	}
}

// UpdatePreferenceRequest is a partial update: absent fields keep their value.
type UpdatePreferenceRequest struct {
	InApp *bool `json:"in_app,omitempty"`
	Email *bool `json:"email,omitempty"`
	SMS   *bool `json:"sms,omitempty"`
	Push  *bool `json:"push,omitempty"`

	EmailCategories CategoryToggles `json:"email_categories"`
	SMSCategories   CategoryToggles `json:"sms_categories"`
	PushCategories  CategoryToggles `json:"push_categories"`

	SMSUrgentOnly *bool `json:"sms_urgent_only,omitempty"`

	QuietHoursStart *string `json:"quiet_hours_start,omitempty" example:"22:00"`
	QuietHoursEnd   *string `json:"quiet_hours_end,omitempty" example:"07:00"`
	ClearQuietHours bool    `json:"clear_quiet_hours,omitempty"`

	WeekendAllowed     *bool   `json:"weekend_allowed,omitempty"`
	WeekdayWindowStart *string `json:"weekday_window_start,omitempty" example:"08:00"`
	WeekdayWindowEnd   *string `json:"weekday_window_end,omitempty" example:"18:00"`

	Timezone *string `json:"timezone,omitempty" example:"Asia/Jakarta"`
}

func (r UpdatePreferenceRequest) input(userID int64) usecase.UpdatePreferenceInput {
	return usecase.UpdatePreferenceInput{
		UserID:             userID,
		InApp:              r.InApp,
		Email:              r.Email,
		SMS:                r.SMS,
		Push:               r.Push,
		EmailCategories:    r.EmailCategories.input(),
		SMSCategories:      r.SMSCategories.input(),
		PushCategories:     r.PushCategories.input(),
		SMSUrgentOnly:      r.SMSUrgentOnly,
		QuietHoursStart:    r.QuietHoursStart,
		QuietHoursEnd:      r.QuietHoursEnd,
		ClearQuietHours:    r.ClearQuietHours,
		WeekendAllowed:     r.WeekendAllowed,
		WeekdayWindowStart: r.WeekdayWindowStart,
		WeekdayWindowEnd:   r.WeekdayWindowEnd,
		Timezone:           r.Timezone,
	}
}

type CategoryTogglesResponse struct {
	Assignment   bool `json:"assignment"`
	Reminder     bool `json:"reminder"`
	Announcement bool `json:"announcement"`
	Security     bool `json:"security"`
}

type PreferenceResponse struct {
	UserID int64 `json:"user_id,string"`

	InApp bool `json:"in_app"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`

	EmailCategories CategoryTogglesResponse `json:"email_categories"`
	SMSCategories   CategoryTogglesResponse `json:"sms_categories"`
	PushCategories  CategoryTogglesResponse `json:"push_categories"`

	SMSUrgentOnly bool `json:"sms_urgent_only"`

	QuietHoursStart    *string `json:"quiet_hours_start"`
	QuietHoursEnd      *string `json:"quiet_hours_end"`
	WeekendAllowed     bool    `json:"weekend_allowed"`
	WeekdayWindowStart *string `json:"weekday_window_start"`
	WeekdayWindowEnd   *string `json:"weekday_window_end"`
	Timezone           string  `json:"timezone"`
}

func togglesResponse(c entity.CategoryToggles) CategoryTogglesResponse {
	return CategoryTogglesResponse{
		Assignment:   c.Assignment,
		Reminder:     c.Reminder,
		Announcement: c.Announcement,
		Security:     c.Security,
	}
}

func timeOfDayPtr(t *entity.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func preferenceResponse(p *entity.UserPreference) PreferenceResponse {
	return PreferenceResponse{
		UserID:             p.UserID,
		InApp:              p.InApp,
		Email:              p.Email,
		SMS:                p.SMS,
		Push:               p.Push,
		EmailCategories:    togglesResponse(p.EmailCategories),
		SMSCategories:      togglesResponse(p.SMSCategories),
		PushCategories:     togglesResponse(p.PushCategories),
		SMSUrgentOnly:      p.SMSUrgentOnly,
		QuietHoursStart:    timeOfDayPtr(p.QuietHoursStart),
		QuietHoursEnd:      timeOfDayPtr(p.QuietHoursEnd),
		WeekendAllowed:     p.WeekendAllowed,
		WeekdayWindowStart: timeOfDayPtr(p.WeekdayWindowStart),
		WeekdayWindowEnd:   timeOfDayPtr(p.WeekdayWindowEnd),
		Timezone:           p.Timezone,
	}
}

type UpdateContactRequest struct {
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty" example:"+6281234567890"`
}

type ContactResponse struct {
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	PushTokens []string `json:"push_tokens"`
}

func contactResponse(c *entity.Contact) ContactResponse {
	tokens := c.PushTokens
	if tokens == nil {
		tokens = []string{}
	}
	return ContactResponse{Email: c.Email, Phone: c.Phone, PushTokens: tokens}
}

type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token"`
	Platform    string `json:"platform" example:"telegram"`
}

type RemoveDeviceRequest struct {
	DeviceToken string `json:"device_token"`
}

type NotificationResponse struct {
	ID        int64               `json:"id,string"`
	Title     string              `json:"title"`
	Message   string              `json:"message"`
	Link      string              `json:"link,omitempty"`
	Category  string              `json:"category"`
	Priority  string              `json:"priority"`
	Metadata  valueobject.JSONMap `json:"metadata" swaggertype:"object"`
	IsRead    bool                `json:"is_read"`
	ReadAt    *time.Time          `json:"read_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type DeliveryResponse struct {
	ID           int64      `json:"id,string"`
	Channel      string     `json:"channel"`
	State        string     `json:"state"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	AttemptCount int        `json:"attempt_count"`
	LastError    string     `json:"last_error,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type DeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

type SubmitRequest struct {
	RecipientID int64          `json:"recipient_id,string"`
	Category    string         `json:"category" example:"assignment"`
	Priority    string         `json:"priority" example:"normal"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Link        string         `json:"link,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" swaggertype:"object"`
}

type SubmitDeliveryResponse struct {
	ID           int64     `json:"id,string"`
	Channel      string    `json:"channel"`
	State        string    `json:"state"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

type SubmitResponse struct {
	NotificationID int64                    `json:"notification_id,string"`
	Deliveries     []SubmitDeliveryResponse `json:"deliveries"`
}

func (SubmitResponse) StatusCode() int { return http.StatusAccepted }

func (SubmitResponse) Message() string { return "notification accepted" }
