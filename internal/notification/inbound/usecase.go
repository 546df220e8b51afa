package inbound

import (
	"context"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
)

type ucSubmit interface {
	Submit(ctx context.Context, in usecase.SubmitInput) (*usecase.SubmitOutput, error)
}

type ucDispatcher interface {
	ListReady(ctx context.Context) ([]entity.DeliveryRecord, error)
	DispatchRecord(ctx context.Context, rec entity.DeliveryRecord) error
	Wakeups() <-chan struct{}
}

type ucRecovery interface {
	RecoverStale(ctx context.Context) (int, error)
}

type ucStream interface {
	StreamNotifications(ctx context.Context) (<-chan entity.OutboundMessage, error)
}

type uc interface {
	ucSubmit
	ucStream

	GetPreference(ctx context.Context) (*entity.UserPreference, error)
	UpdatePreference(ctx context.Context, in usecase.UpdatePreferenceInput) (*entity.UserPreference, error)
	UpdateUserPreference(ctx context.Context, in usecase.UpdatePreferenceInput) (*entity.UserPreference, error)

	GetContact(ctx context.Context) (*entity.Contact, error)
	UpdateContact(ctx context.Context, in usecase.UpdateContactInput) (*entity.Contact, error)
	RegisterDevice(ctx context.Context, in usecase.RegisterDeviceInput) error
	RemoveDevice(ctx context.Context, token string) error

	ListNotifications(ctx context.Context, in usecase.ListNotificationsInput) ([]entity.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, notificationID int64) error
	MarkAllRead(ctx context.Context) (int64, error)
	ListDeliveries(ctx context.Context, notificationID int64) ([]entity.DeliveryRecord, error)
}
