package inbound

import (
	"context"
	"sync"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
)

// fakeUC records inputs and returns canned results.
type fakeUC struct {
	mu sync.Mutex

	submitIn  []usecase.SubmitInput
	submitOut *usecase.SubmitOutput
	submitErr error

	prefIn   usecase.UpdatePreferenceInput
	pref     *entity.UserPreference
	contact  *entity.Contact
	inboxIn  usecase.ListNotificationsInput
	inbox    []entity.Notification
	readID   int64
	records  []entity.DeliveryRecord
	stream   chan entity.OutboundMessage
	err      error
	removed  string
	deviceIn usecase.RegisterDeviceInput
}

func (f *fakeUC) Submit(_ context.Context, in usecase.SubmitInput) (*usecase.SubmitOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitIn = append(f.submitIn, in)
	return f.submitOut, f.submitErr
}

func (f *fakeUC) StreamNotifications(context.Context) (<-chan entity.OutboundMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func (f *fakeUC) GetPreference(context.Context) (*entity.UserPreference, error) {
	return f.pref, f.err
}

func (f *fakeUC) UpdatePreference(_ context.Context, in usecase.UpdatePreferenceInput) (*entity.UserPreference, error) {
	f.prefIn = in
	return f.pref, f.err
}

func (f *fakeUC) UpdateUserPreference(_ context.Context, in usecase.UpdatePreferenceInput) (*entity.UserPreference, error) {
	f.prefIn = in
	return f.pref, f.err
}

func (f *fakeUC) GetContact(context.Context) (*entity.Contact, error) {
	return f.contact, f.err
}

func (f *fakeUC) UpdateContact(context.Context, usecase.UpdateContactInput) (*entity.Contact, error) {
	return f.contact, f.err
}

func (f *fakeUC) RegisterDevice(_ context.Context, in usecase.RegisterDeviceInput) error {
	f.deviceIn = in
	return f.err
}

func (f *fakeUC) RemoveDevice(_ context.Context, token string) error {
	f.removed = token
	return f.err
}

func (f *fakeUC) ListNotifications(_ context.Context, in usecase.ListNotificationsInput) ([]entity.Notification, error) {
	f.inboxIn = in
	return f.inbox, f.err
}

func (f *fakeUC) UnreadCount(context.Context) (int64, error) {
	return int64(len(f.inbox)), f.err
}

func (f *fakeUC) MarkRead(_ context.Context, id int64) error {
	f.readID = id
	return f.err
}

func (f *fakeUC) MarkAllRead(context.Context) (int64, error) {
	return 3, f.err
}

func (f *fakeUC) ListDeliveries(_ context.Context, id int64) ([]entity.DeliveryRecord, error) {
	f.readID = id
	return f.records, f.err
}
