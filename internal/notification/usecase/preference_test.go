package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
)

func ptr[T any](v T) *T { return &v }

func TestGetPreference_DefaultsAndCache(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	stored := entity.DefaultUserPreference(userID)
	stored.SMS = true
	_ = f.repo.UpsertPreference(context.Background(), stored)

	// Act
	got, err := f.uc.GetPreference(authCtx(userID))

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SMS {
		t.Fatalf("expected stored preference, got %+v", got)
	}
	if cached, _ := f.cache.GetPreference(context.Background(), userID); cached == nil || !cached.SMS {
		t.Fatalf("stored preference must be cached")
	}
}

func TestGetPreference_Unauthenticated(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.GetPreference(context.Background())

	if code := errCode(err); code != goerror.CodeUnauthorized {
		t.Fatalf("code = %v, want unauthorized", code)
	}
}

func TestUpdatePreference(t *testing.T) {
	tests := []struct {
		name     string
		in       UpdatePreferenceInput
		wantCode goerror.Code
		check    func(t *testing.T, p *entity.UserPreference)
	}{
		{
			name: "sets quiet hours and category toggles",
			in: UpdatePreferenceInput{
				QuietHoursStart: ptr("22:00"),
				QuietHoursEnd:   ptr("08:00"),
				PushCategories:  CategoryTogglesInput{Announcement: ptr(false)},
				Timezone:        ptr("Asia/Jakarta"),
			},
			check: func(t *testing.T, p *entity.UserPreference) {
				if !p.HasQuietHours() || p.QuietHoursStart.String() != "22:00:00" || p.QuietHoursEnd.String() != "08:00:00" {
					t.Fatalf("quiet hours not applied: %+v", p)
				}
				if p.PushCategories.Announcement || !p.PushCategories.Reminder {
					t.Fatalf("push toggles = %+v", p.PushCategories)
				}
				if p.Timezone != "Asia/Jakarta" {
					t.Fatalf("timezone = %q", p.Timezone)
				}
			},
		},
		{
			name:     "only one quiet bound",
			in:       UpdatePreferenceInput{QuietHoursStart: ptr("22:00")},
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "malformed time of day",
			in:       UpdatePreferenceInput{WeekdayWindowStart: ptr("25:99")},
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "unknown timezone",
			in:       UpdatePreferenceInput{Timezone: ptr("Mars/Olympus")},
			wantCode: goerror.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, nil)

			// Act
			got, err := f.uc.UpdatePreference(authCtx(userID), tt.in)

			// Assert
			if tt.wantCode != goerror.CodeInternal {
				if code := errCode(err); code != tt.wantCode {
					t.Fatalf("code = %v, want %v (err %v)", code, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
			if len(f.cache.deleted) != 1 {
				t.Fatalf("cache must be invalidated")
			}
			stored, _ := f.repo.GetPreference(context.Background(), userID)
			if stored == nil || !stored.HasQuietHours() {
				t.Fatalf("preference not stored")
			}
		})
	}
}

func TestUpdatePreference_ClearQuietHours(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	_ = f.repo.UpsertPreference(context.Background(), quietPreference("22:00", "08:00"))

	// Act
	got, err := f.uc.UpdatePreference(authCtx(userID), UpdatePreferenceInput{ClearQuietHours: true})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HasQuietHours() {
		t.Fatalf("quiet hours must be cleared")
	}
}

func TestUpdateUserPreference_RequiresPermission(t *testing.T) {
	tests := []struct {
		name     string
		allow    bool
		wantCode goerror.Code
	}{
		{name: "admin", allow: true, wantCode: goerror.CodeInternal},
		{name: "regular user", allow: false, wantCode: goerror.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, fakeEnforcer{allow: tt.allow})

			// Act
			_, err := f.uc.UpdateUserPreference(authCtx(1), UpdatePreferenceInput{UserID: userID, SMS: ptr(true)})

			// Assert
			if tt.wantCode == goerror.CodeInternal {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p, _ := f.repo.GetPreference(context.Background(), userID); p == nil || !p.SMS {
					t.Fatalf("target preference not updated")
				}
				return
			}
			if code := errCode(err); code != tt.wantCode {
				t.Fatalf("code = %v, want %v", code, tt.wantCode)
			}
		})
	}
}

func TestContactAndDevices(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	ctx := authCtx(userID)

	// Act
	c, err := f.uc.UpdateContact(ctx, UpdateContactInput{Email: ptr("Ana@HR.test"), Phone: ptr("+628111222333")})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	regErr := f.uc.RegisterDevice(ctx, RegisterDeviceInput{Token: "555", Platform: "telegram"})
	rmErr := f.uc.RemoveDevice(ctx, "555")
	rmAgainErr := f.uc.RemoveDevice(ctx, "555")
	_, badPhoneErr := f.uc.UpdateContact(ctx, UpdateContactInput{Phone: ptr("0811")})

	// Assert
	if c.Email != "ana@hr.test" || c.Phone != "+628111222333" {
		t.Fatalf("unexpected contact: %+v", c)
	}
	if regErr != nil || rmErr != nil {
		t.Fatalf("device errors: %v %v", regErr, rmErr)
	}
	if errCode(rmAgainErr) != goerror.CodeNotFound {
		t.Fatalf("second remove must be not found, got %v", rmAgainErr)
	}
	if errCode(badPhoneErr) != goerror.CodeInvalidInput {
		t.Fatalf("phone must be e164, got %v", badPhoneErr)
	}
}

func TestRegisterDevice_OnlyDeliverableTokens(t *testing.T) {
	tests := []struct {
		name     string
		in       RegisterDeviceInput
		wantCode goerror.Code
		wantSave bool
	}{
		{name: "telegram chat id", in: RegisterDeviceInput{Token: "987654", Platform: "telegram"}, wantSave: true},
		{name: "android platform", in: RegisterDeviceInput{Token: "fcm:APA91bH-android-token", Platform: "android"}, wantCode: goerror.CodeInvalidInput},
		{name: "telegram with non numeric token", in: RegisterDeviceInput{Token: "web-abc", Platform: "telegram"}, wantCode: goerror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, nil)

			// Act
			err := f.uc.RegisterDevice(authCtx(userID), tt.in)

			// Assert
			if tt.wantSave {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if code := errCode(err); code != tt.wantCode {
				t.Fatalf("code = %v, want %v", code, tt.wantCode)
			}
			if saved := len(f.repo.devices[userID]) == 1; saved != tt.wantSave {
				t.Fatalf("saved = %v, want %v", saved, tt.wantSave)
			}
		})
	}
}
