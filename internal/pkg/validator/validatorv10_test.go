package validator

import (
	"errors"
	"testing"
)

type preferenceInput struct {
	QuietHoursStart string `validate:"omitempty,timeofday"`
	Timezone        string `validate:"omitempty,timezone"`
	UserID          int64  `validate:"required,gt=0"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator: %v", err)
	}

	tests := []struct {
		name       string
		in         preferenceInput
		wantFields []string
	}{
		{name: "valid", in: preferenceInput{QuietHoursStart: "22:00", Timezone: "Asia/Jakarta", UserID: 1}},
		{name: "valid with seconds", in: preferenceInput{QuietHoursStart: "07:59:59", UserID: 1}},
		{name: "bad time", in: preferenceInput{QuietHoursStart: "24:00", UserID: 1}, wantFields: []string{"quiet_hours_start"}},
		{name: "bad zone", in: preferenceInput{Timezone: "Mars/Olympus", UserID: 1}, wantFields: []string{"timezone"}},
		{name: "missing user", in: preferenceInput{}, wantFields: []string{"user_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(tt.in)

			// Assert
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected V10ValidationError, got %v", err)
			}
			for _, f := range tt.wantFields {
				if verr.Values()[f] == "" {
					t.Fatalf("missing field %q in %v", f, verr)
				}
			}
		})
	}
}
