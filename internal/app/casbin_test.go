package app

import "testing"

func TestNewEnforcer(t *testing.T) {
	// Arrange
	e, err := newEnforcer(
		[]string{
			"role:notifier, notification.request, create",
			"role:admin, *, *",
		},
		[]string{
			"900, role:notifier",
			"1, role:admin",
		},
	)
	if err != nil {
		t.Fatalf("newEnforcer: %v", err)
	}

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"900", "notification.request", "create", true},
		{"900", "notification.preference", "write", false},
		{"1", "notification.delivery", "read", true},
		{"42", "notification.request", "create", false},
	}

	for _, tt := range tests {
		// Act
		ok, err := e.Enforce(tt.sub, tt.obj, tt.act)

		// Assert
		if err != nil {
			t.Fatalf("Enforce: %v", err)
		}
		if ok != tt.want {
			t.Fatalf("Enforce(%s, %s, %s) = %v, want %v", tt.sub, tt.obj, tt.act, ok, tt.want)
		}
	}
}

func TestNewEnforcer_BadRule(t *testing.T) {
	if _, err := newEnforcer([]string{"role:admin, *"}, nil); err == nil {
		t.Fatalf("expected error for a short policy line")
	}
}
