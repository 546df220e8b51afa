package strcase

import "testing"

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"UserID":          "user_id",
		"QuietHoursStart": "quiet_hours_start",
		"SMSUrgentOnly":   "sms_urgent_only",
		"HTTPServer":      "http_server",
		"Limit":           "limit",
		"Channel2Name":    "channel2_name",
	}

	for in, want := range tests {
		if got := ToLowerSnake(in); got != want {
			t.Fatalf("ToLowerSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
