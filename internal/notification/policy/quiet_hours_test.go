package policy

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

func quietPref(start, end string) entity.UserPreference {
	pref := entity.DefaultUserPreference(1)
	s, e := entity.MustTimeOfDay(start), entity.MustTimeOfDay(end)
	pref.QuietHoursStart, pref.QuietHoursEnd = &s, &e
	return pref
}

// 2026-03-02 is a Monday.
func at(day int, clock string) time.Time {
	tod := entity.MustTimeOfDay(clock)
	return time.Date(2026, 3, day, tod.Hour, tod.Minute, tod.Second, 0, time.UTC)
}

func TestIsSuppressed_SameDayWindow(t *testing.T) {
	pref := quietPref("12:00", "13:00")

	tests := []struct {
		name     string
		now      time.Time
		want     bool
		wantNext time.Time
	}{
		{"before start", at(2, "11:59:59"), false, time.Time{}},
		{"at start", at(2, "12:00:00"), true, at(2, "13:00:00")},
		{"inside", at(2, "12:30:00"), true, at(2, "13:00:00")},
		{"at end", at(2, "13:00:00"), true, at(2, "13:00:01")},
		{"after end", at(2, "13:00:01"), false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSuppressed(pref, tt.now)
			if got.Suppressed != tt.want {
				t.Fatalf("Suppressed = %v, want %v", got.Suppressed, tt.want)
			}
			if tt.want && !got.NextEligible.Equal(tt.wantNext) {
				t.Fatalf("NextEligible = %v, want %v", got.NextEligible, tt.wantNext)
			}
		})
	}
}

func TestIsSuppressed_OvernightWindow(t *testing.T) {
	pref := quietPref("22:00", "08:00")

	tests := []struct {
		name     string
		now      time.Time
		want     bool
		wantNext time.Time
	}{
		{"before start", at(2, "21:59:59"), false, time.Time{}},
		{"at start", at(2, "22:00:00"), true, at(3, "08:00:00")},
		{"late evening", at(2, "23:30:00"), true, at(3, "08:00:00")},
		{"after midnight", at(3, "03:00:00"), true, at(3, "08:00:00")},
		{"at end", at(3, "08:00:00"), true, at(3, "08:00:01")},
		{"after end", at(3, "08:00:01"), false, time.Time{}},
		{"midday", at(3, "12:00:00"), false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSuppressed(pref, tt.now)
			if got.Suppressed != tt.want {
				t.Fatalf("Suppressed = %v, want %v", got.Suppressed, tt.want)
			}
			if tt.want && !got.NextEligible.Equal(tt.wantNext) {
				t.Fatalf("NextEligible = %v, want %v", got.NextEligible, tt.wantNext)
			}
		})
	}
}

func TestIsSuppressed_WindowProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	randTOD := func() entity.TimeOfDay {
		return entity.TimeOfDay{Hour: rng.IntN(24), Minute: rng.IntN(60), Second: rng.IntN(60)}
	}

	for range 5000 {
		start, end, now := randTOD(), randTOD(), randTOD()
		pref := entity.DefaultUserPreference(1)
		pref.QuietHoursStart, pref.QuietHoursEnd = &start, &end

		got := IsSuppressed(pref, now.On(at(4, "00:00"))).Suppressed

		var want bool
		if start.Seconds() <= end.Seconds() {
			want = start.Seconds() <= now.Seconds() && now.Seconds() <= end.Seconds()
		} else {
			want = now.Seconds() >= start.Seconds() || now.Seconds() <= end.Seconds()
		}
		if got != want {
			t.Fatalf("start=%s end=%s now=%s: got %v want %v", start, end, now, got, want)
		}
	}
}

func TestIsSuppressed_NextEligibleAfterNow(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for range 2000 {
		start := entity.TimeOfDay{Hour: rng.IntN(24), Minute: rng.IntN(60)}
		end := entity.TimeOfDay{Hour: rng.IntN(24), Minute: rng.IntN(60)}
		pref := entity.DefaultUserPreference(1)
		pref.QuietHoursStart, pref.QuietHoursEnd = &start, &end
		now := at(4, "00:00").Add(time.Duration(rng.IntN(86400)) * time.Second)

		if v := IsSuppressed(pref, now); v.Suppressed && !v.NextEligible.After(now) {
			t.Fatalf("start=%s end=%s now=%v: next eligible %v not after now", start, end, now, v.NextEligible)
		}
	}
}

func TestIsSuppressed_Weekend(t *testing.T) {
	pref := entity.DefaultUserPreference(1)
	pref.WeekendAllowed = false
	saturday := at(7, "10:00")

	got := IsSuppressed(pref, saturday)
	if !got.Suppressed || !got.NextEligible.Equal(at(9, "08:00")) {
		t.Fatalf("expected Monday 08:00, got %+v", got)
	}

	pref.WeekdayWindowStart = nil
	got = IsSuppressed(pref, saturday)
	if !got.Suppressed || !got.NextEligible.Equal(at(9, "00:00")) {
		t.Fatalf("expected Monday midnight, got %+v", got)
	}

	if IsSuppressed(pref, at(6, "10:00")).Suppressed {
		t.Fatalf("Friday must not be suppressed")
	}

	pref.WeekendAllowed = true
	if IsSuppressed(pref, saturday).Suppressed {
		t.Fatalf("weekend allowed must not suppress")
	}
}

func TestIsSuppressed_UserTimezone(t *testing.T) {
	// Arrange
	pref := quietPref("22:00", "08:00")
	pref.Timezone = "Asia/Jakarta"
	now := at(2, "16:30") // 23:30 in Jakarta

	// Act
	got := IsSuppressed(pref, now)

	// Assert
	if !got.Suppressed {
		t.Fatalf("expected suppression in the user's evening")
	}
	if want := at(3, "01:00"); !got.NextEligible.Equal(want) {
		t.Fatalf("NextEligible = %v, want %v", got.NextEligible.UTC(), want)
	}
}

func TestIsSuppressed_NoQuietHours(t *testing.T) {
	if IsSuppressed(entity.DefaultUserPreference(1), at(2, "23:30")).Suppressed {
		t.Fatalf("defaults have no quiet hours")
	}
}
