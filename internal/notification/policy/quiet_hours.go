package policy

import (
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
)

// IsSuppressed reports whether interruptive channels are silenced for the
// user at now and, if so, when they become eligible again. Evaluation uses
// the user's timezone at second resolution; window bounds are inclusive.
func IsSuppressed(pref entity.UserPreference, now time.Time) entity.QuietVerdict {
	local := now.In(pref.Location())

	if !pref.WeekendAllowed && isWeekend(local) {
		return entity.QuietVerdict{Suppressed: true, NextEligible: nextWeekdayStart(pref, local)}
	}

	if !pref.HasQuietHours() {
		return entity.QuietVerdict{}
	}

	start, end := *pref.QuietHoursStart, *pref.QuietHoursEnd
	if !InWindow(start, end, entity.TimeOfDayOf(local)) {
		return entity.QuietVerdict{}
	}

	return entity.QuietVerdict{Suppressed: true, NextEligible: windowEnd(end, local)}
}

// InWindow handles both same-day (start <= end) and overnight (start > end) windows.
func InWindow(start, end, t entity.TimeOfDay) bool {
	s, e, x := start.Seconds(), end.Seconds(), t.Seconds()
	if s <= e {
		return s <= x && x <= e
	}
	return x >= s || x <= e
}

func windowEnd(end entity.TimeOfDay, local time.Time) time.Time {
	if entity.TimeOfDayOf(local) == end {
		// inclusive bound: the window closes once this second is over
		return local.Truncate(time.Second).Add(time.Second)
	}

	today := end.On(local)
	if today.After(local) {
		return today
	}
	return end.On(local.AddDate(0, 0, 1))
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func nextWeekdayStart(pref entity.UserPreference, local time.Time) time.Time {
	day := local.AddDate(0, 0, 1)
	for isWeekend(day) {
		day = day.AddDate(0, 0, 1)
	}

	if pref.WeekdayWindowStart != nil {
		return pref.WeekdayWindowStart.On(day)
	}
	return entity.TimeOfDay{}.On(day)
}
