package entity

import (
	"time"
	// IANA names must resolve in minimal container images.
	_ "time/tzdata"
)

// CategoryToggles holds per-category switches for one interruptive channel.
// Generic notifications have no toggle and follow the master switch.
type CategoryToggles struct {
	Assignment   bool
	Reminder     bool
	Announcement bool
	Security     bool
}

// For reports the toggle for cat. Categories without a toggle are allowed.
func (c CategoryToggles) For(cat Category) bool {
	switch cat {
	case CategoryAssignment:
		return c.Assignment
	case CategoryReminder:
		return c.Reminder
	case CategoryAnnouncement:
		return c.Announcement
	case CategorySecurity:
		return c.Security
	default:
		return true
	}
}

// UserPreference is one user's delivery settings. Users without a stored
// row get DefaultUserPreference.
type UserPreference struct {
	UserID int64

	InApp bool
	Email bool
	SMS   bool
	Push  bool

	EmailCategories CategoryToggles
	SMSCategories   CategoryToggles
	PushCategories  CategoryToggles

	SMSUrgentOnly bool

	// QuietHoursStart and QuietHoursEnd are both set or quiet hours are off.
	QuietHoursStart *TimeOfDay
	QuietHoursEnd   *TimeOfDay

	WeekendAllowed     bool
	WeekdayWindowStart *TimeOfDay
	WeekdayWindowEnd   *TimeOfDay

	// Timezone is an IANA name; empty means UTC.
	Timezone string

	UpdatedAt time.Time
}

// DefaultUserPreference is what a user without a stored row gets.
func DefaultUserPreference(userID int64) UserPreference {
	windowStart := TimeOfDay{Hour: 8}
	windowEnd := TimeOfDay{Hour: 18}

	return UserPreference{
		UserID:          userID,
		InApp:           true,
		Email:           true,
		SMS:             false,
		Push:            true,
		EmailCategories: CategoryToggles{Assignment: true, Reminder: true, Announcement: true, Security: true},
		SMSCategories:   CategoryToggles{Security: true},
		PushCategories:  CategoryToggles{Assignment: true, Reminder: true, Announcement: true},
		SMSUrgentOnly:   true,
		WeekendAllowed:  true,

		WeekdayWindowStart: &windowStart,
		WeekdayWindowEnd:   &windowEnd,
		Timezone:           "UTC",
	}
}

// Location resolves Timezone, falling back to UTC for empty or unknown names.
func (p UserPreference) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasQuietHours is true when both bounds are set.
func (p UserPreference) HasQuietHours() bool {
	return p.QuietHoursStart != nil && p.QuietHoursEnd != nil
}

// EmailEnabledFor is the master switch combined with the category toggle.
func (p UserPreference) EmailEnabledFor(cat Category) bool {
	return p.Email && p.EmailCategories.For(cat)
}

func (p UserPreference) PushEnabledFor(cat Category) bool {
	return p.Push && p.PushCategories.For(cat)
}

func (p UserPreference) SMSEnabledFor(cat Category) bool {
	return p.SMS && p.SMSCategories.For(cat)
}

// CategoryTogglesPatch is a partial CategoryToggles.
type CategoryTogglesPatch struct {
	Assignment   *bool
	Reminder     *bool
	Announcement *bool
	Security     *bool
}

func (c CategoryTogglesPatch) apply(dst *CategoryToggles) {
	setIf(&dst.Assignment, c.Assignment)
	setIf(&dst.Reminder, c.Reminder)
	setIf(&dst.Announcement, c.Announcement)
	setIf(&dst.Security, c.Security)
}

// PreferencePatch is a partial update. Nil fields are left unchanged.
// ClearQuietHours removes both quiet-hour bounds and wins over the bound fields.
type PreferencePatch struct {
	InApp *bool
	Email *bool
	SMS   *bool
	Push  *bool

	EmailCategories CategoryTogglesPatch
	SMSCategories   CategoryTogglesPatch
	PushCategories  CategoryTogglesPatch

	SMSUrgentOnly *bool

	QuietHoursStart *TimeOfDay
	QuietHoursEnd   *TimeOfDay
	ClearQuietHours bool

	WeekendAllowed     *bool
	WeekdayWindowStart *TimeOfDay
	WeekdayWindowEnd   *TimeOfDay

	Timezone *string
}

// Apply returns p with the patch merged in.
func (pp PreferencePatch) Apply(p UserPreference) UserPreference {
	setIf(&p.InApp, pp.InApp)
	setIf(&p.Email, pp.Email)
	setIf(&p.SMS, pp.SMS)
	setIf(&p.Push, pp.Push)
	pp.EmailCategories.apply(&p.EmailCategories)
	pp.SMSCategories.apply(&p.SMSCategories)
	pp.PushCategories.apply(&p.PushCategories)
	setIf(&p.SMSUrgentOnly, pp.SMSUrgentOnly)
	setIf(&p.WeekendAllowed, pp.WeekendAllowed)
	setIf(&p.Timezone, pp.Timezone)

	if pp.ClearQuietHours {
		p.QuietHoursStart, p.QuietHoursEnd = nil, nil
	} else {
		p.QuietHoursStart = pick(p.QuietHoursStart, pp.QuietHoursStart)
		p.QuietHoursEnd = pick(p.QuietHoursEnd, pp.QuietHoursEnd)
	}
	p.WeekdayWindowStart = pick(p.WeekdayWindowStart, pp.WeekdayWindowStart)
	p.WeekdayWindowEnd = pick(p.WeekdayWindowEnd, pp.WeekdayWindowEnd)

	return p
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func pick(cur, next *TimeOfDay) *TimeOfDay {
	if next == nil {
		return cur
	}
	v := *next
	return &v
}
