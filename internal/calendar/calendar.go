package calendar

import "time"

// HolidaySet is an immutable snapshot of non-working dates, keyed by the
// date-only form of the day. Callers must not mutate a set after handing
// it to a Calendar.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from a list of dates. Time-of-day and zone
// are dropped.
func NewHolidaySet(days ...time.Time) HolidaySet {
	s := make(HolidaySet, len(days))
	for _, d := range days {
		s[dayKey(d)] = struct{}{}
	}
	return s
}

func (s HolidaySet) Contains(d time.Time) bool {
	_, ok := s[dayKey(d)]
	return ok
}

func dayKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// Snapshotter supplies the current holiday set. The production
// implementation is *Directory; tests pass a fixed set.
type Snapshotter interface {
	Holidays() HolidaySet
}

// FixedHolidays is a Snapshotter over a constant set.
type FixedHolidays HolidaySet

func (f FixedHolidays) Holidays() HolidaySet { return HolidaySet(f) }

// Calendar answers working-day questions against weekends plus whatever
// holiday snapshot its source currently serves. All methods are date-only:
// inputs are normalized to midnight UTC before any comparison so
// time-of-day and zone never shift a deadline.
type Calendar struct {
	holidays Snapshotter
}

func New(holidays Snapshotter) *Calendar {
	return &Calendar{holidays: holidays}
}

// DateOf strips the time-of-day component, normalizing to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWorkingDay reports whether d is neither a weekend day nor a listed
// holiday.
func (c *Calendar) IsWorkingDay(d time.Time) bool {
	d = DateOf(d)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.holidays.Holidays().Contains(d)
}

// AddWorkingDays advances base by n working days. n == 0 returns base
// unchanged (same-day milestones). For n > 0 the walk counts only working
// days, and if the landing day itself is non-working it keeps advancing,
// so the result is always a working day.
func (c *Calendar) AddWorkingDays(base time.Time, n int) time.Time {
	base = DateOf(base)
	if n <= 0 {
		return base
	}
	d := base
	counted := 0
	for counted < n {
		d = d.AddDate(0, 0, 1)
		if c.IsWorkingDay(d) {
			counted++
		}
	}
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextWorkingDay returns the first working day strictly after d. Used for
// "day after publication" rules.
func (c *Calendar) NextWorkingDay(d time.Time) time.Time {
	d = DateOf(d).AddDate(0, 0, 1)
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// WorkingDaysBetween counts working days in (from, to]. Returns 0 when to
// is on or before from. This is the distance the alert classifier uses so
// a weekend between now and a due date does not shrink the warning window.
func (c *Calendar) WorkingDaysBetween(from, to time.Time) int {
	from = DateOf(from)
	to = DateOf(to)
	if !to.After(from) {
		return 0
	}
	n := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			n++
		}
	}
	return n
}
