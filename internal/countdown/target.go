package countdown

import (
	"fmt"
	"time"

	"github.com/tomz197/launchpad/internal/config"
)

// NextTarget returns the next launch instant for now: the configured launch
// day of now's month at 00:00:00 in now's location, or the same day of the
// following month once that instant has passed.
func NextTarget(now time.Time) time.Time {
	return TargetOn(now, config.LaunchDay)
}

// TargetOn is NextTarget for an arbitrary day of month. Days past the end of
// a month normalize the way time.Date does, so callers should keep day
// within 1..28.
func TargetOn(now time.Time, day int) time.Time {
	y, m, _ := now.Date()
	target := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	if now.After(target) {
		target = time.Date(y, m+1, day, 0, 0, 0, 0, now.Location())
	}
	return target
}

// Remaining is a non-negative duration broken into calendar-free units.
type Remaining struct {
	Days    int
	Hours   int // [0, 24)
	Minutes int // [0, 60)
	Seconds int // [0, 60)
}

// Breakdown splits d into days, hours, minutes and seconds, truncating to
// whole seconds. Negative durations read as zero.
func Breakdown(d time.Duration) Remaining {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return Remaining{
		Days:    int(ms / 86_400_000),
		Hours:   int(ms/3_600_000) % 24,
		Minutes: int(ms/60_000) % 60,
		Seconds: int(ms/1_000) % 60,
	}
}

// IsZero reports whether nothing remains.
func (r Remaining) IsZero() bool {
	return r == Remaining{}
}

// String formats the remaining time as "3d 04h 05m 06s".
func (r Remaining) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", r.Days, r.Hours, r.Minutes, r.Seconds)
}
