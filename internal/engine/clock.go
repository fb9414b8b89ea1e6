// Package engine implements the pure XP/award state-transition core.
//
// Every operation is a deterministic transformation over *models.AppState with
// copy-on-write semantics: the identical input pointer is returned when nothing
// happened, and a fresh snapshot sharing unmodified parts otherwise. Callers
// rely on pointer identity to detect "nothing to do". Expected domain
// conditions (unknown student, inactive quest, already awarded) are silent
// no-ops, never errors.
package engine

import "time"

// Clock abstracts wall-clock time so the engine stays deterministic in tests.
// It is the only place time enters the core.
type Clock interface {
	Now() time.Time
	// Today returns the local calendar day as "YYYY-MM-DD". It is the unit of
	// "day" for daily-quest gating and streak continuity.
	Today() string
}

// DayKey formats a time as the zero-padded "YYYY-MM-DD" key used for
// daily-quest and streak bookkeeping.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Today returns today's day key in local time.
func (SystemClock) Today() string { return DayKey(time.Now()) }

// FixedClock is a Clock pinned to a single instant, for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time { return c.T }

// Today returns the day key of the pinned instant.
func (c FixedClock) Today() string { return DayKey(c.T) }
