package models

import "time"

// LockoutRecord tracks failed login attempts for a single identity.
// LockedUntil is the zero value until the attempt threshold is crossed.
type LockoutRecord struct {
	Attempts    int
	LastAttempt time.Time
	LockedUntil time.Time
}

// Locked reports whether the record still holds an active lock at the given
// instant. The boundary is exclusive: a record whose LockedUntil equals now
// is already unlocked.
func (r LockoutRecord) Locked(now time.Time) bool {
	return now.Before(r.LockedUntil)
}
