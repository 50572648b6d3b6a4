package lockout

import (
	"errors"
	"fmt"
)

var ErrTooManyAttempts = errors.New("too many failed attempts")

// LockedError reports an active lock and how long it has left, rounded up
// to whole minutes.
type LockedError struct {
	RemainingMinutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is locked for %d more minutes", e.RemainingMinutes)
}
