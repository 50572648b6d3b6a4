package storage

import "errors"

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrLockoutNotFound = errors.New("lockout record not found")
	ErrEventNotFound   = errors.New("event not found")
)
