package models

import "github.com/google/uuid"

type Event struct {
	ID      uuid.UUID
	Type    string
	Payload string
}

type LockoutEvent struct {
	Email    string `json:"email"`
	Attempts int    `json:"attempts"`
}
