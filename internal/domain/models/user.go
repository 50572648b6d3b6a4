package models

import "github.com/google/uuid"

const RoleAdmin = "admin"

type User struct {
	ID       uuid.UUID
	Email    string
	PassHash []byte
	Role     string
}

// VerifiedIdentity is the subject and claims extracted from a successfully
// verified bearer token.
type VerifiedIdentity struct {
	SubjectID uuid.UUID
	Email     string
	Claims    map[string]any
}
