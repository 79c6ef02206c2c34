package model

import "time"

// RoleAdmin is the only role an AdminRecord carries.
const RoleAdmin = "admin"

// AdminRecord grants administrator privilege to an identity. Its existence
// under admins/{IdentityID} is the whole authorization predicate.
type AdminRecord struct {
	IdentityID string    `json:"-"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	Role       string    `json:"role"`
}

// Identity is an authenticated user as reported by the identity gateway.
// A nil *Identity means nobody is signed in.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
