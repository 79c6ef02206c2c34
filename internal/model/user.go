package model

import "time"

// User mirrors a row of the `users` table. The ID doubles as the identity
// id used for admins/{identityId} in the document store.
//
// Fields:
//  ID           – UUID primary key.
//  Email        – unique, stored lower-cased.
//  PasswordHash – bcrypt hash.
//  IsActive     – inactive users cannot sign in or refresh.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
