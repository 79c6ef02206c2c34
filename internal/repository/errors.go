// Package repository defines error types that are reused across multiple
// repositories. Sentinel values let handlers tell missing records apart
// from store failures; ValidationError reports input that was rejected
// before anything was written.
package repository

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrSessionNotFound is returned when sessions/{id} does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTeamNotFound is returned when the session exists but the team does not.
	ErrTeamNotFound = errors.New("team not found")
	// ErrSlotNotFound is returned when a slot index is outside the team's slots.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrAdminNotFound is returned when no admin record exists for an identity.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrUserNotFound is returned by the identity tables when no row matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenInvalid is returned for unknown, expired, used or revoked tokens.
	ErrTokenInvalid = errors.New("token invalid")
)

// ValidationError captures field level problems with caller input.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem with field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	v.Fields[field] = message
}

// HasErrors reports whether any field problem was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// orNil returns v when it holds problems and nil otherwise, so callers can
// write `return verr.orNil()` without returning a typed nil.
func (v *ValidationError) orNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
