package model

import "time"

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Valid reports whether s is one of the two known states.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusClosed
}

// Session represents one scheduled event and its teams.
//
// Fields:
//  ID        – store-generated key, assigned once at creation.
//  Event     – free-text event name.
//  Date      – calendar date as entered by the admin.
//  Time      – time of day as entered by the admin.
//  Status    – active or closed.
//  CreatedAt – set once when the session is created.
//  UpdatedAt – set on every registry mutation; nil until the first one.
//  Teams     – team name to team.
type Session struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
	Teams     map[string]Team `json:"teams"`
}

// SessionDraft is the input to session creation. Teams maps each team name
// to its slot capacity.
type SessionDraft struct {
	Event string
	Date  string
	Time  string
	Teams map[string]int
}

// SessionUpdate carries the editable fields of a session. Nil fields are
// left untouched.
type SessionUpdate struct {
	Event *string
	Date  *string
	Time  *string
}

// Empty reports whether the update changes no field.
func (u SessionUpdate) Empty() bool {
	return u.Event == nil && u.Date == nil && u.Time == nil
}
