// Package events defines the messages the console puts on the broker and the
// publisher/consumer pair that moves them.
package events

const (
	// ActivityQueue carries one ActivityEvent per successful console mutation.
	ActivityQueue      = "console.activity"
	// PasswordResetQueue carries PasswordResetEvent for an external mailer.
	PasswordResetQueue = "auth.password_reset"
)

// Activity kinds.
const (
	SessionCreated       = "session.created"
	SessionUpdated       = "session.updated"
	SessionClosed        = "session.closed"
	SessionReopened      = "session.reopened"
	SessionDeleted       = "session.deleted"
	TeamSlotsInitialized = "team.slots_initialized"
	SlotReserved         = "slot.reserved"
	SlotReleased         = "slot.released"
	AdminRegistered      = "admin.registered"
)

// ActivityEvent describes one admin action. Fields that do not apply to the
// Kind are left empty.
type ActivityEvent struct {
	Kind       string `json:"kind"`
	ActorID    string `json:"actor_id"`
	SessionID  string `json:"session_id,omitempty"`
	Team       string `json:"team,omitempty"`
	SlotIndex  *int   `json:"slot_index,omitempty"`
	SlotCount  int    `json:"slot_count,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// PasswordResetEvent hands a reset token to the mailer.
type PasswordResetEvent struct {
	IdentityID  string `json:"identity_id"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
