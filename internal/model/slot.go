package model

import "time"

// DefaultSlotCount is the slot capacity used when a team is initialized
// without an explicit count.
const DefaultSlotCount = 9

// Team is one named squad within a session. Slots is ordered by index and
// has SlotCount entries right after initialization.
type Team struct {
	Name      string `json:"name"`
	SlotCount int    `json:"slotCount"`
	Slots     []Slot `json:"slots"`
}

// Slot is one reservable position within a team. When Reserved is false the
// player fields are always empty.
type Slot struct {
	Index      int        `json:"index"`
	Reserved   bool       `json:"reserved"`
	UserID     string     `json:"userId,omitempty"`
	UserName   string     `json:"userName,omitempty"`
	ReservedAt *time.Time `json:"reservedAt,omitempty"`
}

// Player identifies who occupies a slot.
type Player struct {
	UserID   string
	UserName string
}
