package handler

import (
	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/repository"
)

// ConsoleDefaults are applied when the dashboard omits team configuration.
type ConsoleDefaults struct {
	Teams    []string
	Slots    int
	MaxSlots int
}

// ConsoleHandler serves the session and slot endpoints of the admin
// dashboard. Every route behind it already passed the admin check.
type ConsoleHandler struct {
	Sessions *repository.SessionRepo
	Slots    *repository.SlotRepo
	Events   events.Publisher
	Defaults ConsoleDefaults
}

func NewConsoleHandler(sessions *repository.SessionRepo, slots *repository.SlotRepo, pub events.Publisher, d ConsoleDefaults) *ConsoleHandler {
	return &ConsoleHandler{Sessions: sessions, Slots: slots, Events: pub, Defaults: d}
}
