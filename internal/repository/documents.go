package repository

import (
	"sort"
	"strconv"
	"time"

	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/model"
)

// Store layout:
//
//	admins/{identityId}
//	sessions/{sessionId}
//	sessions/{sessionId}/teams/{teamName}/slotCount
//	sessions/{sessionId}/teams/{teamName}/slots/{slotIndex}
const (
	adminsRoot   = "admins"
	sessionsRoot = "sessions"
)

func sessionPath(id string) string { return docstore.Join(sessionsRoot, id) }

func teamPath(sessionID, team string) string {
	return docstore.Join(sessionsRoot, sessionID, "teams", team)
}

func slotPath(sessionID, team string, index int) string {
	return docstore.Join(teamPath(sessionID, team), "slots", strconv.Itoa(index))
}

// sessionDoc mirrors a session as persisted. Timestamps are RFC 3339 strings.
type sessionDoc struct {
	Event     string             `json:"event"`
	Date      string             `json:"date"`
	Time      string             `json:"time"`
	Status    string             `json:"status"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt,omitempty"`
	Teams     map[string]teamDoc `json:"teams,omitempty"`
}

type teamDoc struct {
	SlotCount int                `json:"slotCount"`
	Slots     map[string]slotDoc `json:"slots,omitempty"`
}

type slotDoc struct {
	Reserved   bool   `json:"reserved"`
	UserID     string `json:"userId,omitempty"`
	UserName   string `json:"userName,omitempty"`
	ReservedAt string `json:"reservedAt,omitempty"`
}

// emptySlots builds n unreserved slots. A slice is stored as a map keyed
// "0".."n-1".
func emptySlots(n int) []slotDoc {
	slots := make([]slotDoc, n)
	for i := range slots {
		slots[i] = slotDoc{Reserved: false}
	}
	return slots
}

func (d sessionDoc) toModel(id string) model.Session {
	s := model.Session{
		ID:     id,
		Event:  d.Event,
		Date:   d.Date,
		Time:   d.Time,
		Status: model.Status(d.Status),
		Teams:  make(map[string]model.Team, len(d.Teams)),
	}
	if s.Status == "" {
		s.Status = model.StatusActive
	}
	if t, ok := parseTime(d.CreatedAt); ok {
		s.CreatedAt = t
	}
	if t, ok := parseTime(d.UpdatedAt); ok {
		s.UpdatedAt = &t
	}
	for name, td := range d.Teams {
		s.Teams[name] = td.toModel(name)
	}
	return s
}

func (d teamDoc) toModel(name string) model.Team {
	return model.Team{Name: name, SlotCount: d.SlotCount, Slots: sortedSlots(d.Slots)}
}

func (d slotDoc) toModel(index int) model.Slot {
	s := model.Slot{Index: index, Reserved: d.Reserved}
	if !d.Reserved {
		return s
	}
	s.UserID = d.UserID
	s.UserName = d.UserName
	if t, ok := parseTime(d.ReservedAt); ok {
		s.ReservedAt = &t
	}
	return s
}

// sortedSlots orders slots by their numeric index. Keys are strings in the
// store, so "10" must not sort before "2". Non-numeric keys are ignored.
func sortedSlots(docs map[string]slotDoc) []model.Slot {
	slots := make([]model.Slot, 0, len(docs))
	for key, d := range docs {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			continue
		}
		slots = append(slots, d.toModel(idx))
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// validKey reports whether s can address a single node.
func validKey(s string) bool { return docstore.ValidateSegment(s) == nil }
