package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/model"
)

type initSlotsReq struct {
	SlotCount int `json:"slot_count"`
}

type reserveReq struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// teamParam returns the :team path value decoded, since names may contain
// spaces.
func teamParam(c echo.Context) string {
	raw := c.Param("team")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// ListSlots returns the team's slots ordered by index.
func (h *ConsoleHandler) ListSlots(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	slots, err := h.Slots.ListSlots(ctx, c.Param("id"), teamParam(c))
	if err != nil {
		return writeError(c, "list slots", err)
	}
	return c.JSON(http.StatusOK, slots)
}

// InitializeSlots resets the team to slot_count empty slots. Zero or a
// missing slot_count means the default.
func (h *ConsoleHandler) InitializeSlots(c echo.Context) error {
	var req initSlotsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.SlotCount == 0 {
		req.SlotCount = h.Defaults.Slots
	}
	if req.SlotCount > h.Defaults.MaxSlots {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed",
			"fields": map[string]string{"slot_count": "at most " + strconv.Itoa(h.Defaults.MaxSlots)}})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, team := c.Param("id"), teamParam(c)
	if err := h.Slots.InitializeTeamSlots(ctx, id, team, req.SlotCount); err != nil {
		return writeError(c, "initialize slots", err)
	}
	slots, err := h.Slots.ListSlots(ctx, id, team)
	if err != nil {
		return writeError(c, "list slots", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.TeamSlotsInitialized, SessionID: id, Team: team, SlotCount: req.SlotCount})
	return c.JSON(http.StatusOK, slots)
}

// ReserveSlot puts a player into a slot, replacing any occupant.
func (h *ConsoleHandler) ReserveSlot(c echo.Context) error {
	index, ok := slotIndex(c)
	if !ok {
		return badRequest(c, "invalid slot index")
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p := model.Player{UserID: strings.TrimSpace(req.UserID), UserName: strings.TrimSpace(req.UserName)}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, team := c.Param("id"), teamParam(c)
	if err := h.Slots.ReserveSlot(ctx, id, team, index, p); err != nil {
		return writeError(c, "reserve slot", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.SlotReserved, SessionID: id, Team: team,
		SlotIndex: &index, UserID: p.UserID, UserName: p.UserName})
	return h.respondSlot(c, id, team, index)
}

// ReleaseSlot empties a slot.
func (h *ConsoleHandler) ReleaseSlot(c echo.Context) error {
	index, ok := slotIndex(c)
	if !ok {
		return badRequest(c, "invalid slot index")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, team := c.Param("id"), teamParam(c)
	if err := h.Slots.ReleaseSlot(ctx, id, team, index); err != nil {
		return writeError(c, "release slot", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.SlotReleased, SessionID: id, Team: team, SlotIndex: &index})
	return h.respondSlot(c, id, team, index)
}

func (h *ConsoleHandler) respondSlot(c echo.Context, id, team string, index int) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	slots, err := h.Slots.ListSlots(ctx, id, team)
	if err != nil {
		return writeError(c, "list slots", err)
	}
	for _, s := range slots {
		if s.Index == index {
			return c.JSON(http.StatusOK, s)
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
}

func slotIndex(c echo.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("index"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
