package handler

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/model"
)

type createSessionReq struct {
	Event string         `json:"event"`
	Date  string         `json:"date"`
	Time  string         `json:"time"`
	Teams map[string]int `json:"teams"`
}

type updateSessionReq struct {
	Event *string `json:"event"`
	Date  *string `json:"date"`
	Time  *string `json:"time"`
}

// ListSessions returns all sessions ordered by id, oldest first.
func (h *ConsoleHandler) ListSessions(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	all, err := h.Sessions.List(ctx)
	if err != nil {
		return writeError(c, "list sessions", err)
	}
	out := make([]model.Session, 0, len(all))
	for _, s := range all {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, out)
}

// CreateSession creates a session. Without a teams object every default
// team gets the default slot count.
func (h *ConsoleHandler) CreateSession(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Event = strings.TrimSpace(req.Event)
	fields := map[string]string{}
	if req.Event == "" {
		fields["event"] = "required"
	}
	if strings.TrimSpace(req.Date) == "" {
		fields["date"] = "required"
	}
	if strings.TrimSpace(req.Time) == "" {
		fields["time"] = "required"
	}
	if req.Teams == nil {
		req.Teams = make(map[string]int, len(h.Defaults.Teams))
		for _, name := range h.Defaults.Teams {
			req.Teams[name] = h.Defaults.Slots
		}
	}
	for name, n := range req.Teams {
		if n > h.Defaults.MaxSlots {
			fields["teams."+name] = "at most " + strconv.Itoa(h.Defaults.MaxSlots) + " slots"
		}
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Sessions.Create(ctx, model.SessionDraft{
		Event: req.Event, Date: req.Date, Time: req.Time, Teams: req.Teams,
	})
	if err != nil {
		return writeError(c, "create session", err)
	}
	s, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return writeError(c, "load session", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.SessionCreated, SessionID: id})
	return c.JSON(http.StatusCreated, s)
}

// GetSession returns one session with its teams and slots.
func (h *ConsoleHandler) GetSession(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, "get session", err)
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateSession edits event, date and time.
func (h *ConsoleHandler) UpdateSession(c echo.Context) error {
	var req updateSessionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	u := model.SessionUpdate{Event: req.Event, Date: req.Date, Time: req.Time}
	if u.Empty() {
		return badRequest(c, "nothing to update")
	}
	if u.Event != nil && strings.TrimSpace(*u.Event) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{"event": "must not be empty"}})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Sessions.Update(ctx, id, u); err != nil {
		return writeError(c, "update session", err)
	}
	s, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return writeError(c, "load session", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.SessionUpdated, SessionID: id})
	return c.JSON(http.StatusOK, s)
}

// CloseSession marks the session closed.
func (h *ConsoleHandler) CloseSession(c echo.Context) error {
	return h.setStatus(c, model.StatusClosed, events.SessionClosed)
}

// ReopenSession marks the session active again.
func (h *ConsoleHandler) ReopenSession(c echo.Context) error {
	return h.setStatus(c, model.StatusActive, events.SessionReopened)
}

func (h *ConsoleHandler) setStatus(c echo.Context, status model.Status, kind string) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Sessions.SetStatus(ctx, id, status); err != nil {
		return writeError(c, "set session status", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: kind, SessionID: id})
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// DeleteSession removes the session and everything under it.
func (h *ConsoleHandler) DeleteSession(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Sessions.Delete(ctx, id); err != nil {
		return writeError(c, "delete session", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.SessionDeleted, SessionID: id})
	return c.NoContent(http.StatusNoContent)
}
