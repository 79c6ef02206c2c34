package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/auth"
	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/logging"
	"github.com/iliyamo/session-slot-console/internal/repository"
)

const (
	requestTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// writeError maps repository and store errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a 500 with a generic message.
func writeError(c echo.Context, op string, err error) error {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrTeamNotFound),
		errors.Is(err, repository.ErrSlotNotFound),
		errors.Is(err, repository.ErrAdminNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, docstore.ErrInvalidPath):
		return badRequest(c, "invalid identifier")
	}
	logging.Or(c.Request().Context(), nil).Error(op+" failed", "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": op + " failed"})
}

// emit publishes ev on behalf of the signed-in admin. Failures are logged
// and never reach the client.
func emit(c echo.Context, pub events.Publisher, ev events.ActivityEvent) {
	if pub == nil {
		return
	}
	ctx := c.Request().Context()
	if ident := auth.CurrentIdentity(ctx); ident != nil && ev.ActorID == "" {
		ev.ActorID = ident.ID
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.PublishActivity(pctx, ev); err != nil {
		logging.Or(ctx, nil).Warn("publish activity failed", "kind", ev.Kind, "error", err)
	}
}
