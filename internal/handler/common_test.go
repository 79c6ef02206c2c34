package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/session-slot-console/internal/auth"
	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/model"
	"github.com/iliyamo/session-slot-console/internal/repository"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&repository.ValidationError{Fields: map[string]string{"team": "invalid"}}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", repository.ErrSessionNotFound), http.StatusNotFound},
		{repository.ErrTeamNotFound, http.StatusNotFound},
		{repository.ErrSlotNotFound, http.StatusNotFound},
		{docstore.ErrInvalidPath, http.StatusBadRequest},
		{errors.New("redis down"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		_ = writeError(c, "op", tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishActivity(context.Context, events.ActivityEvent) error {
	p.calls++
	return errors.New("broker down")
}

func (p *failingPublisher) PublishPasswordReset(context.Context, events.PasswordResetEvent) error {
	return errors.New("broker down")
}

func TestEmitIsBestEffort(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), &model.Identity{ID: "admin-1"}))
	c := e.NewContext(req, httptest.NewRecorder())

	pub := &failingPublisher{}
	assert.NotPanics(t, func() { emit(c, pub, events.ActivityEvent{Kind: events.SessionCreated}) })
	assert.Equal(t, 1, pub.calls)
	assert.NotPanics(t, func() { emit(c, nil, events.ActivityEvent{Kind: events.SessionCreated}) })
}
