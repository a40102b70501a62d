package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-assistant/pkg/contextkeys"
)

func newRequestCtx(userID int) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), contextkeys.UserIDKey, userID))
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestActorFromCtx(t *testing.T) {
	actor := actorFromCtx(newRequestCtx(42))
	require.NotNil(t, actor)
	assert.Equal(t, uint64(42), *actor)
}

func TestActorFromCtxWithoutUser(t *testing.T) {
	assert.Nil(t, actorFromCtx(newRequestCtx(0)))
}
