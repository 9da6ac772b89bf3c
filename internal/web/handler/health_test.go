package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/realmgate/internal/testutil"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveHealth(t *testing.T, checks map[string]Pinger) (int, healthResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	NewHealthHandler(checks, testutil.NopLogger()).Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	return rr.Code, body
}

func TestHealthNoChecks(t *testing.T) {
	status, body := serveHealth(t, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Nil(t, body.Checks)
}

func TestHealthAllReachable(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })

	status, body := serveHealth(t, map[string]Pinger{"redis": ok, "postgres": ok})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"redis": "ok", "postgres": "ok"}, body.Checks)
}

func TestHealthDegraded(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	status, body := serveHealth(t, map[string]Pinger{"redis": ok, "postgres": down})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unavailable", body.Checks["postgres"])
	assert.Equal(t, "ok", body.Checks["redis"])
}

func TestHealthChecksHaveDeadline(t *testing.T) {
	var hasDeadline bool
	probe := pingFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	serveHealth(t, map[string]Pinger{"probe": probe})
	assert.True(t, hasDeadline)
}
