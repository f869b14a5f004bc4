package event_api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-events/internal/database/dbtest"
	"campus-events/internal/events/db"
	events "campus-events/internal/events/service"
	"campus-events/internal/logger"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewNopLogger()
	h := NewHandler(events.NewEventService(&db.DB{Bun: dbtest.NewDB(t)}, log), log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		r.Route("/admin", h.RegisterAdminRoutes)
	})
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp utils.APIResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestEventLifecycle(t *testing.T) {
	router := setupRouter(t)
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	rec, resp := do(t, router, http.MethodPost, "/api/admin/events", map[string]interface{}{
		"title":     "Open Mic",
		"starts_at": start,
		"ends_at":   start.Add(3 * time.Hour),
		"capacity":  80,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)
	eventID := resp.Data.(map[string]interface{})["id"].(string)

	rec, resp = do(t, router, http.MethodGet, "/api/events?upcoming=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, resp = do(t, router, http.MethodPut, "/api/admin/events/"+eventID, map[string]interface{}{
		"title":     "Open Mic Finals",
		"starts_at": start,
		"ends_at":   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Open Mic Finals", resp.Data.(map[string]interface{})["title"])

	rec, _ = do(t, router, http.MethodDelete, "/api/admin/events/"+eventID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, resp = do(t, router, http.MethodGet, "/api/events/"+eventID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestCreateEvent_Invalid(t *testing.T) {
	router := setupRouter(t)
	start := time.Now().UTC()

	rec, resp := do(t, router, http.MethodPost, "/api/admin/events", map[string]interface{}{
		"title":     "Backwards",
		"starts_at": start,
		"ends_at":   start.Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ends_at", resp.Field)

	rec, _ = do(t, router, http.MethodPost, "/api/admin/events", map[string]interface{}{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/events?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
