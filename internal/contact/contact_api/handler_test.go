package contact_api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-events/internal/contact/db"
	contact "campus-events/internal/contact/service"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/logger"
	"campus-events/internal/notify/email"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewNopLogger()
	svc := contact.NewContactService(&db.DB{Bun: dbtest.NewDB(t)}, &email.ConsoleSender{Logger: log}, "team@campus.edu", log)
	h := NewHandler(svc, log)

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
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var resp utils.APIResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestContactForm(t *testing.T) {
	router := setupRouter(t)

	rec, resp := do(t, router, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ada", "email": "ada@campus.edu", "message": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message", resp.Field)

	rec, _ = do(t, router, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ada", "email": "not-an-email", "message": "A long enough message",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = do(t, router, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ada", "email": "ada@campus.edu", "message": "Can our club co-host an event?",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp.Data.(map[string]interface{})["id"].(string)

	rec, resp = do(t, router, http.MethodGet, "/api/admin/contact-messages?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	_, resp = do(t, router, http.MethodGet, "/api/admin/contact-messages/unread-count", nil)
	assert.Equal(t, float64(1), resp.Data.(map[string]interface{})["unread"])

	rec, resp = do(t, router, http.MethodPatch, "/api/admin/contact-messages/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["read"])

	_, resp = do(t, router, http.MethodGet, "/api/admin/contact-messages/unread-count", nil)
	assert.Equal(t, float64(0), resp.Data.(map[string]interface{})["unread"])

	rec, _ = do(t, router, http.MethodDelete, "/api/admin/contact-messages/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, router, http.MethodPatch, "/api/admin/contact-messages/"+id, map[string]bool{"read": false})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
