package poll_api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-events/internal/auth"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/polls/db"
	polls "campus-events/internal/polls/service"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get("X-Test-User"); user != "" {
			r = r.WithContext(auth.WithClaims(r.Context(), &models.Claims{Subject: user}))
		}
		next.ServeHTTP(w, r)
	})
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewNopLogger()
	h := NewHandler(polls.NewPollService(&db.DB{Bun: dbtest.NewDB(t)}, log), log)

	r := chi.NewRouter()
	r.Use(withUser)
	r.Route("/api", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		h.RegisterRoutes(r)
		r.Route("/admin", h.RegisterAdminRoutes)
	})
	return r
}

func do(t *testing.T, router http.Handler, method, path, user string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp utils.APIResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestPollVoting(t *testing.T) {
	router := setupRouter(t)

	rec, resp := do(t, router, http.MethodPost, "/api/admin/polls", "admin", map[string]interface{}{
		"question": "Best venue for the fest?",
		"options":  []string{"Main hall", "Open grounds"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	data := resp.Data.(map[string]interface{})
	pollID := data["id"].(string)
	optionID := data["options"].([]interface{})[0].(map[string]interface{})["id"].(string)

	rec, _ = do(t, router, http.MethodPost, "/api/polls/"+pollID+"/vote", "", map[string]string{"option_id": optionID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, resp = do(t, router, http.MethodPost, "/api/polls/"+pollID+"/vote", "s1", map[string]string{"option_id": optionID})
	require.Equal(t, http.StatusOK, rec.Code)
	first := resp.Data.(map[string]interface{})["options"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 1, first["votes"])

	rec, _ = do(t, router, http.MethodPost, "/api/polls/"+pollID+"/vote", "s1", map[string]string{"option_id": optionID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = do(t, router, http.MethodGet, "/api/polls/"+pollID+"/vote", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, optionID, resp.Data.(map[string]interface{})["option_id"])

	rec, _ = do(t, router, http.MethodGet, "/api/polls/"+pollID+"/vote", "s2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = do(t, router, http.MethodGet, "/api/polls", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, _ = do(t, router, http.MethodPatch, "/api/admin/polls/"+pollID, "admin", map[string]interface{}{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = do(t, router, http.MethodGet, "/api/polls", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)

	rec, _ = do(t, router, http.MethodDelete, "/api/admin/polls/"+pollID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
