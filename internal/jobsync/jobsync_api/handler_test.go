package jobsync_api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-events/internal/catalog/db"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/jobsync"
	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncInternships(t *testing.T) {
	board := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs":[{"id":7,"title":"QA Intern","company_name":"Acme"}]}`))
	}))
	defer board.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	log := logger.NewNopLogger()
	store := &db.DB{Bun: dbtest.NewDB(t)}

	cases := []struct {
		name   string
		source jobsync.Source
		status int
	}{
		{"healthy source", jobsync.NewRemotiveSource(board.URL, board.Client()), http.StatusOK},
		{"all sources down", jobsync.NewArbeitnowSource(down.URL, down.Client()), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(jobsync.NewSyncer(store, kafka.NoopPublisher{}, "t", log, tc.source), log)
			r := chi.NewRouter()
			r.Route("/api/admin", h.RegisterAdminRoutes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/internships/sync", nil))
			require.Equal(t, tc.status, rec.Code)

			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.status == http.StatusOK, resp.Success)
			assert.Len(t, resp.Data.(map[string]interface{})["sources"], 1)
		})
	}
}
