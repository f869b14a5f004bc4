package checkin_api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campus-events/internal/auth"
	checkin "campus-events/internal/checkin/service"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/qr"
	"campus-events/internal/registrations/db"
	"campus-events/internal/sse"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (http.Handler, *sse.CheckinEventEmitter) {
	t.Helper()
	bunDB := dbtest.NewDB(t)
	ctx := context.Background()
	start := time.Now().UTC()

	_, err := bunDB.NewInsert().Model(&models.Event{
		ID: "evt-1", Title: "Hack Night", StartsAt: start, EndsAt: start.Add(time.Hour), RegistrationOpen: true,
	}).Exec(ctx)
	require.NoError(t, err)
	_, err = bunDB.NewInsert().Model(&models.Registration{
		ID: "reg-1", EventID: "evt-1", UserID: "user-1", Name: "Ada", TicketCode: "CE-7KQ4-M2XP",
		Status: models.RegistrationStatusRegistered, CreatedAt: start,
	}).Exec(ctx)
	require.NoError(t, err)

	log := logger.NewNopLogger()
	emitter := sse.NewCheckinEventEmitter()
	// no Redis lock in handler tests; the service skips locking when Lock is nil
	svc := checkin.NewCheckinService(&db.DB{Bun: bunDB}, qr.NewQRGenerator("secret", 64), nil,
		kafka.NoopPublisher{}, "campus.checkin.completed", emitter, log)
	h := NewHandler(svc, emitter, log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), &models.Claims{Subject: "scanner-1"})))
		})
	})
	r.Route("/api", h.RegisterRoutes)
	return r, emitter
}

func postCheckin(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/checkin", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestCheckIn_AlreadyCheckedInState(t *testing.T) {
	router, _ := setupRouter(t)

	rec, resp := postCheckin(t, router, `{"code":"CE-7KQ4-M2XP","event_id":"evt-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Checked in", resp.Message)
	assert.Equal(t, false, resp.Data.(map[string]interface{})["already_checked_in"])

	rec, resp = postCheckin(t, router, `{"code":"reg-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Already checked in", resp.Message)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["already_checked_in"])
}

func TestCheckIn_Errors(t *testing.T) {
	router, _ := setupRouter(t)

	rec, _ := postCheckin(t, router, `{"code":"does-not-exist"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp := postCheckin(t, router, `{"code":"CE-7KQ4-M2XP","event_id":"evt-other"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "event_id", resp.Field)

	rec, _ = postCheckin(t, router, `{"code":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamEventCheckins(t *testing.T) {
	router, emitter := setupRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/checkin/events/evt-1/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return emitter.GetEventClientCount("evt-1") == 1 }, time.Second, 10*time.Millisecond)
	emitter.EmitCheckin(models.CheckinEvent{EventID: "evt-1", RegistrationID: "reg-1", Name: "Ada"})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: checkin") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"registration_id":"reg-1"`)
}
