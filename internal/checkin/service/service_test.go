package checkin

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"campus-events/internal/apperror"
	checkinredis "campus-events/internal/checkin/redis"
	"campus-events/internal/database/dbtest"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/qr"
	"campus-events/internal/registrations/db"
	"campus-events/internal/sse"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, _, _ string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, value)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

type fixture struct {
	svc  *CheckinService
	pub  *recordingPublisher
	live *sse.CheckinEventEmitter
	qr   *qr.QRGenerator
	reg  *models.Registration
	now  time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	bunDB := dbtest.NewDB(t)
	ctx := context.Background()

	start := time.Date(2026, 4, 2, 17, 0, 0, 0, time.UTC)
	_, err := bunDB.NewInsert().Model(&[]models.Event{
		{ID: "evt-1", Title: "Hack Night", StartsAt: start, EndsAt: start.Add(3 * time.Hour), RegistrationOpen: true},
		{ID: "evt-2", Title: "Career Fair", StartsAt: start, EndsAt: start.Add(3 * time.Hour), RegistrationOpen: true},
	}).Exec(ctx)
	require.NoError(t, err)

	reg := &models.Registration{
		ID: "9b2e6f0a-1c1d-4a57-9a4e-3f1d2c0b7e11", EventID: "evt-1", UserID: "user-1",
		Name: "Ada", Email: "ada@campus.edu", TicketCode: "CE-7KQ4-M2XP",
		Status: models.RegistrationStatusRegistered, CreatedAt: start.Add(-time.Hour),
	}
	cancelled := &models.Registration{
		ID: "reg-cancelled", EventID: "evt-1", UserID: "user-2", TicketCode: "CE-2222-2222",
		Status: models.RegistrationStatusCancelled, CreatedAt: start.Add(-time.Hour),
	}
	_, err = bunDB.NewInsert().Model(reg).Exec(ctx)
	require.NoError(t, err)
	_, err = bunDB.NewInsert().Model(cancelled).Exec(ctx)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gen := qr.NewQRGenerator("scanner-secret", 64)
	pub := &recordingPublisher{}
	live := sse.NewCheckinEventEmitter()
	now := start.Add(5 * time.Minute)

	svc := NewCheckinService(&db.DB{Bun: bunDB}, gen, checkinredis.NewScanLock(client, time.Second),
		pub, "campus.checkin.completed", live, logger.NewNopLogger())
	svc.Now = func() time.Time { return now }
	svc.LockInterval = time.Millisecond

	return &fixture{svc: svc, pub: pub, live: live, qr: gen, reg: reg, now: now}
}

func TestResolve_FallbackOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	encoded, err := f.qr.Encode(f.reg)
	require.NoError(t, err)

	tests := []struct {
		name      string
		code      string
		matchedBy string
	}{
		{"encrypted qr", encoded, MatchedByQR},
		{"registration id", f.reg.ID, MatchedByID},
		{"ticket code", "CE-7KQ4-M2XP", MatchedByTicketCode},
		{"ticket code lower case and padded", "  ce-7kq4-m2xp\n", MatchedByTicketCode},
		{"composite colon", "evt-1:user-1", MatchedByComposite},
		{"composite pipe", "evt-1|user-1", MatchedByComposite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, matchedBy, err := f.svc.Resolve(ctx, tt.code)
			require.NoError(t, err)
			assert.Equal(t, f.reg.ID, reg.ID)
			assert.Equal(t, tt.matchedBy, matchedBy)
		})
	}
}

func TestResolve_Misses(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, err := f.svc.Resolve(ctx, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	for _, code := range []string{"nothing-here", "evt-1:nobody", "a:b:c", ":user-1"} {
		_, _, err := f.svc.Resolve(ctx, code)
		assert.ErrorIs(t, err, apperror.ErrNotFound, code)
	}

	forged, err := f.qr.Encode(&models.Registration{ID: f.reg.ID, EventID: "evt-1", TicketCode: "CE-FAKE-CODE"})
	require.NoError(t, err)
	_, _, err = f.svc.Resolve(ctx, forged)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "payload ticket code must match the row")
}

func TestCheckIn_ThenAlreadyCheckedIn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	live := f.live.SubscribeToEvent(ctx, "evt-1")

	first, err := f.svc.CheckIn(ctx, models.CheckinRequest{Code: f.reg.TicketCode, EventID: "evt-1"}, "scanner-1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyCheckedIn)
	assert.True(t, first.CheckedInAt.Equal(f.now))
	assert.Equal(t, "Ada", first.Name)

	select {
	case evt := <-live:
		assert.Equal(t, f.reg.ID, evt.RegistrationID)
		assert.Equal(t, "scanner-1", evt.ScannerID)
	case <-time.After(time.Second):
		t.Fatal("live stream did not receive the check-in")
	}
	require.Equal(t, 1, f.pub.count())
	var published models.CheckinEvent
	require.NoError(t, json.Unmarshal(f.pub.messages[0], &published))
	assert.Equal(t, "evt-1", published.EventID)

	// scanning the same ticket again reports the original time and changes nothing
	f.svc.Now = func() time.Time { return f.now.Add(10 * time.Minute) }
	second, err := f.svc.CheckIn(ctx, models.CheckinRequest{Code: "evt-1:user-1"}, "scanner-2")
	require.NoError(t, err)
	assert.True(t, second.AlreadyCheckedIn)
	assert.True(t, second.CheckedInAt.Equal(f.now), "original timestamp is kept")
	assert.Equal(t, 1, f.pub.count(), "repeat scans are not published")

	reg, err := f.svc.DB.GetRegistrationByID(ctx, f.reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "scanner-1", reg.CheckedInBy)
}

func TestCheckIn_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, models.CheckinRequest{Code: "CE-2222-2222"}, "scanner-1")
	assert.ErrorIs(t, err, apperror.ErrValidation, "cancelled registrations cannot check in")

	_, err = f.svc.CheckIn(ctx, models.CheckinRequest{Code: f.reg.TicketCode, EventID: "evt-2"}, "scanner-1")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "event_id", appErr.Field)

	_, err = f.svc.CheckIn(ctx, models.CheckinRequest{Code: ""}, "scanner-1")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CheckIn(ctx, models.CheckinRequest{Code: "unknown"}, "scanner-1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, f.pub.count())
}

func TestCheckIn_ConcurrentScansStampOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const scanners = 8
	results := make([]*models.CheckinResult, scanners)
	errs := make([]error, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.CheckIn(ctx, models.CheckinRequest{Code: f.reg.ID}, "scanner")
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < scanners; i++ {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], apperror.ErrConflict)
			continue
		}
		if !results[i].AlreadyCheckedIn {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh, "exactly one scan performs the check-in")
	assert.Equal(t, 1, f.pub.count())
}
