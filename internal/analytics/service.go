package analytics

import (
	"context"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Service computes the admin dashboard figures straight from the database
type Service struct {
	db  *bun.DB
	Now func() time.Time
}

// NewService creates a new analytics service
func NewService(db *bun.DB) *Service {
	return &Service{db: db, Now: func() time.Time { return time.Now().UTC() }}
}

// DashboardStats holds the counters shown on the admin dashboard
type DashboardStats struct {
	TotalEvents    int       `json:"total_events"`
	UpcomingEvents int       `json:"upcoming_events"`
	Registrations  int       `json:"registrations"`
	CheckIns       int       `json:"check_ins"`
	Projects       int       `json:"projects"`
	Internships    int       `json:"internships"`
	ActivePolls    int       `json:"active_polls"`
	UnreadMessages int       `json:"unread_messages"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// EventAttendance is the registration and check-in count for one event
type EventAttendance struct {
	EventID     string    `json:"event_id" bun:"event_id"`
	Title       string    `json:"title" bun:"title"`
	StartsAt    time.Time `json:"starts_at" bun:"starts_at"`
	Capacity    int       `json:"capacity" bun:"capacity"`
	Registered  int       `json:"registered" bun:"registered"`
	CheckedIn   int       `json:"checked_in" bun:"checked_in"`
	CheckinRate float64   `json:"checkin_rate" bun:"-"`
}

// DailyRegistrations counts new registrations for one day
type DailyRegistrations struct {
	Date          string `json:"date" bun:"reg_date"`
	Registrations int    `json:"registrations" bun:"registrations"`
}

// EventReport is the detailed attendance view for a single event
type EventReport struct {
	EventAttendance
	Daily []DailyRegistrations `json:"daily"`
}

// GetDashboardStats returns the headline counters
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.Now()
	stats := &DashboardStats{GeneratedAt: now}

	counts := []struct {
		dst   *int
		query *bun.SelectQuery
	}{
		{&stats.TotalEvents, s.db.NewSelect().Model((*models.Event)(nil))},
		{&stats.UpcomingEvents, s.db.NewSelect().Model((*models.Event)(nil)).Where("ends_at >= ?", now)},
		{&stats.Registrations, s.db.NewSelect().Model((*models.Registration)(nil)).
			Where("status = ?", models.RegistrationStatusRegistered)},
		{&stats.CheckIns, s.db.NewSelect().Model((*models.Registration)(nil)).Where("checked_in_at IS NOT NULL")},
		{&stats.Projects, s.db.NewSelect().Model((*models.Project)(nil))},
		{&stats.Internships, s.db.NewSelect().Model((*models.Internship)(nil))},
		{&stats.ActivePolls, s.db.NewSelect().Model((*models.Poll)(nil)).
			Where("active = ?", true).
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("closes_at IS NULL").WhereOr("closes_at > ?", now)
			})},
		{&stats.UnreadMessages, s.db.NewSelect().Model((*models.ContactMessage)(nil)).Where("read = ?", false)},
	}

	for _, c := range counts {
		n, err := c.query.Count(ctx)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}

const attendanceSQL = `
	SELECT
		e.id AS event_id,
		e.title,
		e.starts_at,
		e.capacity,
		COALESCE(SUM(CASE WHEN r.status = 'registered' THEN 1 ELSE 0 END), 0) AS registered,
		COALESCE(SUM(CASE WHEN r.checked_in_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS checked_in
	FROM events e
	LEFT JOIN event_registrations r ON r.event_id = e.id`

// GetAttendance returns attendance for every event, most recent first
func (s *Service) GetAttendance(ctx context.Context) ([]EventAttendance, error) {
	rows := []EventAttendance{}
	rawSQL := attendanceSQL + `
	GROUP BY e.id, e.title, e.starts_at, e.capacity
	ORDER BY e.starts_at DESC`

	if err := s.db.NewRaw(rawSQL).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CheckinRate = rate(rows[i].CheckedIn, rows[i].Registered)
	}
	return rows, nil
}

// GetBatchAttendance returns attendance for the given events only
func (s *Service) GetBatchAttendance(ctx context.Context, eventIDs []string) ([]EventAttendance, error) {
	rows := []EventAttendance{}
	if len(eventIDs) == 0 {
		return rows, nil
	}
	rawSQL := attendanceSQL + `
	WHERE e.id IN (?)
	GROUP BY e.id, e.title, e.starts_at, e.capacity
	ORDER BY e.starts_at DESC`

	if err := s.db.NewRaw(rawSQL, bun.In(eventIDs)).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CheckinRate = rate(rows[i].CheckedIn, rows[i].Registered)
	}
	return rows, nil
}

// GetEventReport returns attendance plus daily registration counts for one event
func (s *Service) GetEventReport(ctx context.Context, eventID string) (*EventReport, error) {
	rows, err := s.GetBatchAttendance(ctx, []string{eventID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("event", eventID)
	}

	daily := []DailyRegistrations{}
	bucket := dayBucket(s.db.Dialect().Name())
	rawSQL := `
		SELECT
			` + bucket + ` AS reg_date,
			COUNT(*) AS registrations
		FROM event_registrations
		WHERE event_id = ?
		GROUP BY ` + bucket + `
		ORDER BY reg_date ASC`
	if err := s.db.NewRaw(rawSQL, eventID).Scan(ctx, &daily); err != nil {
		return nil, err
	}

	return &EventReport{EventAttendance: rows[0], Daily: daily}, nil
}

// dayBucket yields the UTC calendar day of created_at. Postgres would otherwise use the
// session time zone; SQLite rows are already stored as UTC text.
func dayBucket(name dialect.Name) string {
	if name == dialect.PG {
		return "CAST(DATE(created_at AT TIME ZONE 'UTC') AS TEXT)"
	}
	return "CAST(DATE(created_at) AS TEXT)"
}

// rate returns the check-in percentage rounded to two decimals
func rate(checkedIn, registered int) float64 {
	if registered == 0 {
		return 0
	}
	return float64(int(float64(checkedIn)/float64(registered)*10000+0.5)) / 100
}
