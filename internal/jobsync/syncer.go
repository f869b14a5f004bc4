package jobsync

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"campus-events/internal/config"
	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type InternshipUpserter interface {
	UpsertInternships(ctx context.Context, internships []models.Internship) (int, error)
}

// SourceReport is the outcome of one source in a sync run.
type SourceReport struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Upserted int    `json:"upserted"`
	Error    string `json:"error,omitempty"`
}

type Report struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`
}

// Failed reports whether every source failed.
func (r Report) Failed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Error == "" {
			return false
		}
	}
	return true
}

type Syncer struct {
	Sources   []Source
	Store     InternshipUpserter
	Publisher kafka.Publisher
	Topic     string
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewSyncer(store InternshipUpserter, publisher kafka.Publisher, topic string, log *logger.Logger, sources ...Source) *Syncer {
	return &Syncer{
		Sources:   sources,
		Store:     store,
		Publisher: publisher,
		Topic:     topic,
		Logger:    log,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewFromConfig builds a syncer over both job boards.
func NewFromConfig(cfg config.SyncConfig, store InternshipUpserter, publisher kafka.Publisher, topic string, log *logger.Logger) *Syncer {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	return NewSyncer(store, publisher, topic, log,
		NewRemotiveSource(cfg.RemotiveURL, client),
		NewArbeitnowSource(cfg.ArbeitnowURL, client),
	)
}

// Run fetches every source concurrently and upserts what each returned.
// A failing source is recorded in its report entry and does not affect the others.
func (s *Syncer) Run(ctx context.Context) Report {
	report := Report{StartedAt: s.Now(), Sources: make([]SourceReport, len(s.Sources))}

	var g errgroup.Group
	for i, src := range s.Sources {
		g.Go(func() error {
			report.Sources[i] = s.runSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
	report.FinishedAt = s.Now()

	if s.Publisher != nil && s.Topic != "" {
		if err := kafka.PublishJSON(ctx, s.Publisher, s.Topic, report.StartedAt.Format(time.RFC3339), report); err != nil {
			s.Logger.Warn("SYNC", fmt.Sprintf("Failed to publish sync report: %v", err))
		}
	}
	return report
}

func (s *Syncer) runSource(ctx context.Context, src Source) SourceReport {
	result := SourceReport{Source: src.Name()}

	postings, err := src.Fetch(ctx)
	if err != nil {
		result.Error = err.Error()
		s.Logger.Error("SYNC", fmt.Sprintf("[%s] fetch failed: %v", src.Name(), err))
		return result
	}
	result.Fetched = len(postings)
	postings = dedupe(postings)

	now := s.Now()
	for i := range postings {
		postings[i].ID = uuid.New().String()
		postings[i].CreatedAt = now
		postings[i].UpdatedAt = now
	}

	n, err := s.Store.UpsertInternships(ctx, postings)
	if err != nil {
		result.Error = err.Error()
		s.Logger.Error("SYNC", fmt.Sprintf("[%s] upsert failed: %v", src.Name(), err))
		return result
	}
	result.Upserted = n
	s.Logger.LogSync(src.Name(), fmt.Sprintf("fetched %d, upserted %d", result.Fetched, n))
	return result
}

// dedupe keeps the first posting per (source, external id); a single upsert statement
// cannot touch the same conflict key twice.
func dedupe(postings []models.Internship) []models.Internship {
	seen := make(map[string]bool, len(postings))
	out := postings[:0]
	for _, p := range postings {
		key := p.Source + "\x00" + p.ExternalID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// Schedule runs the syncer every interval until ctx is done. A zero interval disables it.
func (s *Syncer) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.Logger.Info("SYNC", "Internship sync scheduler disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Logger.Info("SYNC", fmt.Sprintf("Internship sync every %s", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Run(ctx)
		}
	}
}
