package jobsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campus-events/internal/models"
	"campus-events/internal/utils"
)

// Source fetches internship postings from one job board.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Internship, error)
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// RemotiveSource reads remote internships from the Remotive public API.
type RemotiveSource struct {
	BaseURL string
	Client  *http.Client
}

type remotiveResponse struct {
	Jobs []struct {
		ID              int64    `json:"id"`
		URL             string   `json:"url"`
		Title           string   `json:"title"`
		CompanyName     string   `json:"company_name"`
		Tags            []string `json:"tags"`
		Location        string   `json:"candidate_required_location"`
		PublicationDate string   `json:"publication_date"`
		Description     string   `json:"description"`
	} `json:"jobs"`
}

func NewRemotiveSource(baseURL string, client *http.Client) *RemotiveSource {
	return &RemotiveSource{BaseURL: baseURL, Client: client}
}

func (s *RemotiveSource) Name() string { return models.InternshipSourceRemotive }

func (s *RemotiveSource) Fetch(ctx context.Context) ([]models.Internship, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remotive url: %w", err)
	}
	q := u.Query()
	q.Set("search", "intern")
	u.RawQuery = q.Encode()

	var body remotiveResponse
	if err := getJSON(ctx, s.Client, u.String(), &body); err != nil {
		return nil, err
	}

	out := make([]models.Internship, 0, len(body.Jobs))
	for _, job := range body.Jobs {
		if job.ID == 0 || strings.TrimSpace(job.Title) == "" {
			continue
		}
		out = append(out, models.Internship{
			Source:      models.InternshipSourceRemotive,
			ExternalID:  strconv.FormatInt(job.ID, 10),
			Title:       strings.TrimSpace(job.Title),
			Company:     strings.TrimSpace(job.CompanyName),
			Location:    job.Location,
			URL:         job.URL,
			Description: job.Description,
			Tags:        job.Tags,
			Remote:      true,
			PostedAt:    parseRemotiveDate(job.PublicationDate),
		})
	}
	return out, nil
}

// Remotive dates carry no zone and are UTC.
func parseRemotiveDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ArbeitnowSource reads the Arbeitnow job board and keeps internship postings only.
type ArbeitnowSource struct {
	BaseURL string
	Client  *http.Client
}

type arbeitnowResponse struct {
	Data []struct {
		Slug        string   `json:"slug"`
		CompanyName string   `json:"company_name"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Remote      bool     `json:"remote"`
		URL         string   `json:"url"`
		Tags        []string `json:"tags"`
		JobTypes    []string `json:"job_types"`
		Location    string   `json:"location"`
		CreatedAt   int64    `json:"created_at"`
	} `json:"data"`
}

func NewArbeitnowSource(baseURL string, client *http.Client) *ArbeitnowSource {
	return &ArbeitnowSource{BaseURL: baseURL, Client: client}
}

func (s *ArbeitnowSource) Name() string { return models.InternshipSourceArbeitnow }

func (s *ArbeitnowSource) Fetch(ctx context.Context) ([]models.Internship, error) {
	var body arbeitnowResponse
	if err := getJSON(ctx, s.Client, s.BaseURL, &body); err != nil {
		return nil, err
	}

	out := make([]models.Internship, 0)
	for _, job := range body.Data {
		if job.Slug == "" || !isInternship(job.Title, job.JobTypes) {
			continue
		}
		out = append(out, models.Internship{
			Source:      models.InternshipSourceArbeitnow,
			ExternalID:  job.Slug,
			Title:       strings.TrimSpace(job.Title),
			Company:     strings.TrimSpace(job.CompanyName),
			Location:    job.Location,
			URL:         job.URL,
			Description: job.Description,
			Tags:        job.Tags,
			Remote:      job.Remote,
			PostedAt:    utils.UnixTimeToTime(job.CreatedAt),
		})
	}
	return out, nil
}

func isInternship(title string, jobTypes []string) bool {
	if strings.Contains(strings.ToLower(title), "intern") {
		return true
	}
	for _, jt := range jobTypes {
		if strings.Contains(strings.ToLower(jt), "intern") {
			return true
		}
	}
	return false
}
