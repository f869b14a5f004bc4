// Package uploads forwards admin image uploads to an ImgBB-compatible image host.
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"campus-events/internal/apperror"

	"github.com/gabriel-vasile/mimetype"
)

type Uploader struct {
	Endpoint string
	APIKey   string
	MaxBytes int64
	Client   *http.Client
}

func NewUploader(endpoint, apiKey string, maxBytes int64, client *http.Client) *Uploader {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{Endpoint: endpoint, APIKey: apiKey, MaxBytes: maxBytes, Client: client}
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload checks that data is an image within the size limit and returns its hosted URL.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperror.ValidationFailed("image", "image is empty")
	}
	if int64(len(data)) > u.MaxBytes {
		return "", apperror.ValidationFailed("image", fmt.Sprintf("image must be at most %d bytes", u.MaxBytes))
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apperror.ValidationFailed("image", fmt.Sprintf("unsupported content type %s", mt.String()))
	}
	if u.APIKey == "" {
		return "", fmt.Errorf("image uploads are not configured")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	endpoint, err := url.Parse(u.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid upload endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", u.APIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host request failed: %w", err)
	}
	defer resp.Body.Close()

	var out imgbbResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode image host response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success || out.Data.URL == "" {
		return "", fmt.Errorf("image host rejected upload: status %d: %s", resp.StatusCode, out.Error.Message)
	}
	return out.Data.URL, nil
}
