package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go-jobmatch-backend/internal/domain"
)

// ErrRejected is returned when the service refuses the document itself
// (not a PDF, unreadable, too little text). The message is safe to show.
var ErrRejected = errors.New("analysis: document rejected")

type RejectedError struct {
	Detail string
}

func (e *RejectedError) Error() string { return e.Detail }

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Client calls the CV analysis service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeResponse struct {
	Success bool                     `json:"success"`
	Data    *domain.CandidateProfile `json:"data"`
	Detail  string                   `json:"detail"`
}

// Analyze uploads a PDF as multipart field "file" and returns the extracted
// profile.
func (c *Client) Analyze(ctx context.Context, fileName string, body io.Reader) (*domain.CandidateProfile, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("analysis: read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/cv/analyze", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: request failed: %w", err)
	}
	defer resp.Body.Close()

	var out analyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("analysis: decode response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &RejectedError{Detail: out.Detail}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("analysis: status %d: %s", resp.StatusCode, out.Detail)
	case !out.Success || out.Data == nil:
		return nil, errors.New("analysis: service returned no data")
	}
	return out.Data, nil
}
