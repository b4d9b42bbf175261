package matchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-jobmatch-backend/internal/domain"
)

// Client scores through a remote match-job endpoint. It implements
// domain.MatchEngine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryConfig,
	}
}

// WithRetry replaces the retry policy
func (c *Client) WithRetry(rc RetryConfig) *Client {
	c.retry = rc
	return c
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (c *Client) Score(ctx context.Context, req domain.MatchJobRequest) ([]domain.SimilarityResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := retryDo(ctx, c.retry, func() (*domain.MatchJobResponse, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("match engine: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("match engine: unsuccessful response")
	}
	if len(resp.Results) != len(req.JobDescriptions) {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrCountMismatch, len(resp.Results), len(req.JobDescriptions))
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*domain.MatchJobResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/match-job", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		detail := eb.Detail
		if detail == "" {
			detail = eb.Error
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: detail}
	}

	var out domain.MatchJobResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
