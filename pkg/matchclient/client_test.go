package matchclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-backend/internal/domain"
)

var fastRetry = RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}

func request() domain.MatchJobRequest {
	return domain.MatchJobRequest{
		CVAnalysis:      &domain.CandidateProfile{Skills: domain.Skills{ProgrammingLanguages: []string{"go"}}},
		JobDescriptions: []string{"go developer", "chef"},
	}
}

func TestClient_Score(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req domain.MatchJobRequest
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
				return
			}
			assert.Len(t, req.JobDescriptions, 2)
			_ = json.NewEncoder(w).Encode(domain.MatchJobResponse{Success: true, Results: []domain.SimilarityResult{
				{JobIndex: 1, Similarity: 0.6, MatchQuality: domain.MatchExcellent},
				{JobIndex: 2, Similarity: 0, MatchQuality: domain.MatchNone},
			}})
		}))
		defer srv.Close()

		results, err := NewClient(srv.URL, time.Second).WithRetry(fastRetry).Score(context.Background(), request())
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Count mismatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(domain.MatchJobResponse{Success: true, Results: []domain.SimilarityResult{
				{JobIndex: 1, Similarity: 0.6, MatchQuality: domain.MatchExcellent},
			}})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).WithRetry(fastRetry).Score(context.Background(), request())
		assert.ErrorIs(t, err, domain.ErrCountMismatch)
	})

	t.Run("Retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(domain.MatchJobResponse{Success: true, Results: []domain.SimilarityResult{
				{JobIndex: 1}, {JobIndex: 2},
			}})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).WithRetry(fastRetry).Score(context.Background(), request())
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"No CV analysis provided in the request"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).WithRetry(fastRetry).Score(context.Background(), request())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No CV analysis provided")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).WithRetry(fastRetry).Score(context.Background(), request())
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
	})
}
