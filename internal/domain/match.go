package domain

import (
	"context"
	"errors"
	"time"
)

// Match flow errors
var (
	ErrNoCVAnalysis  = errors.New("no cv analysis found for user")
	ErrNoJobs        = errors.New("no jobs available to match against")
	ErrAlreadyScored = errors.New("similarities already calculated for user")
	ErrCountMismatch = errors.New("engine result count does not match job count")
)

// Match quality labels. The presentation layer renders exactly these strings.
const (
	MatchExcellent = "Excellent Match"
	MatchStrong    = "Strong Match"
	MatchGood      = "Good Match"
	MatchModerate  = "Moderate Match"
	MatchWeak      = "Weak Match"
	MatchNone      = "No Match"
)

// MatchLabels lists every label from best to worst
var MatchLabels = []string{MatchExcellent, MatchStrong, MatchGood, MatchModerate, MatchWeak, MatchNone}

// TermContribution is one term's share of a job's dot product
type TermContribution struct {
	Term         string  `json:"term"`
	Contribution float64 `json:"contribution"`
}

// SimilarityResult describes the job at position JobIndex-1 of the scored corpus
type SimilarityResult struct {
	JobIndex     int                `json:"job_index"`
	Similarity   float64            `json:"similarity"`
	MatchQuality string             `json:"match_quality"`
	TopTerms     []TermContribution `json:"top_terms,omitempty"`
}

// MatchJobRequest is the wire request of the match-job endpoint
type MatchJobRequest struct {
	CVAnalysis      *CandidateProfile `json:"cv_analysis"`
	JobDescriptions []string          `json:"job_descriptions"`
	Explain         bool              `json:"explain,omitempty"`
}

// MatchJobResponse is the wire response of the match-job endpoint
type MatchJobResponse struct {
	Success bool               `json:"success"`
	Results []SimilarityResult `json:"results"`
}

// MatchEngine scores a candidate against an ordered corpus. Implementations
// must return exactly one result per description, in input order.
type MatchEngine interface {
	Score(ctx context.Context, req MatchJobRequest) ([]SimilarityResult, error)
}

// MatchRecord is a persisted similarity, unique per (UserID, JobID)
type MatchRecord struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	JobID        int64     `json:"job_id"`
	Similarity   float64   `json:"similarity"`
	MatchQuality string    `json:"match_quality"`
	CreatedAt    time.Time `json:"created_at"`
}

// MatchWithJob is a record joined with its job and company
type MatchWithJob struct {
	MatchRecord
	JobTitle    string  `json:"job_title"`
	Location    *string `json:"location"`
	CompanyName *string `json:"company_name"`
}

// MatchStats summarises a user's stored matches
type MatchStats struct {
	TotalMatches        int64  `json:"total_matches"`
	AverageMatchQuality int    `json:"average_match_quality"` // mean similarity x100
	CVStatus            string `json:"cv_status"`
	ActiveJobs          int64  `json:"active_jobs"`
}

// DistributionBucket is one label band of the dashboard distribution
type DistributionBucket struct {
	Label      string `json:"label"`
	Count      int64  `json:"count"`
	Color      string `json:"color"`
	Percentage int    `json:"percentage"`
}

// MatchOutcome is the result of a guarded match run. Cached is set when the
// user already had records and nothing was computed or written.
type MatchOutcome struct {
	Cached       bool   `json:"cached"`
	MatchedCount int    `json:"matched_count"`
	Message      string `json:"message"`
}

type MatchRepository interface {
	ExistsForUser(ctx context.Context, userID string) (bool, error)
	// SaveBatch writes all records in one transaction. Duplicate (user, job)
	// pairs are skipped. It returns ErrAlreadyScored without writing when the
	// user already has records at the time the transaction takes its lock.
	SaveBatch(ctx context.Context, userID string, records []MatchRecord) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]MatchWithJob, error)
	TopByUser(ctx context.Context, userID string, limit int) ([]MatchWithJob, error)
	Summary(ctx context.Context, userID string) (count int64, avg float64, err error)
	CountByQuality(ctx context.Context, userID string) (map[string]int64, error)
}

type MatchUsecase interface {
	MatchJobs(ctx context.Context, userID string) (*MatchOutcome, error)
}

type DashboardUsecase interface {
	GetStats(ctx context.Context, userID string) (*MatchStats, error)
	GetTopMatches(ctx context.Context, userID string, limit int) ([]MatchWithJob, error)
	GetNewestJobs(ctx context.Context, limit int) ([]JobWithSimilarity, error)
	GetDistribution(ctx context.Context, userID string) ([]DistributionBucket, error)
	ExportMatches(ctx context.Context, userID string) ([]byte, error)
}

// ScoreCache memoises engine responses for identical requests
type ScoreCache interface {
	Get(ctx context.Context, key string) ([]SimilarityResult, bool)
	Set(ctx context.Context, key string, results []SimilarityResult)
}

// ScoringUsecase serves the stateless match-job endpoint
type ScoringUsecase interface {
	Score(ctx context.Context, req MatchJobRequest) ([]SimilarityResult, error)
}
