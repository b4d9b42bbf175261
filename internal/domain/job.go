package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// Remote type values stored in jobs.remote_type
const (
	RemoteTypeOnSite = "on-site"
	RemoteTypeRemote = "remote"
	RemoteTypeHybrid = "hybrid"
)

type Job struct {
	ID              int64      `json:"id"`
	CompanyID       int64      `json:"company_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Requirements    []string   `json:"requirements"`
	Skills          []string   `json:"skills"`
	Location        *string    `json:"location"`
	RemoteType      *string    `json:"remote_type"`
	SalaryMin       *int64     `json:"salary_min"`
	SalaryMax       *int64     `json:"salary_max"`
	SalaryCurrency  string     `json:"salary_currency"`
	EmploymentType  *string    `json:"employment_type"`
	ExperienceLevel *string    `json:"experience_level"`
	IsActive        bool       `json:"is_active"`
	PostedAt        time.Time  `json:"posted_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// JobWithSimilarity extends Job with the company name and the current user's
// stored similarity, if any. Similarity and MatchQuality stay nil until the
// user has been scored.
type JobWithSimilarity struct {
	Job
	CompanyName  *string  `json:"company_name"`
	Similarity   *float64 `json:"similarity"`
	MatchQuality *string  `json:"match_quality"`
}

// JobFilter narrows the job board listing
type JobFilter struct {
	Location   string
	SearchTerm string
	MinSalary  int64
	MaxSalary  int64
}

// Pagination mirrors the pagination block returned by the job board
type Pagination struct {
	CurrentPage     int   `json:"current_page"`
	TotalPages      int   `json:"total_pages"`
	TotalItems      int64 `json:"total_items"`
	ItemsPerPage    int   `json:"items_per_page"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
}

type JobPage struct {
	Jobs       []JobWithSimilarity `json:"jobs"`
	Pagination Pagination          `json:"pagination"`
}

type JobRepository interface {
	// FetchAllForMatching returns every active job in ascending id order. The
	// order is the positional contract handed to the scoring engine.
	FetchAllForMatching(ctx context.Context) ([]Job, error)
	FetchWithSimilarity(ctx context.Context, userID string, filter JobFilter, limit, offset int) ([]JobWithSimilarity, int64, error)
	GetByIDWithSimilarity(ctx context.Context, id int64, userID string) (*JobWithSimilarity, error)
	FetchNewest(ctx context.Context, limit int) ([]JobWithSimilarity, error)
	CountActive(ctx context.Context) (int64, error)
}

type JobUsecase interface {
	ListJobs(ctx context.Context, userID string, filter JobFilter, page, limit int) (*JobPage, error)
	GetJobDetails(ctx context.Context, id int64, userID string) (*JobWithSimilarity, error)
}

// MatchText is the document scored for this job: title, description,
// requirements and skills.
func (j Job) MatchText() string {
	parts := make([]string, 0, 2+len(j.Requirements)+len(j.Skills))
	parts = append(parts, j.Title, j.Description)
	parts = append(parts, j.Requirements...)
	parts = append(parts, j.Skills...)
	return strings.Join(parts, "\n")
}
