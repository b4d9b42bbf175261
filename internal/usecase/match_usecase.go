package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
	"go-jobmatch-backend/pkg/audit"
	"go-jobmatch-backend/pkg/logger"
)

// User facing messages of the match flow
const (
	MsgNoCVAnalysis  = "No CV analysis found. Please upload and analyze your CV first."
	MsgNoJobs        = "No jobs available to match against."
	MsgCached        = "Job similarities already calculated. Results are cached."
	MsgMatchFailed   = "Failed to calculate job similarities. Please try again."
	msgMatchComplete = "Successfully calculated similarities for %d jobs."
)

type matchUsecase struct {
	cvRepo    domain.CVAnalysisRepository
	jobRepo   domain.JobRepository
	matchRepo domain.MatchRepository
	engine    domain.MatchEngine
	validate  *validator.Validate
	audit     *audit.Logger
	inflight  singleflight.Group
}

func NewMatchUsecase(
	cvRepo domain.CVAnalysisRepository,
	jobRepo domain.JobRepository,
	matchRepo domain.MatchRepository,
	engine domain.MatchEngine,
	validate *validator.Validate,
	auditLog *audit.Logger,
) domain.MatchUsecase {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return &matchUsecase{
		cvRepo:    cvRepo,
		jobRepo:   jobRepo,
		matchRepo: matchRepo,
		engine:    engine,
		validate:  validate,
		audit:     auditLog,
	}
}

// MatchJobs scores the user's latest CV against every active job once.
// Concurrent calls for the same user share one run.
func (u *matchUsecase) MatchJobs(ctx context.Context, userID string) (*domain.MatchOutcome, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	// the run outlives a single disconnecting caller; the engine budget bounds it
	runCtx := context.WithoutCancel(ctx)
	v, err, _ := u.inflight.Do(userID, func() (interface{}, error) {
		return u.matchJobs(runCtx, userID)
	})
	if err != nil {
		return nil, err
	}
	// copy so shared callers never alias one outcome
	out := *v.(*domain.MatchOutcome)
	return &out, nil
}

func (u *matchUsecase) matchJobs(ctx context.Context, userID string) (*domain.MatchOutcome, error) {
	analysis, err := u.cvRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, MsgNoCVAnalysis, domain.ErrNoCVAnalysis)
		}
		return nil, apperror.Internal(err)
	}
	if analysis.AnalysisData.IsEmpty() {
		return nil, apperror.New(http.StatusNotFound, MsgNoCVAnalysis, domain.ErrNoCVAnalysis)
	}

	exists, err := u.matchRepo.ExistsForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		u.audit.MatchCached(ctx, userID)
		return cachedOutcome(), nil
	}

	jobs, err := u.jobRepo.FetchAllForMatching(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(jobs) == 0 {
		return nil, apperror.New(http.StatusNotFound, MsgNoJobs, domain.ErrNoJobs)
	}

	start := time.Now()
	u.audit.MatchStarted(ctx, userID, len(jobs))

	descriptions := make([]string, len(jobs))
	for i, job := range jobs {
		descriptions[i] = job.MatchText()
	}

	results, err := u.engine.Score(ctx, domain.MatchJobRequest{
		CVAnalysis:      &analysis.AnalysisData,
		JobDescriptions: descriptions,
	})
	if err != nil {
		u.audit.MatchFailed(ctx, userID, err)
		logger.Log.Error("match engine failed", "error", err, "jobs", len(jobs))
		return nil, apperror.BadGateway(MsgMatchFailed, err)
	}

	records, err := u.toRecords(userID, jobs, results)
	if err != nil {
		u.audit.MatchFailed(ctx, userID, err)
		logger.Log.Error("match results rejected", "error", err, "jobs", len(jobs), "results", len(results))
		return nil, apperror.New(http.StatusInternalServerError, MsgMatchFailed, err)
	}

	written, err := u.matchRepo.SaveBatch(ctx, userID, records)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyScored) {
			u.audit.MatchCached(ctx, userID)
			return cachedOutcome(), nil
		}
		u.audit.MatchFailed(ctx, userID, err)
		return nil, apperror.New(http.StatusInternalServerError, MsgMatchFailed, err)
	}

	u.audit.MatchCompleted(ctx, userID, written, time.Since(start))
	return &domain.MatchOutcome{
		MatchedCount: int(written),
		Message:      fmt.Sprintf(msgMatchComplete, written),
	}, nil
}

// toRecords maps results back to job ids by position. Any count or index
// mismatch rejects the whole batch.
func (u *matchUsecase) toRecords(userID string, jobs []domain.Job, results []domain.SimilarityResult) ([]domain.MatchRecord, error) {
	if len(results) != len(jobs) {
		return nil, fmt.Errorf("%w: %d results for %d jobs", domain.ErrCountMismatch, len(results), len(jobs))
	}

	records := make([]domain.MatchRecord, len(results))
	for i, r := range results {
		if r.JobIndex != i+1 {
			return nil, fmt.Errorf("%w: result %d has job_index %d", domain.ErrCountMismatch, i, r.JobIndex)
		}
		if math.IsNaN(r.Similarity) || r.Similarity < 0 || r.Similarity > 1 {
			return nil, fmt.Errorf("similarity %v out of range for job_index %d", r.Similarity, r.JobIndex)
		}
		if u.validate != nil {
			if err := u.validate.Var(r.MatchQuality, "required,match_label"); err != nil {
				return nil, fmt.Errorf("invalid match quality %q: %w", r.MatchQuality, err)
			}
		}
		records[i] = domain.MatchRecord{
			UserID:       userID,
			JobID:        jobs[i].ID,
			Similarity:   roundSimilarity(r.Similarity),
			MatchQuality: r.MatchQuality,
		}
	}
	return records, nil
}

// roundSimilarity matches the NUMERIC(5,4) column
func roundSimilarity(s float64) float64 {
	return math.Round(s*10000) / 10000
}

func cachedOutcome() *domain.MatchOutcome {
	return &domain.MatchOutcome{Cached: true, Message: MsgCached}
}
