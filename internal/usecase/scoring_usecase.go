package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/scoring"
	"go-jobmatch-backend/pkg/apperror"
	"go-jobmatch-backend/pkg/logger"
)

// Keyer derives a cache key for a request
type Keyer func(req domain.MatchJobRequest) (string, error)

type scoringUsecase struct {
	engine *scoring.Engine
	cache  domain.ScoreCache
	key    Keyer
}

// NewScoringUsecase wires the stateless match-job endpoint. cache and key may
// be nil, which disables memoisation.
func NewScoringUsecase(engine *scoring.Engine, cache domain.ScoreCache, key Keyer) domain.ScoringUsecase {
	if cache == nil || key == nil {
		cache, key = nil, nil
	}
	return &scoringUsecase{engine: engine, cache: cache, key: key}
}

// EngineFingerprint identifies the engine configuration so cached responses
// are never served across a change of options or bands.
func EngineFingerprint(e *scoring.Engine) string {
	return fmt.Sprintf("%+v|%+v", e.Options(), e.Classifier().Bands())
}

func (u *scoringUsecase) Score(ctx context.Context, req domain.MatchJobRequest) ([]domain.SimilarityResult, error) {
	if err := scoring.Validate(req); err != nil {
		return nil, scoringError(err)
	}

	var key string
	if u.cache != nil {
		k, err := u.key(req)
		if err != nil {
			logger.Log.Debug("score cache key failed", "error", err)
		} else {
			key = k
			if cached, ok := u.cache.Get(ctx, key); ok && len(cached) == len(req.JobDescriptions) {
				return cached, nil
			}
		}
	}

	results, err := u.engine.Score(ctx, req)
	if err != nil {
		return nil, scoringError(err)
	}

	if key != "" {
		u.cache.Set(ctx, key, results)
	}
	return results, nil
}

// scoringError maps engine errors onto HTTP errors of the match-job endpoint
func scoringError(err error) error {
	switch {
	case errors.Is(err, scoring.ErrEmptyCorpus):
		return apperror.New(http.StatusBadRequest, "No job descriptions were provided in the request", err)
	case errors.Is(err, scoring.ErrInvalidProfile):
		return apperror.New(http.StatusBadRequest, "No CV analysis provided in the request", err)
	case errors.Is(err, scoring.ErrCorpusTooLarge):
		return apperror.New(http.StatusRequestEntityTooLarge, "Too many job descriptions in the request", err)
	case errors.Is(err, scoring.ErrBudgetExceeded):
		return apperror.New(http.StatusInternalServerError, "Error processing job matching: computation budget exceeded", err)
	default:
		return apperror.New(http.StatusInternalServerError, "Error processing job matching", err)
	}
}
