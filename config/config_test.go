package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/scoring"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.ScoringParallelThreshold)
	assert.Equal(t, 4, cfg.ScoringWorkers)

	opts, err := cfg.ScoringOptions()
	require.NoError(t, err)
	assert.Equal(t, scoring.TokenModeFull, opts.TokenMode)
	assert.Equal(t, scoring.IDFStandard, opts.IDF)

	cl, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, domain.MatchExcellent, cl.Classify(0.5))
	assert.Equal(t, domain.MatchWeak, cl.Classify(0.08))
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SCORING_IDF", "smooth")
	t.Setenv("SCORING_BUDGET_PER_JOB", "10ms")
	t.Setenv("SCORE_CACHE_TTL", "30")
	t.Setenv("MATCH_BAND_EXCELLENT", "0.6")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, cfg.ScoringBudgetPerJob)
	assert.Equal(t, 30*time.Second, cfg.ScoreCacheTTL)

	opts, err := cfg.ScoringOptions()
	require.NoError(t, err)
	assert.Equal(t, scoring.IDFSmooth, opts.IDF)

	cl, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStrong, cl.Classify(0.55))
}

func TestLoadConfig_RejectsBadSettings(t *testing.T) {
	t.Run("Unknown idf", func(t *testing.T) {
		t.Setenv("SCORING_IDF", "bm25")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("Bands out of order", func(t *testing.T) {
		t.Setenv("MATCH_BAND_WEAK", "0.9")
		_, err := LoadConfig()
		assert.ErrorIs(t, err, scoring.ErrInvalidBands)
	})
}
