package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/usecase"
)

func TestDashboard_Stats(t *testing.T) {
	matchRepo := new(MockMatchRepo)
	jobRepo := new(MockJobRepo)
	cvRepo := new(MockCVRepo)
	uc := usecase.NewDashboardUsecase(matchRepo, jobRepo, cvRepo)
	ctx := context.Background()

	matchRepo.On("Summary", ctx, testUser).Return(int64(12), 0.2374, nil)
	jobRepo.On("CountActive", ctx).Return(int64(30), nil)

	t.Run("Analysed", func(t *testing.T) {
		cvRepo.On("GetLatestByUserID", ctx, testUser).Return(analysisFor(testUser), nil).Once()
		stats, err := uc.GetStats(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, int64(12), stats.TotalMatches)
		assert.Equal(t, 24, stats.AverageMatchQuality)
		assert.Equal(t, usecase.CVStatusAnalysed, stats.CVStatus)
		assert.Equal(t, int64(30), stats.ActiveJobs)
	})

	t.Run("Not analysed", func(t *testing.T) {
		cvRepo.On("GetLatestByUserID", ctx, testUser).Return(nil, domain.ErrNotFound).Once()
		stats, err := uc.GetStats(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, usecase.CVStatusNotAnalysed, stats.CVStatus)
	})
}

func TestDashboard_Distribution(t *testing.T) {
	ctx := context.Background()

	t.Run("Percentages exclude No Match", func(t *testing.T) {
		matchRepo := new(MockMatchRepo)
		uc := usecase.NewDashboardUsecase(matchRepo, new(MockJobRepo), new(MockCVRepo))
		matchRepo.On("CountByQuality", ctx, testUser).Return(map[string]int64{
			domain.MatchExcellent: 1,
			domain.MatchGood:      2,
			domain.MatchWeak:      1,
			domain.MatchNone:      20,
		}, nil)

		buckets, err := uc.GetDistribution(ctx, testUser)
		require.NoError(t, err)
		require.Len(t, buckets, 5)

		labels := make([]string, len(buckets))
		for i, b := range buckets {
			labels[i] = b.Label
			assert.NotEmpty(t, b.Color)
		}
		assert.Equal(t, domain.MatchLabels[:5], labels)
		assert.Equal(t, 25, buckets[0].Percentage)
		assert.Equal(t, 0, buckets[1].Percentage)
		assert.Equal(t, 50, buckets[2].Percentage)
		assert.Equal(t, int64(2), buckets[2].Count)
		assert.Equal(t, 25, buckets[4].Percentage)
	})

	t.Run("Only No Match rows", func(t *testing.T) {
		matchRepo := new(MockMatchRepo)
		uc := usecase.NewDashboardUsecase(matchRepo, new(MockJobRepo), new(MockCVRepo))
		matchRepo.On("CountByQuality", ctx, testUser).Return(map[string]int64{domain.MatchNone: 3}, nil)

		buckets, err := uc.GetDistribution(ctx, testUser)
		require.NoError(t, err)
		for _, b := range buckets {
			assert.Equal(t, 0, b.Percentage)
			assert.Equal(t, int64(0), b.Count)
		}
	})
}

func TestDashboard_TopMatchesDefaultsLimit(t *testing.T) {
	matchRepo := new(MockMatchRepo)
	uc := usecase.NewDashboardUsecase(matchRepo, new(MockJobRepo), new(MockCVRepo))
	ctx := context.Background()

	matchRepo.On("TopByUser", ctx, testUser, 5).Return([]domain.MatchWithJob{}, nil)

	_, err := uc.GetTopMatches(ctx, testUser, 0)
	require.NoError(t, err)
	matchRepo.AssertExpectations(t)
}

func TestDashboard_Export(t *testing.T) {
	matchRepo := new(MockMatchRepo)
	uc := usecase.NewDashboardUsecase(matchRepo, new(MockJobRepo), new(MockCVRepo))
	ctx := context.Background()
	company := "Acme"

	matchRepo.On("ListByUser", ctx, testUser).Return([]domain.MatchWithJob{
		{
			MatchRecord: domain.MatchRecord{JobID: 3, Similarity: 0.41, MatchQuality: domain.MatchStrong, CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)},
			JobTitle:    "Go Engineer",
			CompanyName: &company,
		},
	}, nil)

	data, err := uc.ExportMatches(ctx, testUser)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Matches")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "JOB TITLE", rows[0][1])
	assert.Equal(t, "Go Engineer", rows[1][1])
	assert.Equal(t, "Acme", rows[1][2])
	assert.Equal(t, domain.MatchStrong, rows[1][5])
}

func TestDashboard_ExportEmpty(t *testing.T) {
	matchRepo := new(MockMatchRepo)
	uc := usecase.NewDashboardUsecase(matchRepo, new(MockJobRepo), new(MockCVRepo))
	matchRepo.On("ListByUser", mock.Anything, testUser).Return([]domain.MatchWithJob{}, nil)

	_, err := uc.ExportMatches(context.Background(), testUser)
	require.Error(t, err)
	assert.Equal(t, 404, appCode(t, err))
}
