package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
)

const (
	CVStatusAnalysed    = "Analysed"
	CVStatusNotAnalysed = "Not Analysed"
)

// labelColors are the presentation tokens of the distribution bands
var labelColors = map[string]string{
	domain.MatchExcellent: "bg-emerald-500",
	domain.MatchStrong:    "bg-green-500",
	domain.MatchGood:      "bg-blue-500",
	domain.MatchModerate:  "bg-amber-500",
	domain.MatchWeak:      "bg-slate-500",
}

type dashboardUsecase struct {
	matchRepo domain.MatchRepository
	jobRepo   domain.JobRepository
	cvRepo    domain.CVAnalysisRepository
}

func NewDashboardUsecase(matchRepo domain.MatchRepository, jobRepo domain.JobRepository, cvRepo domain.CVAnalysisRepository) domain.DashboardUsecase {
	return &dashboardUsecase{matchRepo: matchRepo, jobRepo: jobRepo, cvRepo: cvRepo}
}

func (u *dashboardUsecase) GetStats(ctx context.Context, userID string) (*domain.MatchStats, error) {
	count, avg, err := u.matchRepo.Summary(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	status := CVStatusAnalysed
	if _, err := u.cvRepo.GetLatestByUserID(ctx, userID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		status = CVStatusNotAnalysed
	}

	active, err := u.jobRepo.CountActive(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.MatchStats{
		TotalMatches:        count,
		AverageMatchQuality: int(math.Round(avg * 100)),
		CVStatus:            status,
		ActiveJobs:          active,
	}, nil
}

func (u *dashboardUsecase) GetTopMatches(ctx context.Context, userID string, limit int) ([]domain.MatchWithJob, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	matches, err := u.matchRepo.TopByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return matches, nil
}

func (u *dashboardUsecase) GetNewestJobs(ctx context.Context, limit int) ([]domain.JobWithSimilarity, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	jobs, err := u.jobRepo.FetchNewest(ctx, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

// GetDistribution buckets the user's records by stored label. Percentages are
// taken over every label except No Match, which is not returned.
func (u *dashboardUsecase) GetDistribution(ctx context.Context, userID string) ([]domain.DistributionBucket, error) {
	counts, err := u.matchRepo.CountByQuality(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var total int64
	for label, n := range counts {
		if label != domain.MatchNone {
			total += n
		}
	}

	buckets := make([]domain.DistributionBucket, 0, len(domain.MatchLabels)-1)
	for _, label := range domain.MatchLabels {
		if label == domain.MatchNone {
			continue
		}
		b := domain.DistributionBucket{Label: label, Count: counts[label], Color: labelColors[label]}
		if total > 0 {
			b.Percentage = int(math.Round(float64(b.Count) / float64(total) * 100))
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// ExportMatches renders the user's matches as an XLSX workbook
func (u *dashboardUsecase) ExportMatches(ctx context.Context, userID string) ([]byte, error) {
	matches, err := u.matchRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(matches) == 0 {
		return nil, apperror.NotFound("No matches to export")
	}

	data, err := buildMatchWorkbook(matches)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return data, nil
}

func buildMatchWorkbook(matches []domain.MatchWithJob) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Matches"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headers := []string{"JOB ID", "JOB TITLE", "COMPANY", "LOCATION", "SIMILARITY", "MATCH QUALITY", "SCORED AT"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// Dark blue header with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, m := range matches {
		row := []interface{}{
			m.JobID,
			m.JobTitle,
			deref(m.CompanyName),
			deref(m.Location),
			m.Similarity,
			m.MatchQuality,
			m.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
