package usecase

import (
	"context"
	"errors"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
)

const (
	defaultJobPageSize = 10
	maxJobPageSize     = 15
)

type jobUsecase struct {
	jobRepo domain.JobRepository
}

func NewJobUsecase(jobRepo domain.JobRepository) domain.JobUsecase {
	return &jobUsecase{jobRepo: jobRepo}
}

// ListJobs returns one page of active jobs with the user's similarity
func (u *jobUsecase) ListJobs(ctx context.Context, userID string, filter domain.JobFilter, page, limit int) (*domain.JobPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultJobPageSize
	}
	if limit > maxJobPageSize {
		limit = maxJobPageSize
	}
	if filter.MinSalary < 0 || filter.MaxSalary < 0 {
		return nil, apperror.BadRequest("Salary filters must not be negative")
	}
	if filter.MinSalary > 0 && filter.MaxSalary > 0 && filter.MinSalary > filter.MaxSalary {
		return nil, apperror.BadRequest("min_salary cannot be greater than max_salary")
	}
	offset := (page - 1) * limit

	jobs, total, err := u.jobRepo.FetchWithSimilarity(ctx, userID, filter, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.JobPage{Jobs: jobs, Pagination: paginate(page, limit, total)}, nil
}

func paginate(page, limit int, total int64) domain.Pagination {
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	return domain.Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

func (u *jobUsecase) GetJobDetails(ctx context.Context, id int64, userID string) (*domain.JobWithSimilarity, error) {
	job, err := u.jobRepo.GetByIDWithSimilarity(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}
	return job, nil
}
