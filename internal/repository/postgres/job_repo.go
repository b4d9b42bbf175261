package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-jobmatch-backend/internal/domain"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `j.id, j.company_id, j.title, j.description, j.requirements, j.skills,
	j.location, j.remote_type, j.salary_min, j.salary_max, j.salary_currency,
	j.employment_type, j.experience_level, j.is_active, j.posted_at, j.expires_at,
	j.created_at, j.updated_at`

func jobDest(job *domain.Job, requirements, skills *[]string) []any {
	return []any{
		&job.ID, &job.CompanyID, &job.Title, &job.Description, pq.Array(requirements), pq.Array(skills),
		&job.Location, &job.RemoteType, &job.SalaryMin, &job.SalaryMax, &job.SalaryCurrency,
		&job.EmploymentType, &job.ExperienceLevel, &job.IsActive, &job.PostedAt, &job.ExpiresAt,
		&job.CreatedAt, &job.UpdatedAt,
	}
}

func (r *jobRepo) FetchAllForMatching(ctx context.Context) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.is_active = TRUE ORDER BY j.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(jobDest(&job, &job.Requirements, &job.Skills)...); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// buildJobFilter renders the WHERE clause for the job board. Placeholders
// are numbered after the first `offset` arguments.
func buildJobFilter(filter domain.JobFilter, offset int) (string, []any) {
	conds := []string{"j.is_active = TRUE"}
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args)+offset)
	}

	if loc := strings.TrimSpace(filter.Location); loc != "" {
		conds = append(conds, "j.location ILIKE "+next("%"+loc+"%"))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		p := next("%" + term + "%")
		conds = append(conds, "(j.title ILIKE "+p+" OR j.description ILIKE "+p+")")
	}
	if filter.MinSalary > 0 {
		conds = append(conds, "j.salary_min >= "+next(filter.MinSalary))
	}
	if filter.MaxSalary > 0 {
		conds = append(conds, "j.salary_max <= "+next(filter.MaxSalary))
	}
	return strings.Join(conds, " AND "), args
}

func (r *jobRepo) FetchWithSimilarity(ctx context.Context, userID string, filter domain.JobFilter, limit, offset int) ([]domain.JobWithSimilarity, int64, error) {
	where, args := buildJobFilter(filter, 1)

	query := fmt.Sprintf(`
		SELECT %s, c.name, s.similarity::float8, s.match_quality
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		LEFT JOIN job_similarities s ON s.job_id = j.id AND s.user_id = $1
		WHERE %s
		ORDER BY s.similarity DESC NULLS LAST, j.posted_at DESC, j.id ASC
		LIMIT $%d OFFSET $%d`, jobColumns, where, len(args)+2, len(args)+3)

	queryArgs := append([]any{userID}, args...)
	queryArgs = append(queryArgs, limit, offset)

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []domain.JobWithSimilarity{}
	for rows.Next() {
		var job domain.JobWithSimilarity
		dest := append(jobDest(&job.Job, &job.Requirements, &job.Skills), &job.CompanyName, &job.Similarity, &job.MatchQuality)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countWhere, countArgs := buildJobFilter(filter, 0)
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j WHERE `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepo) GetByIDWithSimilarity(ctx context.Context, id int64, userID string) (*domain.JobWithSimilarity, error) {
	query := `
		SELECT ` + jobColumns + `, c.name, s.similarity::float8, s.match_quality
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		LEFT JOIN job_similarities s ON s.job_id = j.id AND s.user_id = $2
		WHERE j.id = $1`

	var job domain.JobWithSimilarity
	dest := append(jobDest(&job.Job, &job.Requirements, &job.Skills), &job.CompanyName, &job.Similarity, &job.MatchQuality)
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) FetchNewest(ctx context.Context, limit int) ([]domain.JobWithSimilarity, error) {
	query := `
		SELECT ` + jobColumns + `, c.name
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE j.is_active = TRUE
		ORDER BY j.posted_at DESC, j.id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.JobWithSimilarity{}
	for rows.Next() {
		var job domain.JobWithSimilarity
		dest := append(jobDest(&job.Job, &job.Requirements, &job.Skills), &job.CompanyName)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE is_active = TRUE`).Scan(&count)
	return count, err
}
