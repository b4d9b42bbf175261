package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-jobmatch-backend/internal/domain"
)

type matchRepo struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) domain.MatchRepository {
	return &matchRepo{db: db}
}

func (r *matchRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_similarities WHERE user_id = $1)`, userID,
	).Scan(&exists)
	return exists, err
}

func (r *matchRepo) SaveBatch(ctx context.Context, userID string, records []domain.MatchRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	jobIDs := make([]int64, len(records))
	sims := make([]float64, len(records))
	labels := make([]string, len(records))
	for i, rec := range records {
		jobIDs[i] = rec.JobID
		sims[i] = rec.Similarity
		labels[i] = rec.MatchQuality
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Serialises concurrent runs for the same user until commit
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return 0, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_similarities WHERE user_id = $1)`, userID,
	).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, domain.ErrAlreadyScored
	}

	query := `
		INSERT INTO job_similarities (user_id, job_id, similarity, match_quality)
		SELECT $1, t.job_id, t.similarity, t.match_quality
		FROM unnest($2::int[], $3::numeric[], $4::text[]) AS t(job_id, similarity, match_quality)
		ON CONFLICT (user_id, job_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, userID, pq.Array(jobIDs), pq.Array(sims), pq.Array(labels))
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *matchRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_similarities WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const matchWithJobQuery = `
	SELECT s.id, s.user_id, s.job_id, s.similarity::float8, s.match_quality, s.created_at,
	       j.title, j.location, c.name
	FROM job_similarities s
	JOIN jobs j ON j.id = s.job_id
	LEFT JOIN companies c ON c.id = j.company_id
	WHERE s.user_id = $1
	ORDER BY s.similarity DESC, s.job_id ASC`

func (r *matchRepo) ListByUser(ctx context.Context, userID string) ([]domain.MatchWithJob, error) {
	return r.queryMatches(ctx, matchWithJobQuery, userID)
}

func (r *matchRepo) TopByUser(ctx context.Context, userID string, limit int) ([]domain.MatchWithJob, error) {
	return r.queryMatches(ctx, matchWithJobQuery+` LIMIT $2`, userID, limit)
}

func (r *matchRepo) queryMatches(ctx context.Context, query string, args ...any) ([]domain.MatchWithJob, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []domain.MatchWithJob{}
	for rows.Next() {
		var m domain.MatchWithJob
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.JobID, &m.Similarity, &m.MatchQuality, &m.CreatedAt,
			&m.JobTitle, &m.Location, &m.CompanyName,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Summary counts all of the user's records and averages the non-zero ones.
func (r *matchRepo) Summary(ctx context.Context, userID string) (int64, float64, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(similarity) FILTER (WHERE similarity > 0), 0)::float8
		FROM job_similarities
		WHERE user_id = $1`

	var count int64
	var avg float64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count, &avg); err != nil {
		return 0, 0, err
	}
	return count, avg, nil
}

func (r *matchRepo) CountByQuality(ctx context.Context, userID string) (map[string]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT match_quality, COUNT(*) FROM job_similarities WHERE user_id = $1 GROUP BY match_quality`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64, len(domain.MatchLabels))
	for rows.Next() {
		var label string
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}
