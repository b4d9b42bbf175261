package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobmatch-backend/internal/domain"
)

type cvAnalysisRepo struct {
	db *pgxpool.Pool
}

func NewCVAnalysisRepository(db *pgxpool.Pool) domain.CVAnalysisRepository {
	return &cvAnalysisRepo{db: db}
}

func (r *cvAnalysisRepo) Create(ctx context.Context, a *domain.CVAnalysis) error {
	data, err := json.Marshal(a.AnalysisData)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE cv_analyses SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active`,
		a.UserID,
	); err != nil {
		return err
	}

	query := `
		INSERT INTO cv_analyses (user_id, file_name, file_size, file_key, analysis_data, is_active, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		RETURNING id, is_active, analyzed_at, created_at, updated_at`
	err = tx.QueryRow(ctx, query, a.UserID, a.FileName, a.FileSize, a.FileKey, string(data)).
		Scan(&a.ID, &a.IsActive, &a.AnalyzedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *cvAnalysisRepo) GetLatestByUserID(ctx context.Context, userID string) (*domain.CVAnalysis, error) {
	query := `
		SELECT id, user_id, file_name, COALESCE(file_size, 0), file_key, analysis_data::text,
		       is_active, analyzed_at, created_at, updated_at
		FROM cv_analyses
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1`

	var a domain.CVAnalysis
	var raw string
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &a.FileName, &a.FileSize, &a.FileKey, &raw,
		&a.IsActive, &a.AnalyzedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &a.AnalysisData); err != nil {
		return nil, fmt.Errorf("decode analysis %d: %w", a.ID, err)
	}
	return &a, nil
}

func (r *cvAnalysisRepo) DeleteByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM cv_analyses WHERE user_id = $1 RETURNING file_key`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
