package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobmatch-backend/pkg/redis"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	db *pgxpool.Pool
}

// NewHealthUsecase reports database and redis health. db may be nil.
func NewHealthUsecase(db *pgxpool.Pool) HealthUsecase {
	return &healthUsecase{db: db}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"database": "ok",
		"redis":    "ok",
	}

	if u.db == nil {
		status["database"] = "unavailable"
		status["status"] = "degraded"
	} else if err := u.db.Ping(ctx); err != nil {
		status["database"] = "unavailable"
		status["status"] = "degraded"
	}

	if redis.Client() == nil {
		status["redis"] = "disabled"
	} else if err := redis.HealthCheck(ctx); err != nil {
		status["redis"] = "unavailable"
	}

	return status
}
