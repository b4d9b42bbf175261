package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/database"
)

// openTestDB connects to TEST_DATABASE_URL and applies the schema. Tests that
// need it are skipped when the variable is unset.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresConnection(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	return pool
}

// seedMatchFixture inserts a user, a company and n jobs, removed again when
// the test ends.
func seedMatchFixture(t *testing.T, pool *pgxpool.Pool, n int) (string, []int64) {
	t.Helper()
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := pool.Exec(ctx, `INSERT INTO users (id, email) VALUES ($1, $2)`, userID, userID+"@example.test")
	require.NoError(t, err)

	var companyID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO companies (name) VALUES ($1) RETURNING id`, "Acme "+userID,
	).Scan(&companyID))

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, companyID)
	})

	jobIDs := make([]int64, n)
	for i := range jobIDs {
		require.NoError(t, pool.QueryRow(ctx,
			`INSERT INTO jobs (company_id, title, description) VALUES ($1, 'Backend Engineer', 'python backend role') RETURNING id`,
			companyID,
		).Scan(&jobIDs[i]))
	}
	return userID, jobIDs
}

func countMatches(t *testing.T, pool *pgxpool.Pool, userID string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM job_similarities WHERE user_id = $1`, userID,
	).Scan(&n))
	return n
}

func TestMatchRepo_SaveBatch(t *testing.T) {
	pool := openTestDB(t)
	repo := NewMatchRepository(pool)
	ctx := context.Background()

	t.Run("duplicate job ids collapse to one row", func(t *testing.T) {
		userID, jobs := seedMatchFixture(t, pool, 1)
		records := []domain.MatchRecord{
			{JobID: jobs[0], Similarity: 0.42, MatchQuality: "Fair Match"},
			{JobID: jobs[0], Similarity: 0.17, MatchQuality: "Weak Match"},
		}

		written, err := repo.SaveBatch(ctx, userID, records)
		require.NoError(t, err)
		assert.Equal(t, int64(1), written)
		assert.Equal(t, 1, countMatches(t, pool, userID))

		exists, err := repo.ExistsForUser(ctx, userID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("second batch is rejected", func(t *testing.T) {
		userID, jobs := seedMatchFixture(t, pool, 2)
		first := []domain.MatchRecord{{JobID: jobs[0], Similarity: 0.5, MatchQuality: "Good Match"}}
		second := []domain.MatchRecord{{JobID: jobs[1], Similarity: 0.9, MatchQuality: "Excellent Match"}}

		_, err := repo.SaveBatch(ctx, userID, first)
		require.NoError(t, err)

		written, err := repo.SaveBatch(ctx, userID, second)
		require.ErrorIs(t, err, domain.ErrAlreadyScored)
		assert.Zero(t, written)
		assert.Equal(t, 1, countMatches(t, pool, userID))

		stored, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, jobs[0], stored[0].JobID)
	})

	t.Run("concurrent batches leave one set", func(t *testing.T) {
		userID, jobs := seedMatchFixture(t, pool, 3)
		batch := func(sim float64) []domain.MatchRecord {
			out := make([]domain.MatchRecord, len(jobs))
			for i, id := range jobs {
				out[i] = domain.MatchRecord{JobID: id, Similarity: sim, MatchQuality: "Fair Match"}
			}
			return out
		}

		const callers = 4
		var wg sync.WaitGroup
		errs := make([]error, callers)
		written := make([]int64, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				written[i], errs[i] = repo.SaveBatch(ctx, userID, batch(0.1*float64(i+1)))
			}(i)
		}
		wg.Wait()

		winners := 0
		for i, err := range errs {
			if err == nil {
				winners++
				assert.Equal(t, int64(len(jobs)), written[i])
				continue
			}
			require.ErrorIs(t, err, domain.ErrAlreadyScored)
			assert.Zero(t, written[i])
		}
		assert.Equal(t, 1, winners)
		assert.Equal(t, len(jobs), countMatches(t, pool, userID))

		var distinct int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(DISTINCT similarity) FROM job_similarities WHERE user_id = $1`, userID,
		).Scan(&distinct))
		assert.Equal(t, 1, distinct)
	})
}
