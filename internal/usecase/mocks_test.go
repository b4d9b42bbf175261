package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"go-jobmatch-backend/internal/domain"
)

// Mock Repositories
type MockCVRepo struct {
	mock.Mock
}

func (m *MockCVRepo) Create(ctx context.Context, a *domain.CVAnalysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockCVRepo) GetLatestByUserID(ctx context.Context, userID string) (*domain.CVAnalysis, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVAnalysis), args.Error(1)
}

func (m *MockCVRepo) DeleteByUserID(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) FetchAllForMatching(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) FetchWithSimilarity(ctx context.Context, userID string, filter domain.JobFilter, limit, offset int) ([]domain.JobWithSimilarity, int64, error) {
	args := m.Called(ctx, userID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.JobWithSimilarity), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) GetByIDWithSimilarity(ctx context.Context, id int64, userID string) (*domain.JobWithSimilarity, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobWithSimilarity), args.Error(1)
}

func (m *MockJobRepo) FetchNewest(ctx context.Context, limit int) ([]domain.JobWithSimilarity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobWithSimilarity), args.Error(1)
}

func (m *MockJobRepo) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockMatchRepo struct {
	mock.Mock
}

func (m *MockMatchRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMatchRepo) SaveBatch(ctx context.Context, userID string, records []domain.MatchRecord) (int64, error) {
	args := m.Called(ctx, userID, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepo) ListByUser(ctx context.Context, userID string) ([]domain.MatchWithJob, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchWithJob), args.Error(1)
}

func (m *MockMatchRepo) TopByUser(ctx context.Context, userID string, limit int) ([]domain.MatchWithJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchWithJob), args.Error(1)
}

func (m *MockMatchRepo) Summary(ctx context.Context, userID string) (int64, float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(float64), args.Error(2)
}

func (m *MockMatchRepo) CountByQuality(ctx context.Context, userID string) (map[string]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Score(ctx context.Context, req domain.MatchJobRequest) ([]domain.SimilarityResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarityResult), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, fileName string, body io.Reader) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, fileName, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return m.Called(ctx, key, contentType, body, size).Error(0)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// memMatchRepo is an in-memory MatchRepository with the same
// skip-on-conflict and already-scored semantics as the SQL one.
type memMatchRepo struct {
	mu      sync.Mutex
	records map[string]map[int64]domain.MatchRecord
	saves   int
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{records: map[string]map[int64]domain.MatchRecord{}}
}

func (r *memMatchRepo) ExistsForUser(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records[userID]) > 0, nil
}

func (r *memMatchRepo) SaveBatch(_ context.Context, userID string, records []domain.MatchRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if len(r.records[userID]) > 0 {
		return 0, domain.ErrAlreadyScored
	}
	rows := map[int64]domain.MatchRecord{}
	for _, rec := range records {
		if _, dup := rows[rec.JobID]; dup {
			continue
		}
		rows[rec.JobID] = rec
	}
	r.records[userID] = rows
	return int64(len(rows)), nil
}

func (r *memMatchRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.records[userID]))
	delete(r.records, userID)
	return n, nil
}

func (r *memMatchRepo) count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records[userID])
}

func (r *memMatchRepo) ListByUser(context.Context, string) ([]domain.MatchWithJob, error) {
	return nil, nil
}

func (r *memMatchRepo) TopByUser(context.Context, string, int) ([]domain.MatchWithJob, error) {
	return nil, nil
}

func (r *memMatchRepo) Summary(context.Context, string) (int64, float64, error) {
	return 0, 0, nil
}

func (r *memMatchRepo) CountByQuality(context.Context, string) (map[string]int64, error) {
	return map[string]int64{}, nil
}
