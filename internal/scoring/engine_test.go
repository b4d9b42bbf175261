package scoring

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-backend/internal/domain"
)

var sampleJobs = []string{
	"Senior Go engineer building microservices on PostgreSQL and Redis. Docker and Kubernetes in production.",
	"Frontend developer, React and TypeScript, Next.js experience preferred.",
	"Data scientist: Python, pandas, scikit-learn, machine learning pipelines on AWS.",
	"Java enterprise architect, Spring Boot, Oracle, on-premise deployments.",
	"Office manager for a busy accounting firm.",
	"",
	"DevOps engineer: Terraform, Ansible, Jenkins, AWS and Linux administration.",
}

func pythonReactProfile() *domain.CandidateProfile {
	return &domain.CandidateProfile{
		Skills: domain.Skills{
			ProgrammingLanguages: []string{"python"},
			FrameworksLibraries:  []string{"react"},
		},
	}
}

func goProfile() *domain.CandidateProfile {
	return &domain.CandidateProfile{
		Skills: domain.Skills{
			ProgrammingLanguages: []string{"Go", "SQL"},
			Databases:            []string{"PostgreSQL", "Redis"},
			CloudTools:           []string{"Docker", "Kubernetes", "AWS"},
		},
		Sections: domain.Sections{
			Experience: "Built and deployed backend microservices in Go.",
		},
		ExperienceIndicators: []string{"3 years backend"},
		EducationInfo:        []string{"BSc Computer Science"},
		Entities:             domain.Entities{Organizations: []string{"Acme Cloud Systems", "City Bakery"}},
		ContactInfo:          domain.ContactInfo{GitHub: "github.com/gopher"},
	}
}

func TestEngine_Scenario(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	results, err := e.ScoreAll(context.Background(), pythonReactProfile(), []string{
		"python backend role",
		"java enterprise role",
		"react frontend role",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i+1, r.JobIndex)
	}
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
	assert.Greater(t, results[2].Similarity, results[1].Similarity)
	assert.InDelta(t, results[0].Similarity, results[2].Similarity, 1e-12)
	assert.InDelta(t, 0.2710, results[0].Similarity, 1e-3)

	assert.Equal(t, 0.0, results[1].Similarity)
	assert.Equal(t, domain.MatchNone, results[1].MatchQuality)
	assert.Equal(t, domain.MatchGood, results[0].MatchQuality)
}

func TestEngine_SmallCorpus(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	t.Run("Shared skill still scores with two jobs", func(t *testing.T) {
		results, err := e.ScoreAll(context.Background(), pythonReactProfile(), []string{
			"python backend role",
			"java enterprise role",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Greater(t, results[0].Similarity, 0.0)
		assert.NotEqual(t, domain.MatchNone, results[0].MatchQuality)
		assert.Equal(t, 0.0, results[1].Similarity)
	})

	t.Run("Partial overlap with one job is not a perfect match", func(t *testing.T) {
		results, err := e.ScoreAll(context.Background(), pythonReactProfile(), []string{"python backend role"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Greater(t, results[0].Similarity, 0.0)
		assert.Less(t, results[0].Similarity, 0.9)
		assert.NotEqual(t, domain.MatchExcellent, results[0].MatchQuality)
	})
}

func TestEngine_IndexFidelity(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	for _, n := range []int{0, 1, 2, 19, 20, 21, 97} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			jobs := make([]string, n)
			for i := range jobs {
				jobs[i] = sampleJobs[i%len(sampleJobs)]
			}
			results, err := e.ScoreAll(context.Background(), goProfile(), jobs)
			require.NoError(t, err)
			require.NotNil(t, results)
			require.Len(t, results, n)
			for i, r := range results {
				assert.Equal(t, i+1, r.JobIndex)
				assert.GreaterOrEqual(t, r.Similarity, 0.0)
				assert.LessOrEqual(t, r.Similarity, 1.0)
				assert.Contains(t, domain.MatchLabels, r.MatchQuality)
			}
		})
	}
}

func TestEngine_Determinism(t *testing.T) {
	jobs := make([]string, 45)
	for i := range jobs {
		jobs[i] = fmt.Sprintf("%s Ticket %d.", sampleJobs[i%len(sampleJobs)], i)
	}

	parallel := NewEngine(Options{ParallelThreshold: 2, Workers: 8}, nil)
	sequential := NewEngine(Options{ParallelThreshold: 1000}, nil)

	first, err := parallel.ScoreAll(context.Background(), goProfile(), jobs)
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, err := parallel.ScoreAll(context.Background(), goProfile(), jobs)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	seq, err := sequential.ScoreAll(context.Background(), goProfile(), jobs)
	require.NoError(t, err)
	assert.Equal(t, first, seq)
}

func TestEngine_ZeroOverlap(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	results, err := e.ScoreAll(context.Background(), goProfile(), []string{
		"Office manager for a busy accounting firm.",
		"",
		"!!! ???",
	})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, 0.0, r.Similarity)
		assert.Equal(t, domain.MatchNone, r.MatchQuality)
	}
}

func TestEngine_RelevantJobRanksFirst(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	results, err := e.ScoreAll(context.Background(), goProfile(), sampleJobs)
	require.NoError(t, err)

	ranked := SortByScore(results)
	assert.Equal(t, 1, ranked[0].JobIndex)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Similarity, ranked[i].Similarity)
	}
	// original order untouched
	assert.Equal(t, 1, results[0].JobIndex)
	assert.Equal(t, 2, results[1].JobIndex)
}

func TestEngine_InvalidProfile(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	_, err := e.ScoreAll(context.Background(), nil, []string{"go"})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = e.ScoreAll(context.Background(), &domain.CandidateProfile{
		Sections: domain.Sections{Objective: "   "},
	}, []string{"go"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestEngine_CorpusTooLarge(t *testing.T) {
	e := NewEngine(Options{MaxJobs: 3}, nil)

	_, err := e.ScoreAll(context.Background(), goProfile(), []string{"a", "b", "c", "d"})
	assert.ErrorIs(t, err, ErrCorpusTooLarge)
}

func TestEngine_BudgetExceeded(t *testing.T) {
	e := NewEngine(Options{
		BudgetBase:   time.Nanosecond,
		BudgetPerJob: time.Nanosecond,
		MaxJobs:      10000,
	}, nil)

	long := strings.Repeat(sampleJobs[0]+" ", 40)
	jobs := make([]string, 4000)
	for i := range jobs {
		jobs[i] = long
	}

	results, err := e.ScoreAll(context.Background(), goProfile(), jobs)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Nil(t, results)
}

func TestEngine_CallerCancellation(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ScoreAll(ctx, goProfile(), sampleJobs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBudgetExceeded)
}

func TestEngine_Explain(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)

	results, err := e.Score(context.Background(), domain.MatchJobRequest{
		CVAnalysis:      goProfile(),
		JobDescriptions: sampleJobs,
		Explain:         true,
	})
	require.NoError(t, err)

	top := results[0].TopTerms
	require.NotEmpty(t, top)
	assert.LessOrEqual(t, len(top), 3)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Contribution, top[i].Contribution)
	}
	assert.Empty(t, results[4].TopTerms)

	plain, err := e.Score(context.Background(), domain.MatchJobRequest{
		CVAnalysis:      goProfile(),
		JobDescriptions: sampleJobs,
	})
	require.NoError(t, err)
	assert.Nil(t, plain[0].TopTerms)
	assert.Equal(t, results[0].Similarity, plain[0].Similarity)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(domain.MatchJobRequest{JobDescriptions: []string{"go"}}), ErrInvalidProfile)
	assert.ErrorIs(t, Validate(domain.MatchJobRequest{CVAnalysis: goProfile()}), ErrEmptyCorpus)
	assert.NoError(t, Validate(domain.MatchJobRequest{CVAnalysis: goProfile(), JobDescriptions: []string{"go"}}))
	assert.ErrorIs(t, Validate(domain.MatchJobRequest{}), ErrEmptyCorpus)
}

func TestProfileTokens(t *testing.T) {
	tok := NewTokenizer(TokenModeFull)

	t.Run("Skills are weighted", func(t *testing.T) {
		got := ProfileTokens(tok, pythonReactProfile(), 3)
		assert.Equal(t, []string{"python", "react", "python", "react", "python", "react"}, got)
	})

	t.Run("Only technical organisations count", func(t *testing.T) {
		got := ProfileTokens(tok, goProfile(), 1)
		assert.Contains(t, got, "acme")
		assert.NotContains(t, got, "bakery")
		assert.Contains(t, got, "github")
	})

	t.Run("Nil profile", func(t *testing.T) {
		assert.Empty(t, ProfileTokens(tok, nil, 2))
	})
}
