package scoring

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVectors(t *testing.T) {
	ctx := context.Background()
	cfg := vectorConfig{tf: TFRaw, idf: IDFStandard, workers: 1, threshold: 20}

	candidate := []string{"python", "react"}
	jobs := [][]string{
		{"python", "backend"},
		{"java", "enterprise"},
		{"react", "frontend"},
	}

	vocab, cv, jobVecs, err := buildVectors(ctx, candidate, jobs, cfg)
	require.NoError(t, err)

	t.Run("Vocabulary is the sorted union", func(t *testing.T) {
		assert.Equal(t, []string{"backend", "enterprise", "frontend", "java", "python", "react"}, vocab.Terms)
		assert.Equal(t, 4, vocab.Documents)
	})

	t.Run("Standard idf counts the candidate as a document", func(t *testing.T) {
		i, ok := vocab.Lookup("python")
		require.True(t, ok)
		assert.Equal(t, 2, vocab.DF[i])
		assert.InDelta(t, math.Log(4.0/3.0), vocab.IDF[i], 1e-12)

		i, ok = vocab.Lookup("java")
		require.True(t, ok)
		assert.InDelta(t, math.Log(2), vocab.IDF[i], 1e-12)
	})

	t.Run("Raw tf weights", func(t *testing.T) {
		require.Equal(t, 2, cv.Len())
		for _, w := range cv.Values {
			assert.InDelta(t, 0.5*math.Log(4.0/3.0), w, 1e-12)
		}
	})

	t.Run("Job vectors follow input order", func(t *testing.T) {
		require.Len(t, jobVecs, 3)
		java, _ := vocab.Lookup("java")
		assert.Contains(t, jobVecs[1].Indices, java)
	})

	t.Run("Indices are strictly increasing", func(t *testing.T) {
		for _, v := range append(jobVecs, cv) {
			for k := 1; k < len(v.Indices); k++ {
				assert.Less(t, v.Indices[k-1], v.Indices[k])
			}
		}
	})
}

func TestBuildVectors_EmptyDocuments(t *testing.T) {
	cfg := vectorConfig{tf: TFRaw, idf: IDFStandard, workers: 1, threshold: 20}

	_, cv, jobVecs, err := buildVectors(context.Background(), []string{"go"}, [][]string{{}, {"go"}}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, jobVecs[0].Len())
	assert.Equal(t, 0.0, Cosine(cv, jobVecs[0]))
}

func TestBuildVectors_SmoothAndLog(t *testing.T) {
	cfg := vectorConfig{tf: TFLog, idf: IDFSmooth, workers: 1, threshold: 20}

	vocab, cv, _, err := buildVectors(context.Background(), []string{"go", "go", "sql"}, [][]string{{"go"}}, cfg)
	require.NoError(t, err)

	goIdx, _ := vocab.Lookup("go")
	assert.InDelta(t, math.Log(3.0/3.0)+1, vocab.IDF[goIdx], 1e-12)
	for k, i := range cv.Indices {
		if i == goIdx {
			assert.InDelta(t, (1+math.Log(2))/3, cv.Values[k], 1e-12)
		}
	}
}

func TestBuildVectors_SmallCorpusUsesSmoothIDF(t *testing.T) {
	cfg := vectorConfig{tf: TFRaw, idf: IDFStandard, workers: 1, threshold: 20}
	candidate := []string{"python", "react"}

	t.Run("Two jobs", func(t *testing.T) {
		vocab, _, _, err := buildVectors(context.Background(), candidate, [][]string{
			{"python", "backend", "role"},
			{"java", "enterprise", "role"},
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, IDFSmooth, vocab.Scheme)

		i, _ := vocab.Lookup("python")
		assert.InDelta(t, math.Log(4.0/3.0)+1, vocab.IDF[i], 1e-12)
		for _, w := range vocab.IDF {
			assert.Greater(t, w, 0.0)
		}
	})

	t.Run("Three jobs keep standard", func(t *testing.T) {
		vocab, _, _, err := buildVectors(context.Background(), candidate, [][]string{
			{"python"}, {"java"}, {"react"},
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, IDFStandard, vocab.Scheme)
	})
}

func TestBuildVectors_ParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	tok := NewTokenizer(TokenModeFull)
	candidate := tok.Normalize("Go developer with PostgreSQL, Redis, Docker and Kubernetes")

	jobs := make([][]string, 60)
	for i := range jobs {
		jobs[i] = tok.Normalize(sampleJobs[i%len(sampleJobs)])
	}

	seq := vectorConfig{tf: TFRaw, idf: IDFStandard, workers: 1, threshold: 1000}
	par := vectorConfig{tf: TFRaw, idf: IDFStandard, workers: 8, threshold: 2}

	_, cvA, jobsA, err := buildVectors(ctx, candidate, jobs, seq)
	require.NoError(t, err)
	_, cvB, jobsB, err := buildVectors(ctx, candidate, jobs, par)
	require.NoError(t, err)

	assert.Equal(t, cvA, cvB)
	assert.Equal(t, jobsA, jobsB)
}

func TestCosine(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2}, Values: []float64{1, 1}}
	b := SparseVector{Indices: []int{1, 3}, Values: []float64{1, 1}}

	t.Run("Identical vectors", func(t *testing.T) {
		assert.InDelta(t, 1.0, Cosine(a, a), 1e-12)
	})

	t.Run("Disjoint vectors", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine(a, b))
	})

	t.Run("Zero vector", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine(a, SparseVector{}))
		assert.Equal(t, 0.0, Cosine(SparseVector{}, SparseVector{}))
	})

	t.Run("Partial overlap", func(t *testing.T) {
		c := SparseVector{Indices: []int{0, 1}, Values: []float64{1, 1}}
		assert.InDelta(t, 0.5, Cosine(a, c), 1e-12)
	})

	t.Run("Clamped to the unit interval", func(t *testing.T) {
		neg := SparseVector{Indices: []int{0, 2}, Values: []float64{-1, -1}}
		assert.Equal(t, 0.0, Cosine(a, neg))
	})
}

func TestDot(t *testing.T) {
	a := SparseVector{Indices: []int{1, 4, 7}, Values: []float64{2, 3, 4}}
	b := SparseVector{Indices: []int{0, 4, 7, 9}, Values: []float64{5, 1, 2, 8}}
	assert.Equal(t, 11.0, Dot(a, b))
	assert.Equal(t, Dot(a, b), Dot(b, a))
}
