package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"go-jobmatch-backend/internal/domain"
)

// Options tunes a scoring Engine. Zero values fall back to DefaultOptions.
type Options struct {
	TokenMode         TokenMode
	TF                TFScheme
	IDF               IDFScheme
	SkillWeight       int
	ParallelThreshold int
	Workers           int
	BudgetBase        time.Duration
	BudgetPerJob      time.Duration
	MaxJobs           int
	TopTerms          int
}

func DefaultOptions() Options {
	return Options{
		TokenMode:         TokenModeFull,
		TF:                TFRaw,
		IDF:               IDFStandard,
		SkillWeight:       2,
		ParallelThreshold: 20,
		Workers:           4,
		BudgetBase:        2 * time.Second,
		BudgetPerJob:      50 * time.Millisecond,
		MaxJobs:           5000,
		TopTerms:          3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TokenMode == "" {
		o.TokenMode = d.TokenMode
	}
	if o.TF == "" {
		o.TF = d.TF
	}
	if o.IDF == "" {
		o.IDF = d.IDF
	}
	if o.SkillWeight <= 0 {
		o.SkillWeight = d.SkillWeight
	}
	if o.ParallelThreshold <= 0 {
		o.ParallelThreshold = d.ParallelThreshold
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.BudgetBase <= 0 {
		o.BudgetBase = d.BudgetBase
	}
	if o.BudgetPerJob <= 0 {
		o.BudgetPerJob = d.BudgetPerJob
	}
	if o.TopTerms <= 0 {
		o.TopTerms = d.TopTerms
	}
	return o
}

// Engine scores a candidate profile against an ordered job corpus. It holds
// no per-run state and is safe for concurrent use.
type Engine struct {
	opts       Options
	tokenizer  *Tokenizer
	classifier *Classifier
}

// NewEngine builds an engine. A nil classifier uses DefaultBands.
func NewEngine(opts Options, classifier *Classifier) *Engine {
	opts = opts.withDefaults()
	if classifier == nil {
		classifier = MustClassifier(DefaultBands())
	}
	return &Engine{
		opts:       opts,
		tokenizer:  NewTokenizer(opts.TokenMode),
		classifier: classifier,
	}
}

func (e *Engine) Options() Options        { return e.opts }
func (e *Engine) Classifier() *Classifier { return e.classifier }
func (e *Engine) Tokenizer() *Tokenizer   { return e.tokenizer }

// Budget is the wall-clock allowance for scoring n jobs.
func (e *Engine) Budget(n int) time.Duration {
	return e.opts.BudgetBase + time.Duration(n)*e.opts.BudgetPerJob
}

// Validate rejects requests that must not reach the engine at all.
func Validate(req domain.MatchJobRequest) error {
	if len(req.JobDescriptions) == 0 {
		return ErrEmptyCorpus
	}
	if req.CVAnalysis.IsEmpty() {
		return ErrInvalidProfile
	}
	return nil
}

// Score implements domain.MatchEngine.
func (e *Engine) Score(ctx context.Context, req domain.MatchJobRequest) ([]domain.SimilarityResult, error) {
	if req.Explain {
		return e.ScoreAllExplained(ctx, req.CVAnalysis, req.JobDescriptions)
	}
	return e.ScoreAll(ctx, req.CVAnalysis, req.JobDescriptions)
}

// ScoreAll returns one result per job, in input order, with JobIndex = i+1.
// An empty corpus yields an empty slice. Either every job is scored or an
// error is returned; partial results are never returned.
func (e *Engine) ScoreAll(ctx context.Context, profile *domain.CandidateProfile, jobs []string) ([]domain.SimilarityResult, error) {
	return e.score(ctx, profile, jobs, false)
}

// ScoreAllExplained is ScoreAll with the top contributing terms per job.
func (e *Engine) ScoreAllExplained(ctx context.Context, profile *domain.CandidateProfile, jobs []string) ([]domain.SimilarityResult, error) {
	return e.score(ctx, profile, jobs, true)
}

func (e *Engine) score(ctx context.Context, profile *domain.CandidateProfile, jobs []string, explain bool) ([]domain.SimilarityResult, error) {
	if profile.IsEmpty() {
		return nil, ErrInvalidProfile
	}
	n := len(jobs)
	if n == 0 {
		return []domain.SimilarityResult{}, nil
	}
	if e.opts.MaxJobs > 0 && n > e.opts.MaxJobs {
		return nil, fmt.Errorf("%w: %d jobs, limit %d", ErrCorpusTooLarge, n, e.opts.MaxJobs)
	}

	budget := e.Budget(n)
	bctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	results, err := e.run(bctx, profile, jobs, explain)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %d jobs in %s", ErrBudgetExceeded, n, budget)
		}
		return nil, err
	}
	if len(results) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrCountMismatch, len(results), n)
	}
	return results, nil
}

func (e *Engine) run(ctx context.Context, profile *domain.CandidateProfile, jobs []string, explain bool) ([]domain.SimilarityResult, error) {
	cfg := vectorConfig{
		tf:        e.opts.TF,
		idf:       e.opts.IDF,
		workers:   e.opts.Workers,
		threshold: e.opts.ParallelThreshold,
	}

	candidate := ProfileTokens(e.tokenizer, profile, e.opts.SkillWeight)
	jobTokens := make([][]string, len(jobs))
	if err := forEachDoc(ctx, len(jobs), cfg, func(i int) {
		jobTokens[i] = e.tokenizer.Normalize(jobs[i])
	}); err != nil {
		return nil, err
	}

	vocab, cv, jobVecs, err := buildVectors(ctx, candidate, jobTokens, cfg)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SimilarityResult, len(jobs))
	scoreOne := func(i int) {
		sim := Cosine(cv, jobVecs[i])
		r := domain.SimilarityResult{
			JobIndex:     i + 1,
			Similarity:   sim,
			MatchQuality: e.classifier.Classify(sim),
		}
		if explain {
			r.TopTerms = TopTerms(vocab, cv, jobVecs[i], e.opts.TopTerms)
		}
		results[i] = r
	}

	if len(jobs) < e.opts.ParallelThreshold || e.opts.Workers <= 1 {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scoreOne(i)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scoreOne(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SortByScore returns a copy of results ordered by similarity, best first.
// Ties keep corpus order.
func SortByScore(results []domain.SimilarityResult) []domain.SimilarityResult {
	out := append([]domain.SimilarityResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}
