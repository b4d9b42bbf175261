package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// TFScheme selects the term frequency formula.
type TFScheme string

const (
	// TFRaw is count(t, d) / len(d).
	TFRaw TFScheme = "raw"
	// TFLog is (1 + ln count(t, d)) / len(d).
	TFLog TFScheme = "log"
)

// IDFScheme selects the inverse document frequency formula.
type IDFScheme string

const (
	// IDFStandard is ln(N / (1 + df)).
	IDFStandard IDFScheme = "standard"
	// IDFSmooth is ln((1 + N) / (1 + df)) + 1, which is always positive.
	IDFSmooth IDFScheme = "smooth"
)

// MinStandardIDFDocuments is the smallest corpus, candidate included, that
// IDFStandard is applied to. Below it a term shared by the candidate and one
// job already has df >= N-1, so ln(N/(1+df)) is zero or negative and overlap
// scores 0 or a spurious 1.0. Smaller corpora use IDFSmooth instead.
const MinStandardIDFDocuments = 4

func ParseTFScheme(s string) (TFScheme, error) {
	switch TFScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", TFRaw:
		return TFRaw, nil
	case TFLog:
		return TFLog, nil
	}
	return "", fmt.Errorf("scoring: unknown tf scheme %q", s)
}

func ParseIDFScheme(s string) (IDFScheme, error) {
	switch IDFScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", IDFStandard:
		return IDFStandard, nil
	case IDFSmooth:
		return IDFSmooth, nil
	}
	return "", fmt.Errorf("scoring: unknown idf scheme %q", s)
}

// SparseVector holds the non-zero weights of a document. Indices are
// strictly increasing positions in a Vocabulary.
type SparseVector struct {
	Indices []int
	Values  []float64
}

func (v SparseVector) Len() int { return len(v.Indices) }

// Norm returns the L2 norm, summing in index order.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Vocabulary is the sorted union of terms across one scoring run's documents.
type Vocabulary struct {
	Terms     []string
	DF        []int
	IDF       []float64
	Documents int
	// Scheme is the IDF formula actually applied
	Scheme    IDFScheme
	index     map[string]int
}

func (v *Vocabulary) Lookup(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

func (v *Vocabulary) Size() int { return len(v.Terms) }

// vectorConfig controls buildVectors
type vectorConfig struct {
	tf        TFScheme
	idf       IDFScheme
	workers   int
	threshold int
}

// buildVectors vectorizes the candidate and every job over a shared
// vocabulary. N counts the candidate plus all jobs. Job vectors are returned
// in input order. Per-document work fans out over a bounded worker group
// once the corpus reaches the parallel threshold; results are identical
// either way.
func buildVectors(ctx context.Context, candidate []string, jobs [][]string, cfg vectorConfig) (*Vocabulary, SparseVector, []SparseVector, error) {
	docs := make([][]string, 0, len(jobs)+1)
	docs = append(docs, candidate)
	docs = append(docs, jobs...)

	counts := make([]map[string]int, len(docs))
	if err := forEachDoc(ctx, len(docs), cfg, func(i int) {
		counts[i] = countTerms(docs[i])
	}); err != nil {
		return nil, SparseVector{}, nil, err
	}

	vocab := newVocabulary(counts, cfg.idf)

	vectors := make([]SparseVector, len(docs))
	if err := forEachDoc(ctx, len(docs), cfg, func(i int) {
		vectors[i] = weigh(vocab, counts[i], len(docs[i]), cfg.tf)
	}); err != nil {
		return nil, SparseVector{}, nil, err
	}
	return vocab, vectors[0], vectors[1:], nil
}

func forEachDoc(ctx context.Context, n int, cfg vectorConfig, fn func(i int)) error {
	if cfg.workers <= 1 || n < cfg.threshold {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

func countTerms(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

func newVocabulary(counts []map[string]int, scheme IDFScheme) *Vocabulary {
	df := make(map[string]int)
	for _, c := range counts {
		for term := range c {
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if scheme != IDFSmooth && len(counts) < MinStandardIDFDocuments {
		scheme = IDFSmooth
	}

	n := float64(len(counts))
	v := &Vocabulary{
		Terms:     terms,
		DF:        make([]int, len(terms)),
		IDF:       make([]float64, len(terms)),
		Documents: len(counts),
		Scheme:    scheme,
		index:     make(map[string]int, len(terms)),
	}
	for i, term := range terms {
		d := df[term]
		v.index[term] = i
		v.DF[i] = d
		switch scheme {
		case IDFSmooth:
			v.IDF[i] = math.Log((1+n)/(1+float64(d))) + 1
		default:
			v.IDF[i] = math.Log(n / (1 + float64(d)))
		}
	}
	return v
}

func weigh(vocab *Vocabulary, counts map[string]int, length int, scheme TFScheme) SparseVector {
	if length == 0 || len(counts) == 0 {
		return SparseVector{}
	}
	idx := make([]int, 0, len(counts))
	for term := range counts {
		if i, ok := vocab.Lookup(term); ok {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	vec := SparseVector{Indices: make([]int, 0, len(idx)), Values: make([]float64, 0, len(idx))}
	for _, i := range idx {
		c := float64(counts[vocab.Terms[i]])
		var tf float64
		switch scheme {
		case TFLog:
			tf = (1 + math.Log(c)) / float64(length)
		default:
			tf = c / float64(length)
		}
		w := tf * vocab.IDF[i]
		if w == 0 {
			continue
		}
		vec.Indices = append(vec.Indices, i)
		vec.Values = append(vec.Values, w)
	}
	return vec
}
