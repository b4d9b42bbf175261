package scoring

import (
	"sort"

	"go-jobmatch-backend/internal/domain"
)

// TopTerms returns up to k shared terms with the largest contribution to the
// dot product of cv and job. Ties are broken alphabetically.
func TopTerms(vocab *Vocabulary, cv, job SparseVector, k int) []domain.TermContribution {
	if k <= 0 {
		return nil
	}
	var terms []domain.TermContribution
	i, j := 0, 0
	for i < len(cv.Indices) && j < len(job.Indices) {
		switch {
		case cv.Indices[i] == job.Indices[j]:
			if c := cv.Values[i] * job.Values[j]; c > 0 {
				terms = append(terms, domain.TermContribution{
					Term:         vocab.Terms[cv.Indices[i]],
					Contribution: c,
				})
			}
			i++
			j++
		case cv.Indices[i] < job.Indices[j]:
			i++
		default:
			j++
		}
	}
	sort.Slice(terms, func(a, b int) bool {
		if terms[a].Contribution != terms[b].Contribution {
			return terms[a].Contribution > terms[b].Contribution
		}
		return terms[a].Term < terms[b].Term
	})
	if len(terms) > k {
		terms = terms[:k]
	}
	return terms
}
