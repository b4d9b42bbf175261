package scoring

import (
	"errors"
	"fmt"
	"math"

	"go-jobmatch-backend/internal/domain"
)

var ErrInvalidBands = errors.New("scoring: invalid match bands")

// Band maps every score >= Min (and below the next band up) to Label.
type Band struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
}

// DefaultBands are ordered from best to worst.
func DefaultBands() []Band {
	return []Band{
		{Label: domain.MatchExcellent, Min: 0.50},
		{Label: domain.MatchStrong, Min: 0.35},
		{Label: domain.MatchGood, Min: 0.25},
		{Label: domain.MatchModerate, Min: 0.15},
		{Label: domain.MatchWeak, Min: 0.08},
		{Label: domain.MatchNone, Min: 0},
	}
}

// Classifier maps similarity scores to match quality labels.
type Classifier struct {
	bands []Band
}

// NewClassifier validates bands and returns a classifier over them. Bands
// must be listed best first with strictly decreasing thresholds and strictly
// worsening labels, and the last band must be the No Match floor at 0. This
// keeps classification total and monotonic over [0, 1].
func NewClassifier(bands []Band) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	prevRank := -1
	prevMin := math.Inf(1)
	for i, b := range bands {
		rank := LabelRank(b.Label)
		if rank < 0 {
			return nil, fmt.Errorf("%w: unknown label %q", ErrInvalidBands, b.Label)
		}
		if rank <= prevRank {
			return nil, fmt.Errorf("%w: label %q out of order at position %d", ErrInvalidBands, b.Label, i)
		}
		if math.IsNaN(b.Min) || b.Min >= prevMin {
			return nil, fmt.Errorf("%w: threshold %v for %q is not below the previous band", ErrInvalidBands, b.Min, b.Label)
		}
		prevRank, prevMin = rank, b.Min
	}
	last := bands[len(bands)-1]
	if last.Label != domain.MatchNone || last.Min != 0 {
		return nil, fmt.Errorf("%w: last band must be %q at 0", ErrInvalidBands, domain.MatchNone)
	}
	return &Classifier{bands: append([]Band(nil), bands...)}, nil
}

// MustClassifier is NewClassifier for bands known to be valid.
func MustClassifier(bands []Band) *Classifier {
	c, err := NewClassifier(bands)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the label for score. NaN and negative scores are No Match.
func (c *Classifier) Classify(score float64) string {
	if math.IsNaN(score) {
		return domain.MatchNone
	}
	for _, b := range c.bands {
		if score >= b.Min {
			return b.Label
		}
	}
	return domain.MatchNone
}

func (c *Classifier) Bands() []Band {
	return append([]Band(nil), c.bands...)
}

// LabelRank returns 0 for the best label and increases as labels worsen.
// Unknown labels return -1.
func LabelRank(label string) int {
	for i, l := range domain.MatchLabels {
		if l == label {
			return i
		}
	}
	return -1
}
