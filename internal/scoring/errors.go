package scoring

import "errors"

var (
	ErrInvalidProfile = errors.New("scoring: candidate profile is empty")
	ErrEmptyCorpus    = errors.New("scoring: job corpus is empty")
	ErrCorpusTooLarge = errors.New("scoring: job corpus exceeds limit")
	ErrBudgetExceeded = errors.New("scoring: computation budget exceeded")
)
