package match

import (
	"sort"

	"upload-mapper/internal/mapping"
)

// Candidate is a potential mapping of one header to a path.
type Candidate struct {
	Path  mapping.Path
	Score Score
	// Depth is the number of relationship hops of the path.
	Depth int
	// Order is the traversal position of the path, used as the final tie-breaker.
	Order int
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank sorts the list by score (descending), then depth, then traversal order.
func (c CandidateList) Rank() CandidateList {
	sort.Sort(c)

	return c
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	// Higher score comes first
	if c[i].Score.Value != c[j].Score.Value {
		return c[i].Score.Value > c[j].Score.Value
	}

	// Shallower paths next
	if c[i].Depth != c[j].Depth {
		return c[i].Depth < c[j].Depth
	}

	return c[i].Order < c[j].Order
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score.Value-c[1].Score.Value < threshold
}

// AboveThreshold returns candidates with a score of at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score.Value >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Distinct drops candidates whose path already appeared earlier in the list.
func (c CandidateList) Distinct() CandidateList {
	seen := make(map[string]bool, len(c))

	var result CandidateList

	for _, cand := range c {
		key := cand.Path.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		result = append(result, cand)
	}

	return result
}

// Matching thresholds.
const (
	// DefaultMinScore is the minimum score for the full automapper to accept a match.
	DefaultMinScore = 0.7
	// DefaultSuggestionMinScore is the minimum score for a suggestion.
	DefaultSuggestionMinScore = 0.5
	// DefaultSuggestionLimit is how many suggestions are offered per header.
	DefaultSuggestionLimit = 3
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.05
)
