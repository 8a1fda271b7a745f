// Package match provides header normalization, Levenshtein distance, synonym
// tables and candidate ranking for matching spreadsheet headers to schema fields.
//
// Key functions:
//   - NormalizeHeader: case-folds and tokenizes a header, extracting index hints
//   - ScoreHeader: scores a header against one field target (exact, contextual, alias, substring)
//   - Levenshtein: computes edit distance between strings
//   - CandidateList: ranks candidate paths by score, depth and traversal order
package match
