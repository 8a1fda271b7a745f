// Package automapper guesses mapping paths for spreadsheet headers.
//
// A run walks the schema from the base table (or from a prefix the user has
// already chosen) with a bounded depth-first traversal, scores every reachable
// field against each normalized header and then either:
//   - ModeFull: picks one path per header, by score, then depth, then
//     traversal order, skipping paths other headers already hold;
//   - ModeSuggestion: returns the top candidates for each header.
//
// Headers that nothing matches well enough stay unmapped (path ["0"]).
//
// Traversals are memoized in a Cache keyed by base table, start table and
// prefix. Speculative runs (suggestions) read the cache but do not write it.
package automapper
