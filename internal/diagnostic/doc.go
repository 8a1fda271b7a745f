// Package diagnostic provides structured errors, warnings and notes about
// mapping lines.
//
// Key capabilities:
//   - Invalid and incomplete path reports
//   - Duplicate and conflicting mapping reports
//   - Missing required field reports with the path to map
package diagnostic
