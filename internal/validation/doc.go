// Package validation checks a mapping for completeness and consistency.
//
// FindMissingRequired lists the required fields and relationships a mapping
// leaves unset. CheckLines reports per-line problems (paths that do not
// resolve, incomplete paths, duplicates) together with the missing required
// paths as diagnostics.
package validation
