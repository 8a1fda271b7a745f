// Package schema holds the static description of the data model that columns
// are mapped into.
//
// It is loaded once (from YAML or JSON) and treated as read-only afterwards;
// callers pass the *Schema explicitly to every navigator, automapper and codec
// call.
//
// Key types:
//   - Table: fields, relationships and, for hierarchical tables, rank names
//   - Field: scalar column with required flag and synonyms
//   - Relationship: link to another table, to-one or to-many
package schema
