// Package uploadplan converts mapping trees to and from upload plans.
//
// An upload plan is the JSON document the uploader consumes. It mirrors the
// mapping tree, but groups the mapped fields of each table into column
// definitions (wbcols) and literal values (static), and nests related tables
// under toOne, toMany and, for tree tables, treeRecord ranks.
//
// Keys are written in lowercase; lookups against the schema are
// case-insensitive, so hand-edited plans may use any case.
package uploadplan
