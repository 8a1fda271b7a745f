// Package navigator walks mapping paths through a schema.
//
// From a base table it enumerates the tokens legal after any prefix: fields
// and relationships of ordinary tables, "#n" indices (plus the "add"
// affordance) after to-many relationships, and "$Rank" tokens for tree
// tables. It also produces the per-depth picklists of a mapping line and a
// bounded depth-first traversal used by the automapper.
//
// Cycles in the schema graph (self-references, reverse relationships) are
// bounded per branch by a Trail and a hop budget rather than by a global
// visited set, so the same table may appear on different branches.
package navigator
