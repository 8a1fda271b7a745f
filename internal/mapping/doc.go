// Package mapping provides mapping paths, mapping lines and the mapping tree
// codec used by the workbench mapping screen.
//
// # Paths
//
// A Path is an ordered list of tokens, each one of:
//   - a field or relationship name: "catalogNumber", "collectingEvent"
//   - a to-many index: "#1", "#2"
//   - a tree rank: "$Species"
//   - the unmapped marker "0" (last token only)
//
// The text form joins tokens with dots:
//
//	collectingEvent.collectors.#1.agent.lastName
//	determinations.#1.taxon.$Species.name
//
// # Lines
//
// A Line binds one spreadsheet header (or a synthetic new/static column) to a
// Path, together with its ColumnOptions.
//
// # Trees
//
// Every complete path of every line merges into one Tree:
//
//	Node = *Leaf (binding) | *Branch (ordered token -> Node)
//
// PathsToTree and TreeToPaths are exact inverses for non-colliding paths.
// A Leaf meeting a Branch, or two distinct bindings on one Leaf, is reported
// as ErrConflictingMapping instead of being merged silently.
//
// # Sessions
//
// A Session is the YAML form of a mapping in progress. Paths may be written in
// the dotted text form or as token sequences; omitted kinds and options take
// their defaults:
//
//	version: "1"
//	baseTable: CollectionObject
//	mustMatch: [preptype]
//	lines:
//	  - header: Catalog Number
//	    path: catalogNumber
//	  - header: Count
//	    kind: static
//	    value: "1"
//	    path: [countAmt]
package mapping
