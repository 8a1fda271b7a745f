package navigator

//go:generate go tool stringer -type=Kind -trimprefix=Kind

// Kind classifies a token that may follow a mapping path prefix.
type Kind int

const (
	// KindField is a scalar field of the current table.
	KindField Kind = iota + 1
	// KindRelationship is a to-one relationship.
	KindRelationship
	// KindToMany is a to-many relationship; it must be followed by an index.
	KindToMany
	// KindIndex is an existing "#n" instance of a to-many relationship.
	KindIndex
	// KindAddIndex is the "add" affordance that creates the next free index.
	KindAddIndex
	// KindRank is a "$Rank" level of a tree table.
	KindRank
)

// IsTerminal reports whether a path ends after a token of this kind.
func (k Kind) IsTerminal() bool {
	return k == KindField
}
