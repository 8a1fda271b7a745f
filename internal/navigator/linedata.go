package navigator

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"upload-mapper/internal/mapping"
)

// Icon is a rendering hint for a picklist option.
type Icon string

const (
	IconField        Icon = "field"
	IconRelationship Icon = "relationship"
	IconToMany       Icon = "toMany"
	IconTree         Icon = "tree"
	IconIndex        Icon = "index"
	IconRank         Icon = "rank"
	IconAdd          Icon = "add"
)

// LineOption is an Option as shown in one picklist of a mapping line.
type LineOption struct {
	Option

	Icon Icon
	// Enabled is false for fields another line already maps under the same prefix.
	Enabled bool
	// AlreadyMapped is set when some line maps this field under the same prefix.
	AlreadyMapped bool
	// Selected marks the token the line's path holds at this depth.
	Selected bool
}

// LineDataEntry is the picklist for one depth of a mapping line.
type LineDataEntry struct {
	Depth int
	// Table is the table whose tokens are listed.
	Table string
	// Prefix is the part of the path before this picklist.
	Prefix mapping.Path
	// Selected is the token the path holds at this depth, "0" if none.
	Selected string
	Options  []LineOption
}

// LineData builds one picklist per depth of path. tree is the mapping tree of
// all lines and decides which fields are already taken.
func (n *Navigator) LineData(baseTable string, path mapping.Path, tree *mapping.Branch) ([]LineDataEntry, error) {
	pos, err := n.Start(baseTable)
	if err != nil {
		return nil, err
	}

	var entries []LineDataEntry

	for depth := 0; ; depth++ {
		prefix := path[:min(depth, len(path))].Clone()

		selected := mapping.Unmapped
		if depth < len(path) {
			selected = path[depth]
		}

		existing := mapping.Subtree(tree, prefix)
		options := n.Options(pos, existing)

		entry := LineDataEntry{
			Depth:    depth,
			Table:    pos.Table.Name,
			Prefix:   prefix,
			Selected: selected,
			Options:  make([]LineOption, 0, len(options)),
		}

		for _, opt := range options {
			entry.Options = append(entry.Options, lineOption(opt, existing, selected))
		}

		entries = append(entries, entry)

		if selected == mapping.Unmapped {
			return entries, nil
		}

		step, next, err := n.Advance(pos, selected)
		if err != nil {
			return nil, err
		}

		if step.Kind.IsTerminal() {
			return entries, nil
		}

		pos = next
	}
}

func lineOption(opt Option, existing *mapping.Branch, selected string) LineOption {
	lo := LineOption{
		Option:   opt,
		Icon:     iconFor(opt),
		Enabled:  true,
		Selected: strings.EqualFold(opt.Token, selected),
	}

	if opt.Kind == KindField {
		if child, ok := existing.Child(opt.Token); ok {
			if _, isLeaf := child.(*mapping.Leaf); isLeaf {
				lo.AlreadyMapped = true
				lo.Enabled = lo.Selected
			}
		}
	}

	return lo
}

func iconFor(opt Option) Icon {
	switch opt.Kind {
	case KindField:
		return IconField
	case KindRelationship:
		if opt.IsTree {
			return IconTree
		}

		return IconRelationship
	case KindToMany:
		return IconToMany
	case KindIndex:
		return IconIndex
	case KindAddIndex:
		return IconAdd
	case KindRank:
		return IconRank
	default:
		return IconField
	}
}

type searchable interface {
	searchKeys() (label, token string)
}

// FilterOptions narrows a picklist to the options fuzzily matching query,
// best match first. Labels are searched before tokens. An empty query keeps
// every option in its original order.
func FilterOptions[T searchable](options []T, query string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]T{}, options...)
	}

	labels := make([]string, len(options))
	tokens := make([]string, len(options))

	for i, opt := range options {
		labels[i], tokens[i] = opt.searchKeys()
	}

	seen := make(map[int]bool, len(options))

	var out []T

	for _, targets := range [][]string{labels, tokens} {
		ranks := fuzzy.RankFindNormalizedFold(query, targets)
		sort.Stable(ranks)

		for _, r := range ranks {
			if seen[r.OriginalIndex] {
				continue
			}

			seen[r.OriginalIndex] = true
			out = append(out, options[r.OriginalIndex])
		}
	}

	return out
}
