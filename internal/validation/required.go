package validation

import (
	"errors"
	"fmt"
	"strings"

	"upload-mapper/internal/mapping"
	"upload-mapper/internal/schema"
)

// ErrUnknownTable is returned when the base table is not in the schema.
var ErrUnknownTable = errors.New("unknown table")

type requiredFinder struct {
	schema    *schema.Schema
	mustMatch map[string]bool
	missing   []mapping.Path
}

// FindMissingRequired returns the path of every required field or
// relationship the tree leaves unset. Only mapped branches are visited.
//
// A must-match table below the base table waives its own requirements, since
// an existing record is looked up rather than created; the relationship into
// it stays required. The reverse side of the relationship a table was reached
// through is never reported.
func FindMissingRequired(s *schema.Schema, baseTable string, tree *mapping.Branch, mustMatch []string) ([]mapping.Path, error) {
	base := s.Table(baseTable)
	if base == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, baseTable)
	}

	if tree == nil {
		tree = mapping.NewBranch()
	}

	f := &requiredFinder{schema: s, mustMatch: make(map[string]bool, len(mustMatch))}
	for _, name := range mustMatch {
		f.mustMatch[strings.ToLower(name)] = true
	}

	f.table(base, tree, nil, nil, nil)

	return f.missing, nil
}

func (f *requiredFinder) table(t *schema.Table, b *mapping.Branch, at mapping.Path, via *schema.Relationship, from *schema.Table) {
	if t.IsTree() {
		f.tree(t, b, at)

		return
	}

	waived := len(at) > 0 && f.mustMatch[strings.ToLower(t.Name)]

	for i := range t.Fields {
		field := &t.Fields[i]

		if _, ok := b.Child(field.Name); !ok && field.Required && !waived {
			f.report(at, field.Name)
		}
	}

	for i := range t.Relationships {
		r := &t.Relationships[i]

		if isReverse(r, via, from) {
			continue
		}

		child, ok := b.Child(r.Name)
		if !ok {
			if r.Required && !waived {
				f.report(at, r.Name)
			}

			continue
		}

		related := f.schema.Table(r.RelatedTable)

		sub, isBranch := child.(*mapping.Branch)
		if related == nil || !isBranch {
			continue
		}

		next := append(at.Clone(), r.Name)

		if !r.IsToMany() {
			f.table(related, sub, next, r, t)

			continue
		}

		for _, key := range sub.Keys() {
			if !mapping.IsIndex(key) {
				continue
			}

			record, _ := sub.Child(key)
			if rb, ok := record.(*mapping.Branch); ok {
				f.table(related, rb, append(next.Clone(), key), r, t)
			}
		}
	}
}

// tree checks the required fields of every mapped rank.
func (f *requiredFinder) tree(t *schema.Table, b *mapping.Branch, at mapping.Path) {
	if len(at) > 0 && f.mustMatch[strings.ToLower(t.Name)] {
		return
	}

	for _, rank := range t.Ranks {
		child, ok := b.Child(mapping.FormatRank(rank))
		if !ok {
			continue
		}

		rb, ok := child.(*mapping.Branch)
		if !ok {
			continue
		}

		next := append(at.Clone(), mapping.FormatRank(rank))

		for i := range t.Fields {
			if _, mapped := rb.Child(t.Fields[i].Name); !mapped && t.Fields[i].Required {
				f.report(next, t.Fields[i].Name)
			}
		}
	}
}

func (f *requiredFinder) report(at mapping.Path, token string) {
	f.missing = append(f.missing, append(at.Clone(), token))
}

// isReverse reports whether r leads back along the relationship the current
// table was entered through.
func isReverse(r, via *schema.Relationship, from *schema.Table) bool {
	if via == nil || from == nil || !strings.EqualFold(r.RelatedTable, from.Name) {
		return false
	}

	return (via.OtherSideName != "" && strings.EqualFold(via.OtherSideName, r.Name)) ||
		(r.OtherSideName != "" && strings.EqualFold(r.OtherSideName, via.Name))
}
