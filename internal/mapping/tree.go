package mapping

import (
	"errors"
	"fmt"
)

// ErrConflictingMapping is returned when two mappings cannot share one tree.
var ErrConflictingMapping = errors.New("conflicting mapping")

// ErrIncompletePath is returned when an incomplete path is turned into a tree.
var ErrIncompletePath = errors.New("incomplete mapping path")

// ConflictError reports where MergeTrees found incompatible nodes.
type ConflictError struct {
	Path   Path
	Reason string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting mapping at %q: %s", e.Path.String(), e.Reason)
}

// Is makes errors.Is(err, ErrConflictingMapping) hold.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictingMapping
}

// Node is either a *Leaf or a *Branch.
type Node interface {
	node()
}

// Leaf terminates a complete path. Binding is nil when headers are excluded.
type Leaf struct {
	Binding *Binding
}

// Branch maps tokens to child nodes, preserving insertion order.
type Branch struct {
	keys     []string
	children map[string]Node
}

func (*Leaf) node()   {}
func (*Branch) node() {}

// NewBranch creates an empty branch.
func NewBranch() *Branch {
	return &Branch{children: make(map[string]Node)}
}

// Keys returns the tokens of the branch in insertion order.
func (b *Branch) Keys() []string {
	if b == nil {
		return nil
	}

	return append([]string{}, b.keys...)
}

// Child returns the node under token.
func (b *Branch) Child(token string) (Node, bool) {
	if b == nil {
		return nil, false
	}

	n, ok := b.children[token]

	return n, ok
}

// Len returns the number of children.
func (b *Branch) Len() int {
	if b == nil {
		return 0
	}

	return len(b.keys)
}

// IsEmpty reports whether the branch has no children.
func (b *Branch) IsEmpty() bool {
	return b.Len() == 0
}

// Set adds or replaces a child. Used while building trees; finished trees are treated as immutable.
func (b *Branch) Set(token string, n Node) {
	if b.children == nil {
		b.children = make(map[string]Node)
	}

	if _, ok := b.children[token]; !ok {
		b.keys = append(b.keys, token)
	}

	b.children[token] = n
}

// Clone deep-copies a node.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Leaf:
		if v.Binding == nil {
			return &Leaf{}
		}

		b := *v.Binding

		return &Leaf{Binding: &b}
	case *Branch:
		return cloneBranch(v)
	default:
		return nil
	}
}

func cloneBranch(b *Branch) *Branch {
	out := NewBranch()
	if b == nil {
		return out
	}

	for _, k := range b.keys {
		out.Set(k, Clone(b.children[k]))
	}

	return out
}

// PathToChain builds a single-branch tree from one complete path.
// The leaf under the final token holds the binding, or nil if headers are excluded.
func PathToChain(path Path, binding *Binding) (*Branch, error) {
	if !path.IsComplete() {
		return nil, fmt.Errorf("%w: %q", ErrIncompletePath, path.String())
	}

	root := NewBranch()
	current := root

	for i, token := range path {
		if i == len(path)-1 {
			current.Set(token, &Leaf{Binding: binding})

			break
		}

		next := NewBranch()
		current.Set(token, next)
		current = next
	}

	return root, nil
}

// MergeTrees returns the union of two trees. Neither input is modified.
// A Leaf meeting a Branch, or two Leafs bound to different columns, is a
// *ConflictError.
func MergeTrees(target, source *Branch) (*Branch, error) {
	out := cloneBranch(target)
	if err := mergeInto(out, source, nil); err != nil {
		return nil, err
	}

	return out, nil
}

func mergeInto(target, source *Branch, prefix Path) error {
	if source == nil {
		return nil
	}

	for _, key := range source.keys {
		src := source.children[key]
		at := append(prefix.Clone(), key)

		existing, ok := target.children[key]
		if !ok {
			target.Set(key, Clone(src))

			continue
		}

		switch dst := existing.(type) {
		case *Branch:
			srcBranch, isBranch := src.(*Branch)
			if !isBranch {
				return &ConflictError{Path: at, Reason: "field mapped where a relationship is already mapped"}
			}

			if err := mergeInto(dst, srcBranch, at); err != nil {
				return err
			}
		case *Leaf:
			srcLeaf, isLeaf := src.(*Leaf)
			if !isLeaf {
				return &ConflictError{Path: at, Reason: "relationship mapped where a field is already mapped"}
			}

			if !dst.Binding.Equal(srcLeaf.Binding) {
				return &ConflictError{
					Path:   at,
					Reason: fmt.Sprintf("%s and %s share one field", dst.Binding, srcLeaf.Binding),
				}
			}
		}
	}

	return nil
}

// MappedPath is a flattened tree entry.
type MappedPath struct {
	Path    Path
	Binding *Binding
}

// PathsToTree merges complete paths into one tree without bindings.
// Incomplete paths are skipped.
func PathsToTree(paths []Path) (*Branch, error) {
	mapped := make([]MappedPath, 0, len(paths))
	for _, p := range paths {
		mapped = append(mapped, MappedPath{Path: p})
	}

	return MappedPathsToTree(mapped)
}

// MappedPathsToTree merges complete paths with their bindings into one tree.
// Incomplete paths are skipped.
func MappedPathsToTree(paths []MappedPath) (*Branch, error) {
	tree := NewBranch()

	for _, mp := range paths {
		if !mp.Path.IsComplete() {
			continue
		}

		chain, err := PathToChain(mp.Path, mp.Binding)
		if err != nil {
			return nil, err
		}

		if err := mergeInto(tree, chain, nil); err != nil {
			return nil, err
		}
	}

	return tree, nil
}

// LinesToTree merges every mapped line into a tree with its binding.
func LinesToTree(lines []Line) (*Branch, error) {
	paths := make([]MappedPath, 0, len(lines))
	for i := range lines {
		if lines[i].IsMapped() {
			paths = append(paths, MappedPath{Path: lines[i].Path, Binding: lines[i].Binding()})
		}
	}

	return MappedPathsToTree(paths)
}

// TreeToPaths flattens a tree depth-first. It is the inverse of MappedPathsToTree.
func TreeToPaths(tree *Branch) []MappedPath {
	var out []MappedPath

	flatten(tree, nil, &out)

	return out
}

// TreeToPathList flattens a tree and drops the bindings.
func TreeToPathList(tree *Branch) []Path {
	mapped := TreeToPaths(tree)

	out := make([]Path, len(mapped))
	for i := range mapped {
		out[i] = mapped[i].Path
	}

	return out
}

func flatten(b *Branch, prefix Path, out *[]MappedPath) {
	if b == nil {
		return
	}

	for _, key := range b.keys {
		at := append(prefix.Clone(), key)

		switch n := b.children[key].(type) {
		case *Leaf:
			*out = append(*out, MappedPath{Path: at, Binding: n.Binding})
		case *Branch:
			flatten(n, at, out)
		}
	}
}

// Subtree returns the part of the tree below prefix. The result is empty when
// the prefix is absent or runs into a Leaf before it is exhausted.
func Subtree(tree *Branch, prefix Path) *Branch {
	current := tree

	for _, token := range prefix {
		child, ok := current.Child(token)
		if !ok {
			return NewBranch()
		}

		next, isBranch := child.(*Branch)
		if !isBranch {
			return NewBranch()
		}

		current = next
	}

	return cloneBranch(current)
}

// Equal reports whether two nodes have the same shape and bindings, ignoring key order.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Leaf:
		y, ok := b.(*Leaf)

		return ok && x.Binding.Equal(y.Binding)
	case *Branch:
		y, ok := b.(*Branch)
		if !ok || x.Len() != y.Len() {
			return false
		}

		if x.Len() == 0 {
			return true
		}

		for _, k := range x.keys {
			other, found := y.children[k]
			if !found || !Equal(x.children[k], other) {
				return false
			}
		}

		return true
	default:
		return a == nil && b == nil
	}
}

// TreeToLines creates one line per leaf, in depth-first order.
func TreeToLines(tree *Branch) []Line {
	mapped := TreeToPaths(tree)

	lines := make([]Line, 0, len(mapped))
	for _, mp := range mapped {
		lines = append(lines, LineFromBinding(mp.Path, mp.Binding))
	}

	return lines
}
