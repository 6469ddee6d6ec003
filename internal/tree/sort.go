package tree

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter produces the display order of a directory's children:
// directories first, then files, each group ascending by name under a
// case-insensitive collation. The order is recomputed per call and never
// stored on a node.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter creates a sorter using the default locale-neutral collation.
func NewSorter() *Sorter {
	return &Sorter{collator: collate.New(language.Und, collate.IgnoreCase)}
}

// Ordered returns the children as a deterministically ordered slice.
func (s *Sorter) Ordered(children map[string]*Node) []*Node {
	nodes := make([]*Node, 0, len(children))
	for _, child := range children {
		nodes = append(nodes, child)
	}
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		switch s.collator.CompareString(a.Name, b.Name) {
		case -1:
			return true
		case 1:
			return false
		default:
			return a.Name < b.Name
		}
	})
	return nodes
}
