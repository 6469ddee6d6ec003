package tree

import (
	"strings"

	"docnav/internal/scan"
)

// Node represents a single entry in the documentation tree. It is a
// tagged variant: directory nodes carry Children keyed by segment name,
// leaf nodes carry the record they were built from. A leaf's Path is its
// record's Path, so leaf identity stays stable however the relative path
// was segmented; a directory's Path is the slash-joined prefix of
// segments leading to it.
type Node struct {
	Name  string
	Path  string
	IsDir bool

	Children map[string]*Node
	Record   *scan.FileRecord
}

// NewRoot creates the distinguished root directory. It exists even when
// no files were supplied.
func NewRoot() *Node {
	return newDir("", "")
}

func newDir(name, path string) *Node {
	return &Node{
		Name:     name,
		Path:     path,
		IsDir:    true,
		Children: make(map[string]*Node),
	}
}

// Segments splits a relative path on any run of forward or backward
// slashes, dropping the empty elements produced by leading, trailing or
// repeated separators. A string without separators yields one segment.
func Segments(relPath string) []string {
	return strings.FieldsFunc(relPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// Find walks relPath segment by segment from the root and returns the
// node it lands on, or nil when any segment is missing.
func Find(root *Node, relPath string) *Node {
	current := root
	for _, seg := range Segments(relPath) {
		if !current.IsDir {
			return nil
		}
		child, ok := current.Children[seg]
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

func joinPath(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "/" + segment
}
