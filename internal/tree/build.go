package tree

import "docnav/internal/scan"

// Build folds a flat record list into a rooted tree. Directory nodes are
// created on demand and shared between files with a common path prefix,
// so the result depends only on the input list, with one exception: two
// records landing on the same parent directory and leaf name collide,
// and the later record in input order wins. Build never mutates a tree
// it returned earlier; callers may keep old trees as snapshots.
func Build(files []scan.FileRecord) *Node {
	root := NewRoot()
	for _, file := range files {
		insert(root, file)
	}
	return root
}

func insert(root *Node, file scan.FileRecord) {
	segs := Segments(file.RelPath)

	leafName := file.Name
	if len(segs) > 0 {
		leafName = segs[len(segs)-1]
		segs = segs[:len(segs)-1]
	}

	current := root
	prefix := ""
	for _, seg := range segs {
		prefix = joinPath(prefix, seg)
		child, ok := current.Children[seg]
		if !ok || !child.IsDir {
			child = newDir(seg, prefix)
			current.Children[seg] = child
		}
		current = child
	}

	rec := file
	current.Children[leafName] = &Node{
		Name:   leafName,
		Path:   rec.Path,
		Record: &rec,
	}
}
