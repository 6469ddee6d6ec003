package tree

import "docnav/internal/scan"

// Expansion is the set of directory paths currently considered open.
// Operations return a new value and leave the receiver untouched, so an
// Expansion handed to a renderer stays valid while a newer one is built.
// Membership is independent per directory: collapsing an ancestor hides
// its descendants without clearing their membership, and visibility is
// always derived by walking the ancestor chain.
type Expansion map[string]struct{}

// NewExpansion returns an empty expansion set.
func NewExpansion() Expansion {
	return Expansion{}
}

// Contains reports whether the directory path is open.
func (e Expansion) Contains(path string) bool {
	_, ok := e[path]
	return ok
}

// Toggle flips the membership of exactly one path. Toggling the same
// path twice restores the original set.
func (e Expansion) Toggle(path string) Expansion {
	next := e.clone(len(e) + 1)
	if e.Contains(path) {
		delete(next, path)
	} else {
		next[path] = struct{}{}
	}
	return next
}

// EnsureOpen returns the union of the set and the given paths. It never
// removes a member.
func (e Expansion) EnsureOpen(paths ...string) Expansion {
	next := e.clone(len(e) + len(paths))
	for _, p := range paths {
		next[p] = struct{}{}
	}
	return next
}

func (e Expansion) clone(capacity int) Expansion {
	next := make(Expansion, capacity)
	for p := range e {
		next[p] = struct{}{}
	}
	return next
}

// AncestorsOf returns the directory paths a file's visibility depends
// on: the cumulative slash-joined prefixes of every segment of its
// relative path except the last.
func AncestorsOf(relPath string) []string {
	segs := Segments(relPath)
	if len(segs) < 2 {
		return nil
	}

	ancestors := make([]string, 0, len(segs)-1)
	prefix := ""
	for _, seg := range segs[:len(segs)-1] {
		prefix = joinPath(prefix, seg)
		ancestors = append(ancestors, prefix)
	}
	return ancestors
}

// OnSelect force-opens the ancestor chain of a newly selected file. It
// only ever grows the set; directories outside the file's ancestry are
// left as they were.
func OnSelect(state Expansion, selected scan.FileRecord) Expansion {
	return state.EnsureOpen(AncestorsOf(selected.RelPath)...)
}
