package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"docnav/internal/scan"
	"docnav/internal/tree"
)

func newTreeState(records []scan.FileRecord) State {
	return State{
		TreeVisible: true,
		Records:     records,
		DisplayRoot: "docs",
		FocusTree:   true,
	}
}

func flatPaths(m *Model) []string {
	paths := make([]string, len(m.flatTree))
	for i, line := range m.flatTree {
		paths[i] = line.node.Path
	}
	return paths
}

func TestFlatTreeStartsCollapsed(t *testing.T) {
	as := require.New(t)

	m := NewModel(newTreeState([]scan.FileRecord{
		{Path: "/r/b/c.md", RelPath: "b/c.md", Name: "c.md"},
		{Path: "/r/d.md", RelPath: "d.md", Name: "d.md"},
	}))

	as.Equal([]string{"", "b", "/r/d.md"}, flatPaths(m))
	as.Equal("docs/", m.flatTree[0].label)
	as.Equal("+ b/", m.flatTree[1].label)
	as.Equal("  d.md", m.flatTree[2].label)
}

func TestToggleRevealsAndHidesChildren(t *testing.T) {
	as := require.New(t)

	m := NewModel(newTreeState([]scan.FileRecord{
		{Path: "/r/b/c.md", RelPath: "b/c.md", Name: "c.md"},
		{Path: "/r/d.md", RelPath: "d.md", Name: "d.md"},
	}))

	m.treeSelection = 1
	as.Nil(m.openOrDescend())
	as.Equal([]string{"", "b", "/r/b/c.md", "/r/d.md"}, flatPaths(m))
	as.Equal("- b/", m.flatTree[1].label)

	m.closeOrAscend()
	as.Equal([]string{"", "b", "/r/d.md"}, flatPaths(m))
	as.Equal("+ b/", m.flatTree[1].label)
}

func TestDescendantExpansionSurvivesAncestorCollapse(t *testing.T) {
	as := require.New(t)

	m := NewModel(newTreeState([]scan.FileRecord{
		{Path: "/r/a/b/c.md", RelPath: "a/b/c.md", Name: "c.md"},
	}))

	m.expansion = m.expansion.EnsureOpen("a", "a/b")
	m.refreshTreeSelecting("")
	as.Equal([]string{"", "a", "a/b", "/r/a/b/c.md"}, flatPaths(m))

	// Collapsing the ancestor hides the subtree without clearing the
	// descendant's membership.
	m.expansion = m.expansion.Toggle("a")
	m.refreshTreeSelecting("")
	as.Equal([]string{"", "a"}, flatPaths(m))
	as.True(m.expansion.Contains("a/b"))

	m.expansion = m.expansion.Toggle("a")
	m.refreshTreeSelecting("")
	as.Equal([]string{"", "a", "a/b", "/r/a/b/c.md"}, flatPaths(m))
}

func TestOrderedSiblingsDirectoriesFirst(t *testing.T) {
	as := require.New(t)

	m := NewModel(newTreeState([]scan.FileRecord{
		{Path: "/r/zeta.md", RelPath: "zeta.md", Name: "zeta.md"},
		{Path: "/r/api/a.md", RelPath: "api/a.md", Name: "a.md"},
		{Path: "/r/Alpha.md", RelPath: "Alpha.md", Name: "Alpha.md"},
	}))

	as.Equal([]string{"", "api", "/r/Alpha.md", "/r/zeta.md"}, flatPaths(m))
}

func TestOpenFileSyncsExpansionToSelection(t *testing.T) {
	as := require.New(t)

	root := t.TempDir()
	abs := filepath.Join(root, "b", "c.md")
	as.NoError(os.MkdirAll(filepath.Dir(abs), 0o755))
	as.NoError(os.WriteFile(abs, []byte("# c\n"), 0o644))

	m := NewModel(newTreeState([]scan.FileRecord{
		{Path: abs, RelPath: "b/c.md", Name: "c.md"},
	}))

	leaf := tree.Find(m.treeRoot, "b/c.md")
	as.NotNil(leaf)

	cmd := m.openFileEntry(leaf)
	as.NotNil(cmd)
	as.NoError(m.err)
	as.Equal(abs, m.activeAbsPath)
	as.True(m.expansion.Contains("b"))
	as.Equal(abs, m.currentTreeEntry().Path)
}

func TestSelectedRelSeedsExpansionAndCursor(t *testing.T) {
	as := require.New(t)

	state := newTreeState([]scan.FileRecord{
		{Path: "/r/a/b/c.md", RelPath: "a/b/c.md", Name: "c.md"},
		{Path: "/r/top.md", RelPath: "top.md", Name: "top.md"},
	})
	state.SelectedRel = "a/b/c.md"

	m := NewModel(state)
	as.True(m.expansion.Contains("a"))
	as.True(m.expansion.Contains("a/b"))
	as.Equal("/r/a/b/c.md", m.currentTreeEntry().Path)
}

func TestRescanPreservesExpansionAndCursor(t *testing.T) {
	as := require.New(t)

	root := t.TempDir()
	write := func(rel string) scan.FileRecord {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		as.NoError(os.MkdirAll(filepath.Dir(abs), 0o755))
		as.NoError(os.WriteFile(abs, []byte("# doc\n"), 0o644))
		return scan.FileRecord{Path: abs, RelPath: rel, Name: filepath.Base(rel)}
	}
	first := write("guide/one.md")

	state := newTreeState([]scan.FileRecord{first})
	state.Scanner = scan.New(root)
	m := NewModel(state)

	m.expansion = m.expansion.EnsureOpen("guide")
	m.refreshTreeSelecting("guide")

	write("guide/two.md")
	m.rescan()

	as.NoError(m.err)
	as.True(m.expansion.Contains("guide"))
	as.Equal("guide", m.currentTreeEntry().Path)

	paths := flatPaths(m)
	as.Contains(paths, filepath.Join(root, "guide", "one.md"))
	as.Contains(paths, filepath.Join(root, "guide", "two.md"))
}

func TestParentPathOf(t *testing.T) {
	as := require.New(t)

	m := NewModel(newTreeState([]scan.FileRecord{
		{Path: "/r/a/b/c.md", RelPath: "a/b/c.md", Name: "c.md"},
		{Path: "/r/top.md", RelPath: "top.md", Name: "top.md"},
	}))

	as.Equal("a", m.parentPathOf(tree.Find(m.treeRoot, "a/b")))
	as.Equal("a/b", m.parentPathOf(tree.Find(m.treeRoot, "a/b/c.md")))
	as.Equal("", m.parentPathOf(tree.Find(m.treeRoot, "a")))
	as.Equal("", m.parentPathOf(tree.Find(m.treeRoot, "top.md")))
}
