package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docnav/internal/scan"
	"docnav/internal/tree"
)

func TestSegments(t *testing.T) {
	as := require.New(t)

	as.Equal([]string{"docs", "guide", "intro.md"}, tree.Segments("docs/guide/intro.md"))
	as.Equal([]string{"docs", "intro.md"}, tree.Segments(`docs\intro.md`))
	as.Equal([]string{"docs", "intro.md"}, tree.Segments("//docs///intro.md/"))
	as.Equal([]string{"intro.md"}, tree.Segments("intro.md"))
	as.Empty(tree.Segments(""))
	as.Empty(tree.Segments("///"))
}

func TestBuildNestedAndTopLevel(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/root/b/c.md", RelPath: "b/c.md", Name: "c.md"},
		{Path: "/root/d.md", RelPath: "d.md", Name: "d.md"},
	}

	root := tree.Build(files)
	as.Len(root.Children, 2)

	dir := root.Children["b"]
	as.NotNil(dir)
	as.True(dir.IsDir)
	as.Equal("b", dir.Path)
	as.Len(dir.Children, 1)

	leaf := dir.Children["c.md"]
	as.NotNil(leaf)
	as.False(leaf.IsDir)
	as.Equal("/root/b/c.md", leaf.Path)
	as.NotNil(leaf.Record)
	as.Equal("b/c.md", leaf.Record.RelPath)

	top := root.Children["d.md"]
	as.NotNil(top)
	as.False(top.IsDir)
	as.Equal("/root/d.md", top.Path)
}

func TestBuildSharesDirectoryPrefixes(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/r/a/b/one.md", RelPath: "a/b/one.md", Name: "one.md"},
		{Path: "/r/a/b/two.md", RelPath: "a/b/two.md", Name: "two.md"},
		{Path: "/r/a/three.md", RelPath: "a/three.md", Name: "three.md"},
	}

	root := tree.Build(files)
	as.Len(root.Children, 1)

	a := root.Children["a"]
	as.NotNil(a)
	as.Equal("a", a.Path)
	as.Len(a.Children, 2)

	b := a.Children["b"]
	as.NotNil(b)
	as.True(b.IsDir)
	as.Equal("a/b", b.Path)
	as.Len(b.Children, 2)
	as.NotNil(b.Children["one.md"])
	as.NotNil(b.Children["two.md"])
}

func TestBuildEveryRecordBecomesLeaf(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/r/x.md", RelPath: "x.md", Name: "x.md"},
		{Path: "/r/d/y.md", RelPath: "d/y.md", Name: "y.md"},
		{Path: "/r/d/e/z.md", RelPath: "d/e/z.md", Name: "z.md"},
	}

	root := tree.Build(files)

	seen := map[string]int{}
	var walk func(*tree.Node)
	walk = func(n *tree.Node) {
		if !n.IsDir {
			seen[n.Path]++
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	as.Len(seen, len(files))
	for _, f := range files {
		as.Equal(1, seen[f.Path], "expected exactly one leaf for %s", f.Path)
	}
}

func TestBuildCollisionLastWins(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/first/b/c.md", RelPath: "b/c.md", Name: "c.md"},
		{Path: "/second/b/c.md", RelPath: "b/c.md", Name: "c.md"},
	}

	root := tree.Build(files)
	dir := root.Children["b"]
	as.NotNil(dir)
	as.Len(dir.Children, 1)
	as.Equal("/second/b/c.md", dir.Children["c.md"].Path)
}

func TestBuildSeparatorVariance(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/r/a/b.md", RelPath: `a\b.md`, Name: "b.md"},
	}

	root := tree.Build(files)
	a := root.Children["a"]
	as.NotNil(a)
	as.True(a.IsDir)
	as.NotNil(a.Children["b.md"])
	as.Equal("/r/a/b.md", a.Children["b.md"].Path)
}

func TestBuildEmptyRelPathFallsBackToName(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/r/readme.md", RelPath: "", Name: "readme.md"},
	}

	root := tree.Build(files)
	as.Len(root.Children, 1)
	as.Equal("/r/readme.md", root.Children["readme.md"].Path)
}

func TestBuildEmptyInput(t *testing.T) {
	as := require.New(t)

	root := tree.Build(nil)
	as.NotNil(root)
	as.True(root.IsDir)
	as.Empty(root.Name)
	as.Empty(root.Path)
	as.Empty(root.Children)
	as.Empty(tree.NewSorter().Ordered(root.Children))
}

func TestBuildIsReproducible(t *testing.T) {
	as := require.New(t)

	files := []scan.FileRecord{
		{Path: "/r/a/one.md", RelPath: "a/one.md", Name: "one.md"},
		{Path: "/r/b/two.md", RelPath: "b/two.md", Name: "two.md"},
		{Path: "/r/three.md", RelPath: "three.md", Name: "three.md"},
	}

	as.Equal(tree.Build(files), tree.Build(files))
}
