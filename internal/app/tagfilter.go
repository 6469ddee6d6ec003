package app

import (
	"fmt"
	"os"
	"path/filepath"

	"docnav/internal/scan"
	"docnav/internal/ui"
)

// RunTagFiltered launches the viewer with a tree composed only of the
// documents whose frontmatter carries the given tag. The filtered tree
// is static: it is not rescanned while the viewer runs.
func RunTagFiltered(target, tag string, opts Options) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("タグ指定にはディレクトリを渡してください: %s", target)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	rootName := filepath.Base(absTarget)
	scanner := scan.New(absTarget,
		scan.WithExtensions(opts.Extensions),
		scan.WithExcludes(opts.Excludes),
	)

	records, err := scanner.Scan()
	if err != nil {
		return err
	}

	filtered := scan.FilterByTag(records, tag)
	if len(filtered) == 0 {
		return fmt.Errorf("タグ %q に一致するファイルがありません", tag)
	}

	state := ui.State{
		RawContent:         fmt.Sprintf("タグ \"%s\" を含むファイルを選択してください。", tag),
		HeaderPath:         fmt.Sprintf("%s/ (tag: %s)", rootName, tag),
		TreeVisible:        true,
		TreePreferredWidth: opts.TreeWidth,
		Records:            filtered,
		SelectedRel:        filtered[0].RelPath,
		DisplayRoot:        rootName,
		FocusTree:          true,
		Style:              opts.Style,
	}
	return runProgram(state)
}
