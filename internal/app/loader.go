package app

import (
	"fmt"
	"os"
	"path/filepath"

	"docnav/internal/scan"
	"docnav/internal/ui"
)

// LoadInitialState analyses the target path and prepares the UI state.
// A directory target gets the full tree view backed by a scanner; a file
// target opens in single-document mode without a tree.
func LoadInitialState(target string, opts Options) (ui.State, error) {
	info, err := os.Stat(target)
	if err != nil {
		return ui.State{}, err
	}

	if info.IsDir() {
		absTarget, err := filepath.Abs(target)
		if err != nil {
			return ui.State{}, err
		}

		rootName := filepath.Base(absTarget)
		scanner := scan.New(absTarget,
			scan.WithExtensions(opts.Extensions),
			scan.WithExcludes(opts.Excludes),
		)

		records, err := scanner.Scan()
		if err != nil {
			return ui.State{}, err
		}

		message := ""
		if len(records) == 0 {
			records = []scan.FileRecord{}
			message = fmt.Sprintf("%s にドキュメントが見つかりません。", rootName)
		}

		return ui.State{
			RawContent:         message,
			HeaderPath:         rootName + "/",
			TreeVisible:        true,
			TreePreferredWidth: opts.TreeWidth,
			Records:            records,
			DisplayRoot:        rootName,
			FocusTree:          true,
			Style:              opts.Style,
			Scanner:            scanner,
		}, nil
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return ui.State{}, err
	}

	data, err := os.ReadFile(absTarget)
	if err != nil {
		return ui.State{}, err
	}

	displayPath := absTarget
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, absTarget); err == nil {
			displayPath = rel
		}
	}

	return ui.State{
		RawContent:    string(data),
		HeaderPath:    filepath.ToSlash(displayPath),
		ActiveAbsPath: absTarget,
		Style:         opts.Style,
	}, nil
}
