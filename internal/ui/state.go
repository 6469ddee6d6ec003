package ui

import "docnav/internal/scan"

// State contains the data required to bootstrap the Bubble Tea model.
type State struct {
	RawContent         string
	HeaderPath         string
	TreeVisible        bool
	TreePreferredWidth int
	Records            []scan.FileRecord
	SelectedRel        string
	DisplayRoot        string
	ActiveAbsPath      string
	FocusTree          bool
	Style              string
	Scanner            *scan.Scanner
}
