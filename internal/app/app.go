package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"docnav/internal/ui"
)

// Options carries the resolved configuration down to the viewer.
type Options struct {
	Style      string
	TreeWidth  int
	Excludes   []string
	Extensions []string
}

// Run executes the Bubble Tea program for the documentation viewer.
func Run(target string, opts Options) error {
	state, err := LoadInitialState(target, opts)
	if err != nil {
		return err
	}
	return runProgram(state)
}

func runProgram(state ui.State) error {
	program := tea.NewProgram(ui.NewModel(state), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
