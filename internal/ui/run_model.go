package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// RunModel starts the Bubble Tea program. A width or height of 0 is taken
// from the terminal, falling back to 80x24 when forcing a size.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func RunModel(m *Model, width, height int, opts ...tea.ProgramOption) error {
	if width > 0 || height > 0 {
		runW, runH := TerminalSize(width, height)
		opts = append(opts, tea.WithWindowSize(runW, runH))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// TerminalSize fills in a missing width or height from the terminal attached
// to stdout.
func TerminalSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if width <= 0 {
				width = w
			}
			if height <= 0 {
				height = h
			}
		}
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}
