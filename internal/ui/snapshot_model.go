package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// SnapshotConfig configures RenderSnapshot.
type SnapshotConfig struct {
	Width     int
	Height    int
	StartKeys []string
}

// RenderSnapshot renders one frame without a terminal. Reads are run
// synchronously until the model settles, then the startup keys are applied
// the same way.
func RenderSnapshot(m *Model, cfg SnapshotConfig) string {
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	m.static = true
	m.settle(m.Init())
	_, cmd := m.Update(tea.WindowSizeMsg{Width: cfg.Width, Height: cfg.Height})
	m.settle(cmd)
	ApplyStartupKeys(m, cfg.StartKeys)
	return padSnapshotHeight(m.Render(), cfg.Height, cfg.Width)
}

func padSnapshotHeight(view string, height, width int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines[:height], "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
