package lazyview

import tea "charm.land/bubbletea/v2"

// Scroller is the persistent scroll container a view listens to.
type Scroller interface {
	Subscribe(fn func(offset int) tea.Cmd) (off func())
	SetBounds(content, viewport int)
}

// Component is the lifecycle a list host drives.
type Component interface {
	Mount(scroller Scroller) error
	OnLayout(width, height int) tea.Cmd
	OnScroll(offset int) tea.Cmd
}

var _ Component = (*View)(nil)
