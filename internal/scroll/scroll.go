// Package scroll provides a row-based scroll container that notifies
// subscribers whenever its offset changes.
package scroll

import (
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/lazyview/internal/event"
)

// Event reports a new scroll offset in rows.
type Event struct {
	Offset int
}

// Container tracks the vertical offset of content inside a viewport. The
// offset is clamped to [0, content-viewport].
type Container struct {
	offset   int
	content  int
	viewport int
	scrolled event.Emitter[Event]
}

// Subscribe registers fn for offset changes.
func (c *Container) Subscribe(fn func(offset int) tea.Cmd) (off func()) {
	return c.scrolled.On(func(ev Event) tea.Cmd { return fn(ev.Offset) })
}

// SetBounds updates content and viewport heights, re-clamping the offset.
// A change in offset caused by shrinking content is not reported.
func (c *Container) SetBounds(content, viewport int) {
	c.content = max(content, 0)
	c.viewport = max(viewport, 0)
	c.offset = c.clamp(c.offset)
}

// ScrollTo moves to offset and reports the change, if any.
func (c *Container) ScrollTo(offset int) tea.Cmd {
	offset = c.clamp(offset)
	if offset == c.offset {
		return nil
	}
	c.offset = offset
	return c.scrolled.Emit(Event{Offset: offset})
}

// ScrollBy moves by delta rows.
func (c *Container) ScrollBy(delta int) tea.Cmd {
	return c.ScrollTo(c.offset + delta)
}

// Reveal scrolls the minimum amount that brings rows [top, top+height) into view.
func (c *Container) Reveal(top, height int) tea.Cmd {
	switch {
	case top < c.offset:
		return c.ScrollTo(top)
	case top+height > c.offset+c.viewport:
		return c.ScrollTo(top + height - c.viewport)
	}
	return nil
}

// ToBottom scrolls to the last full viewport of content.
func (c *Container) ToBottom() tea.Cmd {
	return c.ScrollTo(c.MaxOffset())
}

func (c *Container) Offset() int   { return c.offset }
func (c *Container) Viewport() int { return c.viewport }
func (c *Container) Content() int  { return c.content }

// MaxOffset is the largest reachable offset.
func (c *Container) MaxOffset() int {
	return max(c.content-c.viewport, 0)
}

// AtBottom reports whether the last content row is visible.
func (c *Container) AtBottom() bool {
	return c.offset >= c.MaxOffset()
}

func (c *Container) clamp(offset int) int {
	return min(max(offset, 0), c.MaxOffset())
}
