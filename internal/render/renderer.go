package render

import "github.com/oakwood-commons/lazyview/internal/store"

// Renderer is the render-target capability the list view needs. start is the
// logical index of records[0].
type Renderer interface {
	// RenderInto clears node and renders records into it.
	RenderInto(node *Node, start int, records []store.Record) error
	// AppendInto renders records after node's existing elements.
	AppendInto(node *Node, start int, records []store.Record) error
	// Measure returns the rendered height of node in rows.
	Measure(node *Node) int
	// SetWidth sets the column budget for rendered lines; 0 disables truncation.
	SetWidth(width int)
}
