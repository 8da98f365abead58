// Package render turns records into the text elements the list view lays
// out, and measures them in terminal rows.
package render

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// EmptyClass marks the element that carries empty-state content.
const EmptyClass = "empty"

// Element is one rendered block: a record's template output, or empty-state
// text. Index is the record's logical index, -1 for non-record content.
type Element struct {
	Class   string
	Index   int
	Content string
}

// Height returns the number of terminal rows the element occupies.
func (e Element) Height() int {
	return lipgloss.Height(e.Content)
}

// Node is the render target: an ordered list of elements.
type Node struct {
	Elements []Element
}

// Clear removes every element.
func (n *Node) Clear() {
	n.Elements = n.Elements[:0]
}

// Len returns the number of elements.
func (n *Node) Len() int {
	return len(n.Elements)
}

// SetEmpty replaces the content with a single empty-state element.
func (n *Node) SetEmpty(text string) {
	n.Elements = append(n.Elements[:0], Element{Class: EmptyClass, Index: -1, Content: text})
}

// Attach appends child's elements and returns a function that removes them
// again. Detaching twice is a no-op.
func (n *Node) Attach(child *Node) (detach func()) {
	at := len(n.Elements)
	count := len(child.Elements)
	n.Elements = append(n.Elements, child.Elements...)
	done := false
	return func() {
		if done {
			return
		}
		done = true
		if at+count > len(n.Elements) {
			return
		}
		n.Elements = append(n.Elements[:at], n.Elements[at+count:]...)
	}
}

// Class returns the element class a selector names. Surrounding space and
// a leading dot are dropped, so ".item" and "item" are equivalent.
func Class(selector string) string {
	return strings.TrimPrefix(strings.TrimSpace(selector), ".")
}

// QueryAll returns the elements whose class matches selector.
func (n *Node) QueryAll(selector string) []Element {
	class := Class(selector)
	var out []Element
	for _, el := range n.Elements {
		if el.Class == class {
			out = append(out, el)
		}
	}
	return out
}

// String joins element content with newlines.
func (n *Node) String() string {
	parts := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		parts[i] = el.Content
	}
	return strings.Join(parts, "\n")
}

// Height returns the total rows of all elements; an empty node is 0 rows.
func (n *Node) Height() int {
	if len(n.Elements) == 0 {
		return 0
	}
	return lipgloss.Height(n.String())
}
