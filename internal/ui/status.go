package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusError
)

func (m *Model) setStatus(kind statusKind, msg string) {
	m.kind = kind
	m.status = msg
}

func (m *Model) clearStatus() {
	m.setStatus(statusNone, "")
}

// statusView renders position, paging and selection state, followed by the
// current message.
func (m *Model) statusView() string {
	count := m.store.Count()
	parts := make([]string, 0, 5)
	if count == 0 {
		parts = append(parts, "0 records")
	} else {
		parts = append(parts, fmt.Sprintf("%d/%d", m.cursor+1, count))
	}
	page := fmt.Sprintf("page %d", max(m.store.CurrentPage(), 1))
	if m.store.Exhausted() {
		page += " (end)"
	}
	parts = append(parts, page)
	if n := m.resolver.SelectionCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if m.resolver.Locked() {
		parts = append(parts, "selection off")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	line := " " + strings.Join(parts, " · ")
	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, "…")
		line = runewidth.FillRight(line, m.width)
	}
	style := m.styles.status
	switch m.kind {
	case statusError:
		style = m.styles.err
	case statusInfo:
		style = m.styles.success
	}
	return style.Render(line)
}
