package selection

import (
	"slices"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/lazyview/internal/event"
	"github.com/oakwood-commons/lazyview/internal/store"
)

// Event carries one selected or deselected record.
type Event struct {
	Index  int
	Record store.Record
}

// ChangeEvent carries the selection after a change, in selection order.
type ChangeEvent struct {
	Selected []int
}

// Records gives the model access to materialized records.
type Records interface {
	At(i int) (store.Record, bool)
	Count() int
}

// State is a read-only copy of the selection.
type State struct {
	Selected []int
	Locked   bool
	Mode     Mode
}

// Model is the base selection model. Only materialized records can be
// selected; mutations are no-ops while the model is locked.
type Model struct {
	records       Records
	mode          Mode
	allowDeselect bool
	locked        bool
	selected      []int

	selectEv   event.Emitter[Event]
	deselectEv event.Emitter[Event]
	changeEv   event.Emitter[ChangeEvent]
}

// NewModel returns a model over records configured by cfg.
func NewModel(cfg Config, records Records) *Model {
	return &Model{
		records:       records,
		mode:          cfg.Mode(),
		allowDeselect: cfg.AllowDeselect,
		locked:        cfg.DisableSelection,
	}
}

func (m *Model) Mode() Mode            { return m.mode }
func (m *Model) Locked() bool          { return m.locked }
func (m *Model) SetLocked(locked bool) { m.locked = locked }
func (m *Model) AllowDeselect() bool   { return m.allowDeselect }
func (m *Model) IsSelected(i int) bool { return slices.Contains(m.selected, i) }
func (m *Model) Selected() []int       { return slices.Clone(m.selected) }
func (m *Model) SelectionCount() int   { return len(m.selected) }

// State returns a snapshot of the selection.
func (m *Model) State() State {
	return State{Selected: m.Selected(), Locked: m.locked, Mode: m.mode}
}

// OnSelect subscribes fn to records becoming selected.
func (m *Model) OnSelect(fn event.Handler[Event]) (off func()) { return m.selectEv.On(fn) }

// OnDeselect subscribes fn to records becoming deselected.
func (m *Model) OnDeselect(fn event.Handler[Event]) (off func()) { return m.deselectEv.On(fn) }

// OnSelectionChange subscribes fn to any change of the selected set.
func (m *Model) OnSelectionChange(fn event.Handler[ChangeEvent]) (off func()) {
	return m.changeEv.On(fn)
}

// DoSelect selects the records at indices. In single mode only the first
// index is used and any previous selection is replaced. Otherwise the
// selection is replaced unless keepExisting is set.
func (m *Model) DoSelect(indices []int, keepExisting, suppressEvent bool) tea.Cmd {
	if m.locked {
		return nil
	}
	indices = m.materialized(indices)
	if len(indices) == 0 {
		return nil
	}
	if m.mode == Single {
		indices = indices[:1]
		keepExisting = false
		if m.IsSelected(indices[0]) {
			return nil
		}
	}

	var cmds []tea.Cmd
	changed := false
	if !keepExisting {
		var keep []int
		for _, i := range m.selected {
			if slices.Contains(indices, i) {
				keep = append(keep, i)
			}
		}
		cmds = append(cmds, m.deselect(m.without(keep), suppressEvent))
		changed = len(m.selected) != len(keep)
		m.selected = keep
	}
	for _, i := range indices {
		if m.IsSelected(i) {
			continue
		}
		rec, _ := m.records.At(i)
		m.selected = append(m.selected, i)
		changed = true
		if !suppressEvent {
			cmds = append(cmds, m.selectEv.Emit(Event{Index: i, Record: rec}))
		}
	}
	if changed && !suppressEvent {
		cmds = append(cmds, m.changeEv.Emit(ChangeEvent{Selected: m.Selected()}))
	}
	return tea.Batch(cmds...)
}

// DoDeselect deselects the records at indices.
func (m *Model) DoDeselect(indices []int, suppressEvent bool) tea.Cmd {
	if m.locked {
		return nil
	}
	var gone []int
	for _, i := range indices {
		if m.IsSelected(i) && !slices.Contains(gone, i) {
			gone = append(gone, i)
		}
	}
	if len(gone) == 0 {
		return nil
	}
	m.selected = slices.DeleteFunc(m.selected, func(i int) bool { return slices.Contains(gone, i) })
	cmds := []tea.Cmd{m.deselect(gone, suppressEvent)}
	if !suppressEvent {
		cmds = append(cmds, m.changeEv.Emit(ChangeEvent{Selected: m.Selected()}))
	}
	return tea.Batch(cmds...)
}

// DeselectAll clears the selection.
func (m *Model) DeselectAll(suppressEvent bool) tea.Cmd {
	return m.DoDeselect(m.Selected(), suppressEvent)
}

// SelectWithEvent applies a user gesture on index. extend is the
// terminal's stand-in for a modifier key: in multi mode it toggles index
// while keeping the rest of the selection.
func (m *Model) SelectWithEvent(index int, extend bool) tea.Cmd {
	if m.locked {
		return nil
	}
	selected := m.IsSelected(index)
	switch m.mode {
	case Simple:
		if selected {
			return m.DoDeselect([]int{index}, false)
		}
		return m.DoSelect([]int{index}, true, false)
	case Multi:
		switch {
		case extend && selected:
			return m.DoDeselect([]int{index}, false)
		case extend:
			return m.DoSelect([]int{index}, true, false)
		case selected && len(m.selected) > 1:
			return m.DoSelect([]int{index}, false, false)
		case selected && m.allowDeselect:
			return m.DoDeselect([]int{index}, false)
		case !selected:
			return m.DoSelect([]int{index}, false, false)
		}
	default:
		if selected && m.allowDeselect {
			return m.DoDeselect([]int{index}, false)
		}
		if !selected {
			return m.DoSelect([]int{index}, false, false)
		}
	}
	return nil
}

// Prune drops selected indices that are no longer materialized, without
// events. It is used after the collection is replaced.
func (m *Model) Prune() {
	count := m.records.Count()
	m.selected = slices.DeleteFunc(m.selected, func(i int) bool { return i >= count })
}

func (m *Model) deselect(indices []int, suppressEvent bool) tea.Cmd {
	if suppressEvent || len(indices) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(indices))
	for _, i := range indices {
		rec, _ := m.records.At(i)
		cmds = append(cmds, m.deselectEv.Emit(Event{Index: i, Record: rec}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) materialized(indices []int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := m.records.At(i); ok && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) without(keep []int) []int {
	var out []int
	for _, i := range m.selected {
		if !slices.Contains(keep, i) {
			out = append(out, i)
		}
	}
	return out
}
